package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-analytics-bff/internal/config"
	"github.com/jrsteele09/go-analytics-bff/internal/logging"
	"github.com/jrsteele09/go-analytics-bff/internal/telemetry"
	"github.com/jrsteele09/go-analytics-bff/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	readHeaderTimeout = 10 * time.Second
	// The analytics proxy can legitimately take well over a minute.
	writeTimeout    = 120 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 5 * time.Second
)

type flags struct {
	host  string
	port  int
	debug bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Backend-for-frontend for the analytics dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading settings: %s\n", err)
				return err
			}
			applyFlags(cmd, f, &settings)
			if err := settings.Validate(); err != nil {
				fmt.Fprintf(os.Stderr, "Error in flags: %s\n", err)
				return err
			}
			return run(settings)
		},
	}
	cmd.Flags().StringVar(&f.host, "host", "", "bind host (overrides BACKEND_HOST)")
	cmd.Flags().IntVar(&f.port, "port", 0, "bind port (overrides BACKEND_PORT)")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "debug mode (overrides DEBUG)")
	return cmd
}

func applyFlags(cmd *cobra.Command, f flags, s *config.Settings) {
	if cmd.Flags().Changed("host") {
		s.BackendHost = f.host
	}
	if cmd.Flags().Changed("port") {
		s.BackendPort = f.port
	}
	if cmd.Flags().Changed("debug") {
		s.Debug = f.debug
	}
}

func run(settings config.Settings) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	logging.Setup(settings.Level(), settings.Debug)
	displayAppname(settings.AppName)

	httpServer := &http.Server{
		Addr:              settings.Addr(),
		Handler:           server.New(settings, telemetry.NewCollector(nil)),
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(httpServer) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
