package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-analytics-bff/analytics"
	"github.com/jrsteele09/go-analytics-bff/auth"
	"github.com/jrsteele09/go-analytics-bff/directory"
	"github.com/jrsteele09/go-analytics-bff/internal/config"
	"github.com/jrsteele09/go-analytics-bff/internal/telemetry"
	"github.com/rs/zerolog/log"
)

type Server struct {
	debug          bool
	prefix         string
	mux            *http.ServeMux
	routes         []string
	settings       config.Settings
	allowedOrigins config.AllowedOrigins
	cookies        CookiePolicy
	metrics        *telemetry.Collector

	broker    *auth.Broker
	offices   *directory.Client
	analytics *analytics.Client

	now func() time.Time
}

// New wires the BFF from its settings. Outbound clients are built here, one per
// downstream service, each with metrics on its transport.
func New(settings config.Settings, metrics *telemetry.Collector) *Server {
	if metrics == nil {
		metrics = telemetry.NewCollector(nil)
	}

	s := &Server{
		debug:          settings.Debug,
		prefix:         settings.Prefix(),
		mux:            http.NewServeMux(),
		settings:       settings,
		allowedOrigins: settings.AllowedOrigins(),
		cookies:        NewCookiePolicy(settings.Debug),
		metrics:        metrics,
		now:            time.Now,
	}

	s.broker = auth.NewBroker(settings, &http.Client{
		Timeout:   settings.UpstreamTimeout,
		Transport: metrics.InstrumentTransport("auth", nil),
	})
	s.offices = directory.NewClient(settings.GraphQLURL, &http.Client{
		Timeout:   settings.UpstreamTimeout,
		Transport: metrics.InstrumentTransport("directory", nil),
	})
	s.analytics = analytics.NewClient(
		settings.AnalyticsBaseURL,
		metrics.InstrumentTransport("analytics", analytics.NewTransport(analytics.DefaultTimeouts)),
		analytics.DefaultTimeouts,
	)

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, s.metrics.InstrumentHandler(pattern, handler))
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.RegisterRouteHandler(pattern, http.HandlerFunc(handler))
}

// Routes lists the registered patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if !s.debug {
		return // Route table is only printed in debug mode
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := MethodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Debug().Msgf("[%-19s] %s", displayMethod, path)
}
