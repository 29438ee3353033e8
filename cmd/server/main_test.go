package main

import (
	"testing"

	"github.com/jrsteele09/go-analytics-bff/internal/config"
	"github.com/stretchr/testify/require"
)

func TestApplyFlags(t *testing.T) {
	t.Run("only changed flags override settings", func(t *testing.T) {
		cmd := newRootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--port", "9100"}))

		s := config.Settings{BackendHost: "0.0.0.0", BackendPort: 8000, Debug: true}
		applyFlags(cmd, flags{port: 9100}, &s)
		require.Equal(t, "0.0.0.0", s.BackendHost)
		require.Equal(t, 9100, s.BackendPort)
		require.True(t, s.Debug)
	})

	t.Run("debug can be switched off", func(t *testing.T) {
		cmd := newRootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--debug=false", "--host", "127.0.0.1"}))

		s := config.Settings{BackendHost: "0.0.0.0", Debug: true}
		applyFlags(cmd, flags{host: "127.0.0.1", debug: false}, &s)
		require.Equal(t, "127.0.0.1", s.BackendHost)
		require.False(t, s.Debug)
	})

	t.Run("debug flag raises the default log level", func(t *testing.T) {
		cmd := newRootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--debug"}))

		s := config.Settings{}
		require.Equal(t, "info", s.Level())
		applyFlags(cmd, flags{debug: true}, &s)
		require.True(t, s.Debug)
		require.Equal(t, "debug", s.Level())
	})

	t.Run("debug flag keeps an explicit log level", func(t *testing.T) {
		cmd := newRootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--debug"}))

		s := config.Settings{LogLevel: "warn"}
		applyFlags(cmd, flags{debug: true}, &s)
		require.Equal(t, "warn", s.Level())
	})
}
