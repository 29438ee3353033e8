package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	t.Run("json output at requested level", func(t *testing.T) {
		var buf bytes.Buffer
		configure(&buf, "warn")

		log.Info().Msg("dropped")
		log.Warn().Str("event", "login").Msg("kept")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "warn", entry["level"])
		require.Equal(t, "login", entry["event"])
		require.Equal(t, "kept", entry["message"])
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		configure(&buf, "loud")
		require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
		require.Contains(t, buf.String(), "unknown log level")
	})
}
