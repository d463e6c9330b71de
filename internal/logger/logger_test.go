package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter(t *testing.T) {
	t.Run("defaults to info and console", func(t *testing.T) {
		var buf bytes.Buffer
		InitWithWriter(&buf, "", "")

		assert.Equal(t, "info", Logger.GetLevel().String())
		assert.Equal(t, "info", zlog.Logger.GetLevel().String())

		Logger.Info().Msg("hello")
		out := strings.TrimSpace(buf.String())
		require.NotEmpty(t, out)
		assert.False(t, strings.HasPrefix(out, "{"))
		assert.Contains(t, out, "hello")
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		InitWithWriter(&buf, "not-a-level", "console")

		Logger.Debug().Msg("debug-should-not-print")
		Logger.Info().Msg("info-should-print")
		assert.NotContains(t, buf.String(), "debug-should-not-print")
		assert.Contains(t, buf.String(), "info-should-print")
	})

	t.Run("json output", func(t *testing.T) {
		var buf bytes.Buffer
		InitWithWriter(&buf, "debug", "json")

		log := WithField("k", "v")
		log.Debug().Msg("hello")
		out := strings.TrimSpace(buf.String())
		assert.True(t, strings.HasPrefix(out, "{"))
		assert.Contains(t, out, `"message":"hello"`)
		assert.Contains(t, out, `"k":"v"`)
	})

	t.Run("component loggers tag their output", func(t *testing.T) {
		var buf bytes.Buffer
		InitWithWriter(&buf, "info", "json")

		for _, log := range []zerolog.Logger{
			DB(),
			HTTP(),
			WithFields(map[string]interface{}{"a": 1}),
			WithRequestID("req-1"),
		} {
			log.Info().Msg("entry")
		}

		out := buf.String()
		assert.Contains(t, out, `"component":"db"`)
		assert.Contains(t, out, `"component":"http"`)
		assert.Contains(t, out, `"a":1`)
		assert.Contains(t, out, `"request_id":"req-1"`)
	})
}
