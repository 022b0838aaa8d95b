package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var buf bytes.Buffer
	require.NoError(t, Setup("warn", FormatJSON, &buf))

	log.Debug().Msg("hidden")
	log.Warn().Str("stage", "parse").Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "parse", entry["stage"])
	assert.Equal(t, "shown", entry["message"])
}

func TestSetup_Console(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var buf bytes.Buffer
	require.NoError(t, Setup("DEBUG", FormatConsole, &buf))
	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestSetup_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Setup("loud", FormatJSON, &buf))
	assert.ErrorContains(t, Setup("info", "xml", &buf), "unknown log format")
}
