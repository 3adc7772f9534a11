package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithWriter(Config{Level: "debug"}, &buf))
	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())

	l := WithComponent("pipeline")
	l.Info().Int("rows", 3).Msg("loaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pipeline", entry["component"])
	assert.Equal(t, "loaded", entry["message"])
	assert.EqualValues(t, 3, entry["rows"])
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, InitWithWriter(Config{Level: "loud"}, &bytes.Buffer{}))
}

func TestDefaultLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithWriter(Config{}, &buf))
	Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
	Info().Msg("shown")
	assert.NotZero(t, buf.Len())
}

func TestLevelHelpers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InitWithWriter(Config{Level: "warn"}, &buf))
	Info().Msg("hidden")
	assert.Zero(t, buf.Len())
	Warn().Msg("careful")
	Error().Msg("broken")
	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"level":"error"`)
}
