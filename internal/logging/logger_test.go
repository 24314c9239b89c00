package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agurato/filmbase/internal/logging"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, logging.ParseLevel(""))
	assert.Equal(t, zerolog.DebugLevel, logging.ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, logging.ParseLevel("WARN"))
	assert.Equal(t, zerolog.InfoLevel, logging.ParseLevel("loud"))
}

func TestInitJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "warn", Format: logging.FormatJSON, Output: &buf})

	log.Info().Msg("dropped")
	assert.Empty(t, buf.String())

	zerolog.Ctx(context.Background()).Warn().Str("film", "Heat").Msg("kept")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "Heat", entry["film"])
	assert.Equal(t, "kept", entry["message"])
}

func TestInitConsole(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "info", Format: "console", Output: &buf})
	log.Info().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), `"message"`)
}
