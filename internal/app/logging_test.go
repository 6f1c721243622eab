package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gitpanel/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LogConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Str("verb", "status").Msg("dispatch")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dispatch", entry["message"])
	assert.Equal(t, "status", entry["verb"])
	assert.Equal(t, "gitpanel", entry["app"])
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LogConfig{Level: "warn", Format: "console"}, &buf)
	require.NoError(t, err)

	logger.Warn().Msg("upstream missing")
	assert.Contains(t, buf.String(), "upstream missing")
}

func TestNewLogger_Errors(t *testing.T) {
	_, err := NewLogger(config.LogConfig{Level: "loud", Format: "json"}, nil)
	assert.Error(t, err)

	_, err = NewLogger(config.LogConfig{Level: "info", Format: "xml"}, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
