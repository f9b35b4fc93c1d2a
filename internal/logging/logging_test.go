package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"newsdesk/config"
	"newsdesk/internal/oops"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestJSONOutputCarriesStack(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LogConfig{Level: "debug"}, &buf)

	log.Error().Stack().Err(oops.New(errors.New("boom"), "saving article")).Msg("failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "failed", entry["message"])
	assert.Equal(t, "newsdesk", entry["service"])
	assert.Equal(t, "saving article: boom", entry["error"])
	assert.NotEmpty(t, entry[zerolog.ErrorStackFieldName])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LogConfig{Level: "error"}, &buf)
	log.Info().Msg("quiet")
	assert.Zero(t, buf.Len())
}
