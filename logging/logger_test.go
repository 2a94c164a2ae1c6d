package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"weather-api/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProdLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}, "weather-api")

	logger.Debug("hidden")
	logger.Info("visible", "city", "Kharkiv")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "weather-api", entry["app"])
	assert.Equal(t, "prod", entry["env"])
	assert.Equal(t, "Kharkiv", entry["city"])
}

func TestDevLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &config.Config{AppEnv: "dev", LogLevel: slog.LevelWarn}, "weather-api")

	logger.Info("quiet")
	assert.Zero(t, buf.Len())

	logger.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}
