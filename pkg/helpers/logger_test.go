package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/egarage-auth/config"
)

func TestNewLogger_FieldsAndLevel(t *testing.T) {
	logger := NewLogger(&config.Config{AppName: "egarage-auth", Env: "production", LogLevel: "warn"}, "sweep")
	var buf bytes.Buffer
	logger.SetOutput(&buf)

	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	LogError(logger, "sweep failed", errors.New("db down"), logrus.Fields{"component": "override"})
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "egarage-auth", entry["app"])
	assert.Equal(t, "production", entry["env"])
	assert.Equal(t, "override", entry["component"])
	assert.Equal(t, "db down", entry["error"])
	assert.Equal(t, "sweep failed", entry["msg"])
}

func TestNewLogger_DevelopmentDefaults(t *testing.T) {
	logger := NewLogger(&config.Config{Env: "development", LogLevel: "loud"}, "api")
	logger.SetOutput(&bytes.Buffer{})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}
