package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "https://nominatim.openstreetmap.org/search", cfg.Nominatim.BaseURL)
	assert.Equal(t, "Proximity/0.1", cfg.Nominatim.UserAgent)
	assert.InDelta(t, 1.0, cfg.Nominatim.RatePerSec, 0.001)
	assert.Equal(t, "lublin", cfg.Nominatim.LocalityBias)
	assert.Equal(t, ", Lublin, Polska", cfg.Nominatim.LocalitySuffix)
	assert.Equal(t, "https://overpass-api.de/api/interpreter", cfg.Overpass.BaseURL)
	assert.Equal(t, 30, cfg.Overpass.TimeoutSecs)
	assert.Equal(t, 3, cfg.Overpass.Retries)
	assert.Equal(t, 500, cfg.Overpass.RetryDelayMs)
	assert.Equal(t, 300, cfg.Scoring.MaxPOIs)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 30, cfg.Cache.TTLDays)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	chTempDir(t)

	yaml := `
server:
  port: 9090
nominatim:
  locality_bias: ""
  locality_suffix: ""
overpass:
  retries: 5
log:
  level: debug
  format: console
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Empty(t, cfg.Nominatim.LocalityBias)
	assert.Equal(t, 5, cfg.Overpass.Retries)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 300, cfg.Scoring.MaxPOIs)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chTempDir(t)

	t.Setenv("PROXIMITY_SERVER_PORT", "3000")
	t.Setenv("PROXIMITY_CACHE_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.True(t, cfg.Cache.Enabled)
}

func TestValidate(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())

	cfg.Server.Port = 0
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")

	cfg.Server.Port = 8000
	cfg.Overpass.Retries = 0
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overpass.retries")

	cfg.Overpass.Retries = 3
	cfg.Cache.Enabled = true
	cfg.Cache.Path = ""
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.path")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
