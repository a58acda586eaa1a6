package config

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./02_IPED_Clim", cfg.InputDir)
	assert.Equal(t, "./02_IPED_Clim_yearly", cfg.OutputDir)
	assert.Equal(t, "IPEDClim_BIO*.nc", cfg.InputGlob)
	assert.Equal(t, "BIO", cfg.VarToken)
	assert.Equal(t, "bio", cfg.VarPrefix)
	assert.Equal(t, "IPEDClim", cfg.OutputPrefix)
	assert.Equal(t, ".tif", cfg.OutputExt)
	assert.Equal(t, "lat", cfg.LatVar)
	assert.Equal(t, "lon", cfg.LonVar)
	assert.Equal(t, "year", cfg.TimeVar)
	assert.False(t, cfg.Strict)
	assert.Equal(t, runtime.NumCPU(), cfg.Concurrency)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.MetricsTextfile)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("INPUT_DIR", "/data/in")
	t.Setenv("OUTPUT_DIR", "/data/out")
	t.Setenv("INPUT_GLOB", "CHELSA_BIO*.nc")
	t.Setenv("OUTPUT_PREFIX", "CHELSA")
	t.Setenv("TIME_VAR", "time")
	t.Setenv("STRICT", "true")
	t.Setenv("CONCURRENCY", "3")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("METRICS_TEXTFILE", "/var/lib/node_exporter/bioyearly.prom")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.InputDir)
	assert.Equal(t, "/data/out", cfg.OutputDir)
	assert.Equal(t, "CHELSA_BIO*.nc", cfg.InputGlob)
	assert.Equal(t, "CHELSA", cfg.OutputPrefix)
	assert.Equal(t, "time", cfg.TimeVar)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/var/lib/node_exporter/bioyearly.prom", cfg.MetricsTextfile)
}

func TestLoad_InvalidStrict(t *testing.T) {
	t.Setenv("STRICT", "sometimes")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STRICT")
}

func TestLoad_InvalidConcurrency(t *testing.T) {
	t.Setenv("CONCURRENCY", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONCURRENCY")

	t.Setenv("CONCURRENCY", "many")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CONCURRENCY")
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestLoad_InvalidOutputExt(t *testing.T) {
	t.Setenv("OUTPUT_EXT", "tif")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OUTPUT_EXT")
}
