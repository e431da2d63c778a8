package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8501", c.ListenAddr)
	assert.Equal(t, 30*time.Second, c.HTTPTimeout())
	assert.Equal(t, 1, c.RetryMaxAttempts)
	assert.Equal(t, 500*time.Millisecond, c.RetryBaseDelay())
	assert.Equal(t, 4*time.Second, c.RetryMaxDelay())
	assert.EqualValues(t, 100<<20, c.MaxBytes)
	assert.Equal(t, 0, c.MaxRows)
	assert.Equal(t, 10, c.PreviewRows)
	assert.Equal(t, "png", c.ChartFormat)
	assert.Equal(t, "info", c.LogLevel)
	assert.True(t, c.MetricsEnabled)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Set("max_rows", "500"))
	require.NoError(t, c.Set("chart_format", "SVG"))
	require.NoError(t, Save(c, ""))

	home, _ := os.UserHomeDir()
	_, err = os.Stat(filepath.Join(home, ".csvscope", "config.yaml"))
	require.NoError(t, err)

	c2, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 500, c2.MaxRows)
	assert.Equal(t, "svg", c2.ChartFormat)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preview_rows: 3\nlisten_addr: \":9000\"\n"), 0o644))
	t.Setenv("CSVSCOPE_PREVIEW_ROWS", "7")
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, c.PreviewRows)
	assert.Equal(t, ":9000", c.ListenAddr)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 10, c.PreviewRows)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preview_rows: [\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSetValidation(t *testing.T) {
	c := &Global{}
	assert.Error(t, c.Set("nope", "1"))
	assert.Error(t, c.Set("http_timeout_sec", "0"))
	assert.Error(t, c.Set("chart_format", "gif"))
	assert.Error(t, c.Set("log_format", "xml"))
	assert.Error(t, c.Set("metrics_enabled", "maybe"))
	require.NoError(t, c.Set("metrics_enabled", "false"))
	v, err := c.Get("metrics_enabled")
	require.NoError(t, err)
	assert.Equal(t, "false", v)
	for _, k := range Keys {
		_, err := c.Get(k)
		assert.NoError(t, err, k)
	}
}
