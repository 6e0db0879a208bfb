package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "127.0.0.1:5000", cfg.Address())
	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
paths:
  output_dir: ./reports
server:
  port: 8080
log:
  level: debug
batch:
  max_concurrency: 2
`), 0o644))

	t.Setenv("XMLCREATOR_SERVER_PORT", "9090")
	t.Setenv("XMLCREATOR_LOG_FORMAT", "json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./reports", cfg.Paths.OutputDir)
	assert.Equal(t, "./input", cfg.Paths.InputDir, "unset keys keep their default")
	assert.Equal(t, 9090, cfg.Server.Port, "environment overrides the file")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 2, cfg.Batch.MaxConcurrency)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("XMLCREATOR_SERVER_HOST=0.0.0.0\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("XMLCREATOR_SERVER_HOST") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv("XMLCREATOR_LOG_LEVEL", "loud")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.yaml"))
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"upload limit", func(c *Config) { c.Server.MaxUploadMB = 0 }, "max_upload_mb"},
		{"concurrency", func(c *Config) { c.Batch.MaxConcurrency = 0 }, "max_concurrency"},
		{"retention", func(c *Config) { c.Retention.UploadMaxAgeHours = -1 }, "upload_max_age_hours"},
		{"empty dir", func(c *Config) { c.Paths.OutputDir = " " }, "paths.output_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", DefaultFileName)

	require.NoError(t, WriteDefault(path, false))
	assert.Error(t, WriteDefault(path, false), "existing file is not overwritten")
	require.NoError(t, WriteDefault(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLogOptions(t *testing.T) {
	opts := Default().LogOptions()
	assert.Equal(t, "info", opts.Level)
	assert.Equal(t, "text", opts.Format)
	assert.Equal(t, 5, opts.MaxSizeMB)
	assert.Equal(t, 10, opts.MaxBackups)
}
