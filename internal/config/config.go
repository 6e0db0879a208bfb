// =============================================================================
// XmlCreator40 - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Values are resolved in
// layers, each one overriding the previous:
//
//   1. Built-in defaults (setDefaults)
//   2. config.yaml (--config, else "." or "$HOME/.xmlcreator40")
//   3. A .env file in the working directory, if present
//   4. XMLCREATOR_* environment variables (XMLCREATOR_SERVER_PORT, ...)
//
// A missing config file is not an error. A malformed one is.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Abyblackmouth/XmlCreator40/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "XMLCREATOR"

// DefaultFileName is the config file written by `init` and searched for by Load.
const DefaultFileName = "config.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the complete application configuration.
type Config struct {
	Paths     PathsConfig     `mapstructure:"paths" yaml:"paths"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Batch     BatchConfig     `mapstructure:"batch" yaml:"batch"`
	Retention RetentionConfig `mapstructure:"retention" yaml:"retention"`
}

// PathsConfig holds the working directories.
type PathsConfig struct {
	// InputDir is scanned by the process command for workbooks.
	InputDir string `mapstructure:"input_dir" yaml:"input_dir"`

	// OutputDir receives the generated reports.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// UploadDir keeps workbooks uploaded through the web front end.
	UploadDir string `mapstructure:"upload_dir" yaml:"upload_dir"`

	// ArchiveDir receives inputs once they were converted successfully.
	ArchiveDir string `mapstructure:"archive_dir" yaml:"archive_dir"`
}

// ServerConfig configures the web front end.
type ServerConfig struct {
	Host                string `mapstructure:"host" yaml:"host"`
	Port                int    `mapstructure:"port" yaml:"port"`
	MaxUploadMB         int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	OpenBrowser         bool   `mapstructure:"open_browser" yaml:"open_browser"`
	ShutdownEnabled     bool   `mapstructure:"shutdown_enabled" yaml:"shutdown_enabled"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds" yaml:"write_timeout_seconds"`
}

// LogConfig configures console and file logging.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// BatchConfig configures the process command.
type BatchConfig struct {
	// MaxConcurrency bounds the number of workbooks converted at once.
	// Set to 1 for sequential processing.
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`

	// ArchiveInputs moves successfully converted inputs to Paths.ArchiveDir.
	ArchiveInputs bool `mapstructure:"archive_inputs" yaml:"archive_inputs"`

	// WriteSummary writes a CSV summary of each batch to Paths.OutputDir.
	WriteSummary bool `mapstructure:"write_summary" yaml:"write_summary"`
}

// RetentionConfig controls cleanup of uploaded workbooks.
type RetentionConfig struct {
	// UploadMaxAgeHours removes uploads older than this when the server
	// starts. Zero disables the cleanup.
	UploadMaxAgeHours int `mapstructure:"upload_max_age_hours" yaml:"upload_max_age_hours"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load resolves the configuration. An empty path searches for config.yaml in
// the working directory and in $HOME/.xmlcreator40.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFileName, filepath.Ext(DefaultFileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.xmlcreator40")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadDotEnv loads path into the process environment when it exists.
// Variables already set keep their value.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults sets the default configuration values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("paths.input_dir", d.Paths.InputDir)
	v.SetDefault("paths.output_dir", d.Paths.OutputDir)
	v.SetDefault("paths.upload_dir", d.Paths.UploadDir)
	v.SetDefault("paths.archive_dir", d.Paths.ArchiveDir)

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)
	v.SetDefault("server.open_browser", d.Server.OpenBrowser)
	v.SetDefault("server.shutdown_enabled", d.Server.ShutdownEnabled)
	v.SetDefault("server.read_timeout_seconds", d.Server.ReadTimeoutSeconds)
	v.SetDefault("server.write_timeout_seconds", d.Server.WriteTimeoutSeconds)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)

	v.SetDefault("batch.max_concurrency", d.Batch.MaxConcurrency)
	v.SetDefault("batch.archive_inputs", d.Batch.ArchiveInputs)
	v.SetDefault("batch.write_summary", d.Batch.WriteSummary)

	v.SetDefault("retention.upload_max_age_hours", d.Retention.UploadMaxAgeHours)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			InputDir:   "./input",
			OutputDir:  "./output",
			UploadDir:  "./uploads",
			ArchiveDir: "./input_archive",
		},
		Server: ServerConfig{
			Host:                "127.0.0.1",
			Port:                5000,
			MaxUploadMB:         16,
			OpenBrowser:         true,
			ShutdownEnabled:     true,
			ReadTimeoutSeconds:  60,
			WriteTimeoutSeconds: 120,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			File:       "./logs/xmlcreator40.log",
			MaxSizeMB:  5,
			MaxBackups: 10,
		},
		Batch: BatchConfig{
			MaxConcurrency: 4,
			ArchiveInputs:  true,
			WriteSummary:   true,
		},
		Retention: RetentionConfig{
			UploadMaxAgeHours: 24,
		},
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the values that cannot be corrected silently.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level '%s': %w", c.Log.Level, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format '%s': must be 'text' or 'json'", c.Log.Format)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.Batch.MaxConcurrency < 1 {
		return fmt.Errorf("batch.max_concurrency must be at least 1, got %d", c.Batch.MaxConcurrency)
	}
	if c.Retention.UploadMaxAgeHours < 0 {
		return fmt.Errorf("retention.upload_max_age_hours cannot be negative")
	}
	for name, dir := range map[string]string{
		"paths.input_dir":   c.Paths.InputDir,
		"paths.output_dir":  c.Paths.OutputDir,
		"paths.upload_dir":  c.Paths.UploadDir,
		"paths.archive_dir": c.Paths.ArchiveDir,
	} {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// LogOptions converts the log section into logger options.
func (c *Config) LogOptions() logging.Options {
	return logging.Options{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// WriteDefault writes the built-in configuration as YAML. An existing file
// is left untouched unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
