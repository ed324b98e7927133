// Package config provides configuration loading and validation for the prediction services.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/predict-service/internal/logging"
	"gopkg.in/yaml.v2"
)

// Config is the process configuration. It can be loaded from a YAML or JSON file; every field
// is optional and falls back to Default.
type Config struct {
	Log        logging.Config `yaml:"log"`
	Server     ServerConfig   `yaml:"server"`
	Bankruptcy ServiceConfig  `yaml:"bankruptcy"`
	Lead       ServiceConfig  `yaml:"lead"`
}

// ServerConfig holds HTTP settings shared by both services.
type ServerConfig struct {
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" validate:"gt=0"`
	KeyCacheSize    int           `yaml:"key_cache_size" validate:"gte=0"`
	CORSOrigin      string        `yaml:"cors_origin"`
}

// ServiceConfig configures one prediction service.
type ServiceConfig struct {
	Port   int    `yaml:"port" validate:"gte=1,lte=65535"`
	Bundle string `yaml:"bundle" validate:"required"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: logging.Config{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Server: ServerConfig{
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    1 << 20,
			KeyCacheSize:    1024,
			CORSOrigin:      "*",
		},
		Bankruptcy: ServiceConfig{
			Port:   9696,
			Bundle: "data/bankruptcy_model.json",
		},
		Lead: ServiceConfig{
			Port:   8000,
			Bundle: "data/lead_model.json",
		},
	}
}

// LoadConfig loads configuration from a YAML or JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// JSON is a subset of YAML, so one decoder serves both formats.
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", filepath.Base(path), err)
	}

	return &cfg, nil
}

// Load builds the effective configuration: defaults, then the file at path (if any), then
// environment overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %s", describeValidation(err))
	}

	if c.Bankruptcy.Port == c.Lead.Port {
		return fmt.Errorf("config error: bankruptcy and lead services cannot share port %d", c.Lead.Port)
	}
	if c.Log.File != "" && c.Log.MaxSizeMB == 0 {
		return fmt.Errorf("config error: 'log.max_size_mb' must be positive when 'log.file' is set")
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// Log
	if result.Log.Level == "" {
		result.Log.Level = defaults.Log.Level
	}
	if result.Log.Format == "" {
		result.Log.Format = defaults.Log.Format
	}
	if result.Log.File == "" {
		result.Log.File = defaults.Log.File
	}
	if result.Log.MaxSizeMB == 0 {
		result.Log.MaxSizeMB = defaults.Log.MaxSizeMB
	}
	if result.Log.MaxBackups == 0 {
		result.Log.MaxBackups = defaults.Log.MaxBackups
	}
	if result.Log.MaxAgeDays == 0 {
		result.Log.MaxAgeDays = defaults.Log.MaxAgeDays
	}

	// Server
	if result.Server.ReadTimeout == 0 {
		result.Server.ReadTimeout = defaults.Server.ReadTimeout
	}
	if result.Server.WriteTimeout == 0 {
		result.Server.WriteTimeout = defaults.Server.WriteTimeout
	}
	if result.Server.IdleTimeout == 0 {
		result.Server.IdleTimeout = defaults.Server.IdleTimeout
	}
	if result.Server.ShutdownTimeout == 0 {
		result.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if result.Server.MaxBodyBytes == 0 {
		result.Server.MaxBodyBytes = defaults.Server.MaxBodyBytes
	}
	// A zero cache size falls back here; PREDICT_KEY_CACHE_SIZE=0 disables the cache.
	if result.Server.KeyCacheSize == 0 {
		result.Server.KeyCacheSize = defaults.Server.KeyCacheSize
	}
	if result.Server.CORSOrigin == "" {
		result.Server.CORSOrigin = defaults.Server.CORSOrigin
	}

	// Services
	result.Bankruptcy = mergeService(result.Bankruptcy, defaults.Bankruptcy)
	result.Lead = mergeService(result.Lead, defaults.Lead)

	return result
}

func mergeService(s, defaults ServiceConfig) ServiceConfig {
	if s.Port == 0 {
		s.Port = defaults.Port
	}
	if s.Bundle == "" {
		s.Bundle = defaults.Bundle
	}
	return s
}

func describeValidation(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("'%s' must satisfy %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("'%s' is %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
