package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variables recognized by ApplyEnv.
const (
	EnvLogLevel        = "PREDICT_LOG_LEVEL"
	EnvLogFormat       = "PREDICT_LOG_FORMAT"
	EnvLogFile         = "PREDICT_LOG_FILE"
	EnvKeyCacheSize    = "PREDICT_KEY_CACHE_SIZE"
	EnvMaxBodyBytes    = "PREDICT_MAX_BODY_BYTES"
	EnvShutdownTimeout = "PREDICT_SHUTDOWN_TIMEOUT"
	EnvCORSOrigin      = "PREDICT_CORS_ORIGIN"
	EnvBankruptcyPort  = "BANKRUPTCY_PORT"
	EnvBankruptcyModel = "BANKRUPTCY_BUNDLE"
	EnvLeadPort        = "LEAD_PORT"
	EnvLeadModel       = "LEAD_BUNDLE"
)

// ApplyEnv overrides fields from environment variables. A malformed number or duration is
// reported rather than ignored.
func (c *Config) ApplyEnv() error {
	c.Log.Level = getEnvString(EnvLogLevel, c.Log.Level)
	c.Log.Format = getEnvString(EnvLogFormat, c.Log.Format)
	c.Log.File = getEnvString(EnvLogFile, c.Log.File)
	c.Server.CORSOrigin = getEnvString(EnvCORSOrigin, c.Server.CORSOrigin)
	c.Bankruptcy.Bundle = getEnvString(EnvBankruptcyModel, c.Bankruptcy.Bundle)
	c.Lead.Bundle = getEnvString(EnvLeadModel, c.Lead.Bundle)

	var err error
	if c.Server.KeyCacheSize, err = getEnvInt(EnvKeyCacheSize, c.Server.KeyCacheSize); err != nil {
		return err
	}
	if c.Bankruptcy.Port, err = getEnvInt(EnvBankruptcyPort, c.Bankruptcy.Port); err != nil {
		return err
	}
	if c.Lead.Port, err = getEnvInt(EnvLeadPort, c.Lead.Port); err != nil {
		return err
	}
	maxBody, err := getEnvInt(EnvMaxBodyBytes, int(c.Server.MaxBodyBytes))
	if err != nil {
		return err
	}
	c.Server.MaxBodyBytes = int64(maxBody)
	if c.Server.ShutdownTimeout, err = getEnvDuration(EnvShutdownTimeout, c.Server.ShutdownTimeout); err != nil {
		return err
	}
	return nil
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s: %w", key, err)
	}
	return intValue, nil
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s: %w", key, err)
	}
	return duration, nil
}
