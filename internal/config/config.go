package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"extract-viewer/internal/domain"

	"gopkg.in/yaml.v3"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort               string        `yaml:"server_port"`
	ExtractorURL             string        `yaml:"extractor_url"`
	ExtractorTimeout         time.Duration `yaml:"extractor_timeout"`
	MaxFileSize              int64         `yaml:"max_file_size"`
	MaxConcurrentExtractions int64         `yaml:"max_concurrent_extractions"`
	MaxSessions              int           `yaml:"max_sessions"`
	LogLevel                 string        `yaml:"log_level"`
	SupabaseURL              string        `yaml:"supabase_url"`
	SupabaseKey              string        `yaml:"supabase_anon_key"`
	PreferencesDB            string        `yaml:"preferences_db"`
	AllowedOrigins           []string      `yaml:"allowed_origins"`
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		ServerPort:               "8080",
		ExtractorURL:             "http://localhost:5000",
		ExtractorTimeout:         5 * time.Minute,
		MaxFileSize:              256 * 1024 * 1024, // 256MB default
		MaxConcurrentExtractions: 4,
		MaxSessions:              1024,
		LogLevel:                 "info",
		PreferencesDB:            "preferences.db",
		AllowedOrigins:           []string{"http://localhost:8080", "http://127.0.0.1:8080"},
	}
}

// NewConfig creates a configuration from defaults and environment variables
func NewConfig() domain.Config {
	cfg := defaultConfig()
	cfg.applyEnv()
	return cfg
}

// LoadConfig builds the configuration in three layers: defaults, then the
// YAML file at path (skipped when path is empty), then environment variables.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *AppConfig) applyEnv() {
	// Cloud Run (and many PaaS) provide the listening port via PORT.
	// Keep SERVER_PORT for local/dev compatibility.
	c.ServerPort = getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", c.ServerPort))
	c.ExtractorURL = getEnvOrDefault("EXTRACTOR_URL", c.ExtractorURL)
	c.ExtractorTimeout = getEnvDurationOrDefault("EXTRACTOR_TIMEOUT", c.ExtractorTimeout)
	c.MaxFileSize = getEnvInt64OrDefault("MAX_FILE_SIZE", c.MaxFileSize)
	c.MaxConcurrentExtractions = getEnvInt64OrDefault("MAX_CONCURRENT_EXTRACTIONS", c.MaxConcurrentExtractions)
	c.MaxSessions = int(getEnvInt64OrDefault("MAX_SESSIONS", int64(c.MaxSessions)))
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.SupabaseURL = getEnvOrDefault("SUPABASE_URL", c.SupabaseURL)
	c.SupabaseKey = getEnvOrDefault("SUPABASE_ANON_KEY", c.SupabaseKey)
	c.PreferencesDB = getEnvOrDefault("PREFERENCES_DB", c.PreferencesDB)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetExtractorURL returns the base URL of the extraction backend
func (c *AppConfig) GetExtractorURL() string {
	return c.ExtractorURL
}

// GetExtractorTimeout returns the timeout of one extraction request
func (c *AppConfig) GetExtractorTimeout() time.Duration {
	return c.ExtractorTimeout
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetMaxConcurrentExtractions returns how many uploads may be forwarded at once
func (c *AppConfig) GetMaxConcurrentExtractions() int64 {
	return c.MaxConcurrentExtractions
}

// GetMaxSessions returns how many browser sessions are kept in memory
func (c *AppConfig) GetMaxSessions() int {
	return c.MaxSessions
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetPreferencesDB returns the SQLite file used when Supabase is not configured
func (c *AppConfig) GetPreferencesDB() string {
	return c.PreferencesDB
}

// GetAllowedOrigins returns the CORS origins
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
