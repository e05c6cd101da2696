package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gokundoluk/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Kundoluk KundolukConfig `validate:"required"`
	Fetch    FetchConfig    `validate:"required"`
	Report   ReportConfig   `validate:"required"`
	Server   ServerConfig   `validate:"required"`
	Classes  ClassesConfig
	LogLevel string `validate:"omitempty,oneof=ERROR WARN INFO DEBUG TRACE"`
}

// KundolukConfig holds remote gradebook settings
type KundolukConfig struct {
	BaseURL   string        `validate:"required,url"`
	Session   string        `validate:"required"`
	UserAgent string        `validate:"required"`
	Timeout   time.Duration `validate:"gt=0"`
}

// FetchConfig controls the subject fan-out
type FetchConfig struct {
	Stagger       time.Duration `validate:"gte=0"`
	MaxConcurrent int           `validate:"gte=0"`
}

// ReportConfig holds output settings
type ReportConfig struct {
	OutputDir string `validate:"required"`
	Open      bool
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required,numeric"`
	GinMode string `validate:"oneof=debug release test"`
}

// ClassesConfig points at an optional class registry file
type ClassesConfig struct {
	File string
}

const (
	defaultBaseURL   = "https://kundoluk.edu.kg"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.6324.206 Safari/537.36"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	kundoluk, err := loadKundolukConfig(true)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load gradebook configuration")
	}

	config := newConfig(kundoluk)
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// LoadOffline reads configuration for commands that never contact the
// gradebook, so the session may be absent
func LoadOffline() (*Config, error) {
	kundoluk, _ := loadKundolukConfig(false)

	config := newConfig(kundoluk)
	if err := validator.New().StructExcept(config, "Kundoluk.Session"); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "configuration validation failed")
	}

	return config, nil
}

// HasSession reports whether gradebook credentials are configured
func (c *Config) HasSession() bool {
	return c.Kundoluk.Session != ""
}

func newConfig(kundoluk *KundolukConfig) *Config {
	return &Config{
		Kundoluk: *kundoluk,
		Fetch:    *loadFetchConfig(),
		Report:   *loadReportConfig(),
		Server:   *loadServerConfig(),
		Classes:  ClassesConfig{File: getEnvOrDefault("CLASSES_FILE", "")},
		LogLevel: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
	}
}

// Validate checks the struct tags of the whole configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	return nil
}

func loadKundolukConfig(requireSession bool) (*KundolukConfig, error) {
	kundoluk := &KundolukConfig{
		BaseURL:   getEnvOrDefault("KUNDOLUK_BASE_URL", defaultBaseURL),
		Session:   os.Getenv("KUNDOLUK_SESSION"),
		UserAgent: getEnvOrDefault("KUNDOLUK_USER_AGENT", defaultUserAgent),
		Timeout:   getEnvDurationOrDefault("HTTP_TIMEOUT", 30*time.Second),
	}
	if requireSession && kundoluk.Session == "" {
		return kundoluk, errors.ConfigInvalid("KUNDOLUK_SESSION is required")
	}
	return kundoluk, nil
}

func loadFetchConfig() *FetchConfig {
	return &FetchConfig{
		Stagger:       getEnvDurationOrDefault("FETCH_STAGGER", 100*time.Millisecond),
		MaxConcurrent: getEnvIntOrDefault("FETCH_MAX_CONCURRENT", 0),
	}
}

func loadReportConfig() *ReportConfig {
	return &ReportConfig{
		OutputDir: getEnvOrDefault("OUTPUT_DIR", "./data"),
		Open:      getEnvBoolOrDefault("OPEN_REPORT", false),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
