package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Random User API configuration
	UserSource UserSourceConfig

	// Page rendering configuration
	Display DisplayConfig

	// Browser session configuration
	Session SessionConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// CORS configuration for the JSON API
	CORS CORSConfig

	// Metrics configuration
	Metrics MetricsConfig

	// Logging configuration
	Logging LoggingConfig

	// Application metadata
	App AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// UserSourceConfig holds the external user API settings
type UserSourceConfig struct {
	URL     string
	Results int
	PingTTL time.Duration // how long a health check result is reused
}

// DisplayConfig holds page rendering settings
type DisplayConfig struct {
	Title    string
	Timezone string // IANA name; empty means the host's local zone
}

// SessionConfig holds browser session settings
type SessionConfig struct {
	CookieName      string
	TTL             time.Duration
	CleanupInterval time.Duration
	SecureCookie    bool
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// MetricsConfig holds Prometheus configuration
type MetricsConfig struct {
	Enabled bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// MaxResults is the largest batch the Random User API serves
const MaxResults = 5000

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := FromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv reads the configuration from the process environment without validating it
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", ":8080"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		UserSource: UserSourceConfig{
			URL:     getEnvOrDefault("RANDOMUSER_URL", "https://randomuser.me/api/"),
			Results: getIntOrDefault("RANDOMUSER_RESULTS", 20),
			PingTTL: getDurationOrDefault("RANDOMUSER_PING_TTL", 30*time.Second),
		},
		Display: DisplayConfig{
			Title:    getEnvOrDefault("DISPLAY_TITLE", "User Directory"),
			Timezone: os.Getenv("DISPLAY_TIMEZONE"),
		},
		Session: SessionConfig{
			CookieName:      getEnvOrDefault("SESSION_COOKIE", "directory_session"),
			TTL:             getDurationOrDefault("SESSION_TTL", 30*time.Minute),
			CleanupInterval: getDurationOrDefault("SESSION_CLEANUP_INTERVAL", time.Minute),
			SecureCookie:    getBoolOrDefault("SESSION_SECURE_COOKIE", false),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolOrDefault("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getFloatOrDefault("RATE_LIMIT_RPS", 10),
			BurstSize:         getIntOrDefault("RATE_LIMIT_BURST", 20),
		},
		CORS: CORSConfig{
			AllowedOrigins: getStringSliceOrDefault("CORS_ALLOWED_ORIGINS", []string{}),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolOrDefault("METRICS_ENABLED", true),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			Name:        getEnvOrDefault("APP_NAME", "user-directory"),
			Version:     getEnvOrDefault("APP_VERSION", "dev"),
			Environment: getEnvOrDefault("APP_ENV", "development"),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	if u, err := url.Parse(c.UserSource.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "RANDOMUSER_URL must be an absolute URL")
	}

	if c.UserSource.Results < 1 || c.UserSource.Results > MaxResults {
		errs = append(errs, fmt.Sprintf("RANDOMUSER_RESULTS must be between 1 and %d", MaxResults))
	}

	if c.UserSource.PingTTL < 0 {
		errs = append(errs, "RANDOMUSER_PING_TTL cannot be negative")
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, "DISPLAY_TIMEZONE is not a known time zone")
	}

	if c.Session.CookieName == "" {
		errs = append(errs, "SESSION_COOKIE cannot be empty")
	}

	if c.Session.TTL <= 0 {
		errs = append(errs, "SESSION_TTL must be positive")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstSize <= 0) {
		errs = append(errs, "RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}

	if c.IsProduction() {
		if len(c.CORS.AllowedOrigins) == 0 {
			errs = append(errs, "CORS_ALLOWED_ORIGINS must be set in production")
		}
		if !c.Session.SecureCookie {
			errs = append(errs, "SESSION_SECURE_COOKIE must be true in production")
		}
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// Location returns the display time zone. An empty name means the host's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Display.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Display.Timezone)
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// String returns a short representation of the config for logging
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, UserSource: %s (results=%d), RateLimit: %v, Metrics: %v, Environment: %s}",
		c.Server.Port,
		c.UserSource.URL,
		c.UserSource.Results,
		c.RateLimit.Enabled,
		c.Metrics.Enabled,
		c.App.Environment,
	)
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
