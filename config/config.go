package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort     string
	AllowedOrigins string
	Environment    string

	StoreBackend string
	BoltPath     string
	RedisURL     string
	StorePrefix  string

	RecognitionURL     string
	RecognitionTimeout time.Duration
	PollInterval       time.Duration

	TimeZone     string
	CardFontPath string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	ExportBucket   string

	// SentryDSN enables error reporting when set.
	SentryDSN string
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load() // Ignore error since file might not exist in production

	env := strings.ToLower(getEnvWithDefault("ENVIRONMENT", "development"))
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[env] {
		return nil, fmt.Errorf("invalid environment value: %s", env)
	}

	backend := strings.ToLower(getEnvWithDefault("STORE_BACKEND", "bolt"))
	switch backend {
	case "memory", "bolt":
	case "redis":
		if os.Getenv("REDIS_URL") == "" {
			return nil, fmt.Errorf("REDIS_URL environment variable is required for the redis store backend")
		}
	default:
		return nil, fmt.Errorf("invalid store backend: %s", backend)
	}

	recognitionTimeout, err := getDurationWithDefault("RECOGNITION_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	pollInterval, err := getDurationWithDefault("POLL_INTERVAL", 2*time.Second)
	if err != nil {
		return nil, err
	}

	useSSL, err := strconv.ParseBool(getEnvWithDefault("MINIO_USE_SSL", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid MINIO_USE_SSL value: %w", err)
	}

	config := &Config{
		Environment:    env,
		ServerPort:     getEnvWithDefault("SERVER_PORT", "8080"),
		AllowedOrigins: getEnvWithDefault("ALLOWED_ORIGINS", "*"),

		StoreBackend: backend,
		BoltPath:     getEnvWithDefault("BOLT_PATH", "data/intake.bolt"),
		RedisURL:     os.Getenv("REDIS_URL"),
		StorePrefix:  getEnvWithDefault("STORE_PREFIX", "intake:"),

		RecognitionURL:     strings.TrimRight(getEnvWithDefault("RECOGNITION_URL", "http://localhost:5000"), "/"),
		RecognitionTimeout: recognitionTimeout,
		PollInterval:       pollInterval,

		TimeZone:     getEnvWithDefault("TIME_ZONE", "Local"),
		CardFontPath: os.Getenv("CARD_FONT_PATH"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioUseSSL:    useSSL,
		ExportBucket:   getEnvWithDefault("EXPORT_BUCKET", "history-exports"),

		SentryDSN: os.Getenv("SENTRY_DSN"),
	}

	if _, err := config.Location(); err != nil {
		return nil, err
	}

	return config, nil
}

// Location resolves TimeZone. Day, week and month boundaries are computed in it.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// ArchiveEnabled reports whether exports are copied to object storage.
func (c *Config) ArchiveEnabled() bool {
	return c.MinioEndpoint != ""
}

// IsDevelopment returns whether the current environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns whether the current environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsStaging returns whether the current environment is staging
func (c *Config) IsStaging() bool {
	return c.Environment == "staging"
}
