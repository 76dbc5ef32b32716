package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL         string
	Port                string
	GoEnv               string
	Auth0Domain         string
	Auth0Audience       string
	JWTSecret           string
	AWSRegion           string
	AWSS3Bucket         string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	LogLevel            string
	KafkaBrokers        []string
	KafkaTopic          string
	SummaryPollInterval time.Duration
	CORSAllowedOrigins  []string
	MetricsEnabled      bool
}

var defaults = map[string]interface{}{
	"PORT":                  "8080",
	"GO_ENV":                "development",
	"AWS_REGION":            "us-east-1",
	"LOG_LEVEL":             "info",
	"KAFKA_TOPIC":           "order_events",
	"SUMMARY_POLL_INTERVAL": "15s",
	"CORS_ALLOWED_ORIGINS":  "*",
	"METRICS_ENABLED":       true,
}

var keys = []string{
	"DATABASE_URL",
	"AUTH0_DOMAIN",
	"AUTH0_AUDIENCE",
	"JWT_SECRET",
	"AWS_S3_BUCKET",
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"KAFKA_BROKERS",
}

// Load loads the configuration. Values come from, in order of precedence, the
// environment, .env.<GO_ENV> or .env, an optional config.yaml in CONFIG_PATH,
// and built-in defaults.
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// godotenv never overrides variables that are already set
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			slog.Info("no .env file found, using system environment variables")
		}
	} else {
		slog.Info("loaded configuration", "file", envFile)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key := range defaults {
		_ = v.BindEnv(key)
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getEnv("CONFIG_PATH", "."))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		DatabaseURL:         v.GetString("DATABASE_URL"),
		Port:                v.GetString("PORT"),
		GoEnv:               v.GetString("GO_ENV"),
		Auth0Domain:         v.GetString("AUTH0_DOMAIN"),
		Auth0Audience:       v.GetString("AUTH0_AUDIENCE"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		AWSRegion:           v.GetString("AWS_REGION"),
		AWSS3Bucket:         v.GetString("AWS_S3_BUCKET"),
		AWSAccessKeyID:      v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey:  v.GetString("AWS_SECRET_ACCESS_KEY"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		KafkaBrokers:        CSV(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:          v.GetString("KAFKA_TOPIC"),
		SummaryPollInterval: v.GetDuration("SUMMARY_POLL_INTERVAL"),
		CORSAllowedOrigins:  CSV(v.GetString("CORS_ALLOWED_ORIGINS")),
		MetricsEnabled:      v.GetBool("METRICS_ENABLED"),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.IsTest() {
		return nil
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth0Domain == "" && c.JWTSecret == "" {
		return fmt.Errorf("either AUTH0_DOMAIN or JWT_SECRET is required")
	}
	if c.SummaryPollInterval <= 0 {
		return fmt.Errorf("SUMMARY_POLL_INTERVAL must be positive")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// UsesAuth0 reports whether tokens are validated against Auth0 rather than a shared secret
func (c *Config) UsesAuth0() bool {
	return c.Auth0Domain != ""
}

// CSV splits a comma separated list, dropping blanks
func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
