package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string        `mapstructure:"PORT"`
	GinMode                          string        `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string        `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string        `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string        `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	StripeSecretKey                  string        `mapstructure:"STRIPE_SECRET_KEY"`
	ClientURL                        string        `mapstructure:"CLIENT_URL"`
	RedisAddr                        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword                    string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB                          int           `mapstructure:"REDIS_DB"`
	CacheTTL                         time.Duration `mapstructure:"CACHE_TTL"`
	RabbitMQURL                      string        `mapstructure:"RABBITMQ_URL"`
	SettlementQueue                  string        `mapstructure:"SETTLEMENT_QUEUE"`
	TopContributorsWindowDays        int           `mapstructure:"TOP_CONTRIBUTORS_WINDOW_DAYS"`
	ShutdownTimeout                  time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var keys = []string{
	"PORT",
	"GIN_MODE",
	"FIREBASE_PROJECT_ID",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"STRIPE_SECRET_KEY",
	"CLIENT_URL",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"REDIS_DB",
	"CACHE_TTL",
	"RABBITMQ_URL",
	"SETTLEMENT_QUEUE",
	"TOP_CONTRIBUTORS_WINDOW_DAYS",
	"SHUTDOWN_TIMEOUT",
}

// LoadConfig loads configuration from environment variables using Viper.
// Outside release mode a .env file in the working directory is loaded first;
// variables already set in the environment win over the file.
func LoadConfig() (*Config, error) {
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("GIN_MODE")), "release") {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "60s")
	v.SetDefault("SETTLEMENT_QUEUE", "payment-confirmations")
	v.SetDefault("TOP_CONTRIBUTORS_WINDOW_DAYS", 7)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.New("failed to bind " + key + ": " + err.Error())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.TopContributorsWindowDays <= 0 {
		return errors.New("TOP_CONTRIBUTORS_WINDOW_DAYS must be positive")
	}
	if c.CacheTTL < 0 {
		return errors.New("CACHE_TTL cannot be negative")
	}
	return nil
}

// IsRelease reports whether the server runs in gin release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}

// AllowedOrigins splits CLIENT_URL on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.ClientURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
