// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "warbler-dev-secret-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port                  string        `mapstructure:"APP_PORT"`
	Env                   string        `mapstructure:"APP_ENV"`
	DatabaseDriver        string        `mapstructure:"DATABASE_DRIVER"`
	DatabaseDSN           string        `mapstructure:"DATABASE_DSN"`
	JWTSecret             string        `mapstructure:"JWT_SECRET"`
	SessionTTL            time.Duration `mapstructure:"SESSION_TTL"`
	BcryptCost            int           `mapstructure:"BCRYPT_COST"`
	RedisURL              string        `mapstructure:"REDIS_URL"`
	RabbitMQURL           string        `mapstructure:"RABBITMQ_URL"`
	DefaultImageURL       string        `mapstructure:"DEFAULT_IMAGE_URL"`
	DefaultHeaderImageURL string        `mapstructure:"DEFAULT_HEADER_IMAGE_URL"`
	SeedDemoData          bool          `mapstructure:"SEED_DEMO_DATA"`
}

// ProfileDefaults are the image URLs given to users who leave them blank.
type ProfileDefaults struct {
	ImageURL       string
	HeaderImageURL string
}

// LoadConfig loads application configuration from an optional config.yml and
// environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The file is optional.
	if err := viper.ReadInConfig(); err == nil {
		slog.Info("loaded configuration file", "path", viper.ConfigFileUsed())
	}

	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_DSN", "warbler.db")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("SESSION_TTL", "24h")
	viper.SetDefault("BCRYPT_COST", 12)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("DEFAULT_IMAGE_URL", "/static/images/default-pic.png")
	viper.SetDefault("DEFAULT_HEADER_IMAGE_URL", "/static/images/warbler-hero.jpg")
	viper.SetDefault("SEED_DEMO_DATA", false)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("APP_PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.SeedDemoData {
			slog.Warn("SEED_DEMO_DATA is enabled in production")
		}
	} else if len(c.JWTSecret) < 32 {
		slog.Warn("JWT_SECRET is shorter than 32 characters; use a stronger secret for production")
	}

	return nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// ProfileDefaults returns the configured fallback profile images.
func (c *Config) ProfileDefaults() ProfileDefaults {
	return ProfileDefaults{
		ImageURL:       c.DefaultImageURL,
		HeaderImageURL: c.DefaultHeaderImageURL,
	}
}
