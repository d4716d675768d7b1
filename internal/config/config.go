// Package config reads settings from the environment and an optional .env file.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr           string `mapstructure:"HTTP_ADDR"`
	DatabaseURL        string `mapstructure:"DATABASE_URL"`
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpiresIn       string `mapstructure:"JWT_EXPIRES_IN"`
	BcryptCost         int    `mapstructure:"BCRYPT_COST"`
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RabbitMQURL        string `mapstructure:"RABBITMQ_URL"`
	MailHost           string `mapstructure:"MAIL_HOST"`
	MailPort           int    `mapstructure:"MAIL_PORT"`
	MailUser           string `mapstructure:"MAIL_USER"`
	MailPass           string `mapstructure:"MAIL_PASS"`
	MailFrom           string `mapstructure:"MAIL_FROM"`
	Timezone           string `mapstructure:"TIMEZONE"`
	// AuthRateLimit is the number of register/login attempts allowed per IP per minute.
	AuthRateLimit    int    `mapstructure:"AUTH_RATE_LIMIT"`
	ReminderInterval string `mapstructure:"REMINDER_INTERVAL"`
}

// Load reads .env when present; real environment variables win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRES_IN", "168h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("MAIL_HOST", "")
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("MAIL_USER", "")
	v.SetDefault("MAIL_PASS", "")
	v.SetDefault("MAIL_FROM", "crm@localhost")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("AUTH_RATE_LIMIT", 10)
	v.SetDefault("REMINDER_INTERVAL", "24h")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET must be set")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, errors.New("config: TIMEZONE is not a valid IANA zone")
	}

	return &cfg, nil
}

// TokenTTL parses JWTExpiresIn. Returns 168h if unset or invalid.
func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTExpiresIn)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) Reminder() time.Duration {
	d, err := time.ParseDuration(c.ReminderInterval)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, p := range strings.Split(c.CORSAllowedOrigins, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
