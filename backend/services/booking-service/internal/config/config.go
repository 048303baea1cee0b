package config

import (
	"fmt"
	"strings"
	"time"

	libconfig "voltshare/backend/libs/config"
)

// HTTPConfig holds listener settings.
type HTTPConfig struct {
	Port string `yaml:"port" env:"BOOKING_HTTP_PORT"`
}

// DatabaseConfig holds storage settings. An empty DSN switches the service to
// the in-memory repositories (local/demo mode, nothing survives a restart).
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"BOOKING_POSTGRES_DSN"`
}

// RedisConfig holds the OTP store settings. An empty addr falls back to the
// in-process store.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"BOOKING_REDIS_ADDR"`
	Password string        `yaml:"password" env:"BOOKING_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"BOOKING_REDIS_DB"`
	OTPTTL   time.Duration `yaml:"otpTtl" env:"BOOKING_OTP_TTL"`
}

// CMSConfig points at the charger management system.
type CMSConfig struct {
	BaseURL string `yaml:"baseUrl" env:"BOOKING_CMS_URL"`
}

// Config defines booking service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	CMS      CMSConfig      `yaml:"cms"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP:  HTTPConfig{Port: "8080"},
		Redis: RedisConfig{OTPTTL: 5 * time.Minute},
		CMS:   CMSConfig{BaseURL: "http://localhost:9090"},
	}

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.Redis.OTPTTL <= 0 {
		cfg.Redis.OTPTTL = 5 * time.Minute
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
