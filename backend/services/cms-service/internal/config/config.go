package config

import (
	"fmt"
	"strings"
	"time"

	libconfig "voltshare/backend/libs/config"
)

// HTTPConfig holds listener settings.
type HTTPConfig struct {
	Port string `yaml:"port" env:"CMS_HTTP_PORT"`
}

// AuthorityConfig points at the booking authority.
type AuthorityConfig struct {
	BaseURL string `yaml:"baseUrl" env:"CMS_BOOKING_URL"`
}

// MeterConfig tunes the energy tick loop.
type MeterConfig struct {
	Interval time.Duration `yaml:"interval" env:"CMS_METER_INTERVAL"`
	Delta    float64       `yaml:"delta" env:"CMS_METER_DELTA"`
}

// Config defines cms service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Authority AuthorityConfig `yaml:"authority"`
	Meter     MeterConfig     `yaml:"meter"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP:      HTTPConfig{Port: "9090"},
		Authority: AuthorityConfig{BaseURL: "http://localhost:8080"},
		Meter: MeterConfig{
			Interval: time.Second,
			Delta:    0.01,
		},
	}

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "9090"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
