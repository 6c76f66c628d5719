package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds the values read from the process environment.
type EnvConfig struct {
	Port int `env:"PORT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
