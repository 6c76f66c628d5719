// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Server ServerConfig `toml:"server"`
	Play   PlayConfig   `toml:"play"`
}

// ServerConfig maps mapping store server settings.
type ServerConfig struct {
	Port        *int    `toml:"port"`
	MappingPath *string `toml:"mapping-path"`
	StaticDir   *string `toml:"static-dir"`
}

// PlayConfig maps practice-related settings.
type PlayConfig struct {
	Server     *string  `toml:"server"`
	Mode       *string  `toml:"mode"`
	Characters *string  `toml:"characters"`
	CharsFile  *string  `toml:"chars-file"`
	FPS        *int     `toml:"fps"`
	Speed      *float64 `toml:"speed"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
