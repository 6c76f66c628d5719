package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Server.Port != nil || cfg.Play.Mode != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `[server]
port = 4000
mapping-path = "/tmp/map.json"

[play]
mode = "wb"
characters = "abc"
speed = 0.5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Port == nil || *cfg.Server.Port != 4000 {
		t.Fatalf("unexpected port: %v", cfg.Server.Port)
	}
	if cfg.Server.MappingPath == nil || *cfg.Server.MappingPath != "/tmp/map.json" {
		t.Fatalf("unexpected mapping path: %v", cfg.Server.MappingPath)
	}
	if cfg.Play.Mode == nil || *cfg.Play.Mode != "wb" {
		t.Fatalf("unexpected mode: %v", cfg.Play.Mode)
	}
	if cfg.Play.Speed == nil || *cfg.Play.Speed != 0.5 {
		t.Fatalf("unexpected speed: %v", cfg.Play.Speed)
	}
	if cfg.Play.FPS != nil {
		t.Fatalf("expected unset fps, got %d", *cfg.Play.FPS)
	}
}

func TestLoadConfigRejectsEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestParseEnvPort(t *testing.T) {
	t.Setenv("PORT", "8088")
	cfg, err := ParseEnv()
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 8088 {
		t.Fatalf("expected port 8088, got %d", cfg.Port)
	}
}

func TestParseEnvInvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	if _, err := ParseEnv(); err == nil {
		t.Fatalf("expected error for invalid PORT")
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "wbdrift", "config.toml") {
		t.Fatalf("unexpected config path: %s", got)
	}
	if got := DefaultMappingPath(); got != filepath.Join("/data", "wbdrift", "wb-mapping.json") {
		t.Fatalf("unexpected mapping path: %s", got)
	}
}
