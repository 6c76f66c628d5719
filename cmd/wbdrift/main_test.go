package main

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/wbdrift/internal/config"
	"github.com/verte-zerg/wbdrift/internal/model"
)

func TestParseEntries(t *testing.T) {
	entries, err := parseEntries([]string{"你=wqiy", " 好 = vb ", "a=b=c"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if entries["你"] != "wqiy" || entries["好"] != "vb" || entries["a"] != "b=c" {
		t.Fatalf("unexpected entries: %v", entries)
	}
	for _, bad := range []string{"novalue", "=x", "k="} {
		if _, err := parseEntries([]string{bad}); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestApplyConfigRespectsFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var server string
	var fps int
	cmd.Flags().StringVar(&server, "server", "default", "")
	cmd.Flags().IntVar(&fps, "fps", 30, "")
	if err := cmd.Flags().Set("fps", "60"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	fromFile := "http://example:9000"
	fileFPS := 10
	applyStringConfig(cmd, "server", &server, &fromFile)
	applyIntConfig(cmd, "fps", &fps, &fileFPS)
	if server != fromFile {
		t.Fatalf("expected config value for unset flag, got %q", server)
	}
	if fps != 60 {
		t.Fatalf("expected flag to win over config, got %d", fps)
	}
	applyStringConfig(cmd, "server", &server, nil)
	if server != fromFile {
		t.Fatalf("nil config value should not change target")
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var cfg config.FileConfig
	if _, err := toml.Decode(defaultConfigTemplate(), &cfg); err != nil {
		t.Fatalf("decode template: %v", err)
	}
	if cfg.Server.Port != nil || cfg.Play.Mode != nil {
		t.Fatalf("template values should be commented out")
	}
}

func TestValidatePlayConfig(t *testing.T) {
	good := model.PlayConfig{Server: defaultServer, Mode: model.ModeChars, FPS: 30, Speed: 0.5}
	if err := validatePlayConfig(good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := good
	bad.FPS = 0
	if err := validatePlayConfig(bad); err == nil {
		t.Fatalf("expected fps error")
	}
	bad = good
	bad.Speed = 0
	if err := validatePlayConfig(bad); err == nil {
		t.Fatalf("expected speed error")
	}
	bad = good
	bad.Server = " "
	if err := validatePlayConfig(bad); err == nil {
		t.Fatalf("expected server error")
	}
}
