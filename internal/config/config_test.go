package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing overlay must not be an error: %v", err)
	}
	if cfg.KeepaliveEvery != 25*time.Second {
		t.Fatalf("keepalive default = %v", cfg.KeepaliveEvery)
	}
	if cfg.ReconnectCap != 30*time.Second || cfg.MaxNotifications != 50 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadOverlayAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "server_url: http://10.0.0.2:9000\nreconnect_cap: 12s\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PERISCOPE_API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "http://10.0.0.2:9000" {
		t.Fatalf("server_url overlay not applied: %q", cfg.ServerURL)
	}
	if cfg.ReconnectCap != 12*time.Second {
		t.Fatalf("reconnect_cap overlay not applied: %v", cfg.ReconnectCap)
	}
	if cfg.KeepaliveEvery != 25*time.Second {
		t.Fatalf("untouched field lost its default: %v", cfg.KeepaliveEvery)
	}
	if cfg.APIKey != "from-env" {
		t.Fatalf("env api key not applied: %q", cfg.APIKey)
	}
}

func TestLoadEnvAppliesWithoutFile(t *testing.T) {
	t.Setenv("PERISCOPE_API_KEY", "solo-env")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIKey != "solo-env" {
		t.Fatalf("env api key must apply even without an overlay file: %q", cfg.APIKey)
	}
}

func TestLoadInvalidYAMLIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server_url: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("invalid overlay must be an error")
	}
}
