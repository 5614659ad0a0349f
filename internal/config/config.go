// Package config handles configuration defaults and the optional overlay file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerURL        string        `yaml:"server_url"`
	APIKey           string        `yaml:"api_key"`
	StatePath        string        `yaml:"state_path"`
	KeepaliveEvery   time.Duration `yaml:"keepalive_every"`
	ReconnectBase    time.Duration `yaml:"reconnect_base"`
	ReconnectCap     time.Duration `yaml:"reconnect_cap"`
	UnaryTimeout     time.Duration `yaml:"unary_timeout"`
	MaxNotifications int           `yaml:"max_notifications"`
	ToastCritical    time.Duration `yaml:"toast_critical"`
	ToastImportant   time.Duration `yaml:"toast_important"`
	ToastFYI         time.Duration `yaml:"toast_fyi"`
	RecoverySettle   time.Duration `yaml:"recovery_settle"`
	ProbeInterval    time.Duration `yaml:"probe_interval"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout"`
}

func DefaultConfig() Config {
	return Config{
		ServerURL:        "http://127.0.0.1:8471",
		StatePath:        defaultStatePath(),
		KeepaliveEvery:   25 * time.Second,
		ReconnectBase:    1 * time.Second,
		ReconnectCap:     30 * time.Second,
		UnaryTimeout:     10 * time.Second,
		MaxNotifications: 50,
		ToastCritical:    8 * time.Second,
		ToastImportant:   6 * time.Second,
		ToastFYI:         4 * time.Second,
		RecoverySettle:   1 * time.Second,
		ProbeInterval:    5 * time.Second,
		ProbeTimeout:     2 * time.Second,
	}
}

// Load reads an optional YAML overlay on top of defaults. A missing file is
// not an error; a present-but-invalid file is.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = defaultConfigPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No overlay file; defaults plus env apply.
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if key := os.Getenv("PERISCOPE_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	return cfg, nil
}

func defaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "periscope", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "periscope.yaml"
	}
	return filepath.Join(home, ".config", "periscope", "config.yaml")
}

func defaultStatePath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "periscope", "session.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "periscope.db"
	}
	return filepath.Join(home, ".local", "state", "periscope", "session.db")
}
