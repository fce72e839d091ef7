package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"sidekick/internal/engine"
)

type Config struct {
	// Store selects the session store backend: "sqlite" or "file".
	Store string `yaml:"store"`
	// StorageRoot overrides where sessions are kept.
	StorageRoot string `yaml:"storage_root"`
	// DebounceMS bounds the file-suggestion request rate.
	DebounceMS int    `yaml:"debounce_ms"`
	LogLevel   string `yaml:"log_level"`
	LogPath    string `yaml:"log_path"`

	Settings engine.Settings `yaml:"settings"`
}

func Default() Config {
	return Config{
		Store:      "sqlite",
		DebounceMS: 100,
		LogLevel:   "info",
	}
}

func DefaultPath() string {
	if base := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); base != "" {
		return filepath.Join(base, "sidekick", "config.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".config", "sidekick", "config.yaml")
	}
	return filepath.Join(os.TempDir(), "sidekick", "config.yaml")
}

// Load reads the config at path, falling back to defaults when the file does
// not exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Store == "" {
		cfg.Store = "sqlite"
	}
	if cfg.DebounceMS <= 0 {
		cfg.DebounceMS = 100
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// Save writes the config back, creating the directory as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
