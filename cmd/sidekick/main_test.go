package main

import (
	"testing"

	"sidekick/internal/config"
)

func TestApplyOverrides_FlagBeatsEnv(t *testing.T) {
	t.Setenv("SIDEKICK_STORE", "file")
	flagStore = "sqlite"
	defer func() { flagStore = "" }()

	cfg := config.Default()
	applyOverrides(&cfg)

	if cfg.Store != "sqlite" {
		t.Fatalf("store = %q, want flag value sqlite", cfg.Store)
	}
}

func TestApplyOverrides_EnvBeatsFile(t *testing.T) {
	t.Setenv("SIDEKICK_STORE", "file")
	flagStore = ""

	cfg := config.Default()
	applyOverrides(&cfg)

	if cfg.Store != "file" {
		t.Fatalf("store = %q, want env value file", cfg.Store)
	}
}

func TestOpenStore_RejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Store = "redis"
	cfg.StorageRoot = t.TempDir()

	if _, _, err := openStore(cfg); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}
