package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TickRateHz != 30 || cfg.SaveDir != "saves" || cfg.CullingRadius != 16 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RngSeed == 0 {
		t.Fatal("expected a non-zero seed to be substituted")
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if again.RngSeed != cfg.RngSeed {
		t.Fatalf("seed changed across reload of the same file: %d != %d", again.RngSeed, cfg.RngSeed)
	}
}

func TestLoadOverlaysPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.toml")
	contents := "tick_rate_hz = 60\nrng_seed = 42\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing engine.toml: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TickRateHz != 60 {
		t.Fatalf("tick_rate_hz not overlaid: %d", cfg.TickRateHz)
	}
	if cfg.RngSeed != 42 {
		t.Fatalf("rng_seed not overlaid: %d", cfg.RngSeed)
	}
	if cfg.SaveDir != "saves" || cfg.CullingRadius != 16 {
		t.Fatalf("defaults not filled in for absent fields: %+v", cfg)
	}
}

func TestTickInterval(t *testing.T) {
	if Config{TickRateHz: 30}.TickInterval().Seconds() == 0 {
		t.Fatal("expected a non-zero interval for a positive tick rate")
	}
	zero := Config{TickRateHz: 0}
	def := Defaults()
	if zero.TickInterval() != def.TickInterval() {
		t.Fatal("a zero tick rate should fall back to the default interval")
	}
}
