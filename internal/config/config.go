// Package config loads the engine's ambient configuration: tick rate,
// save directory, culling defaults, and RNG seed. This is deliberately
// separate from the RON resource tables a Registry loads (tile/script
// definitions are game content; this is engine behavior).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml"
)

// Config is the engine.toml document. Zero values are never used
// directly; Load always fills in Defaults() for any field absent from
// the file on disk.
type Config struct {
	// TickRateHz is the scheduler's tick frequency. 0 falls back to
	// game.DefaultTickInterval's cadence.
	TickRateHz int `toml:"tick_rate_hz"`
	// SaveDir is the directory new and existing maps are stored under.
	SaveDir string `toml:"save_dir"`
	// CullingRadius is the default number of tile rings kept loaded
	// around a loaded region when a caller does not supply explicit
	// culling bounds.
	CullingRadius int32 `toml:"culling_radius"`
	// RngSeed seeds the engine's top-level random source. 0 means
	// "unseeded" (Load substitutes a random seed and records it back
	// into the struct so a caller can log the seed actually in use).
	RngSeed uint64 `toml:"rng_seed"`
}

// Defaults returns the configuration used when engine.toml does not
// exist or leaves a field unset.
func Defaults() Config {
	return Config{
		TickRateHz:    30,
		SaveDir:       "saves",
		CullingRadius: 16,
		RngSeed:       0,
	}
}

// TickInterval converts TickRateHz to a time.Duration, matching
// game.DefaultTickInterval's unit (time.Second / N).
func (c Config) TickInterval() time.Duration {
	if c.TickRateHz <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.TickRateHz)
}

// Load reads path and overlays it onto Defaults(). A missing file is
// not an error: the defaults are written back to path so the file
// exists for the operator to edit on the next run.
func Load(path string) (Config, error) {
	cfg := Defaults()

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if seedErr := cfg.ensureSeed(); seedErr != nil {
				return Config{}, seedErr
			}
			if writeErr := write(path, cfg); writeErr != nil {
				return Config{}, writeErr
			}
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(contents) != 0 {
		if err := toml.Unmarshal(contents, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: decoding %s: %w", path, err)
		}
	}
	if err := cfg.ensureSeed(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ensureSeed substitutes a random seed when none was configured, so a
// zero RngSeed in engine.toml always means "pick one," never "seed
// with zero."
func (c *Config) ensureSeed() error {
	if c.RngSeed != 0 {
		return nil
	}
	c.RngSeed = rand.Uint64()
	return nil
}

func write(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: creating %s: %w", dir, err)
		}
	}
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
