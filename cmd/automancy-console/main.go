// Command automancy-console runs a bare scheduler with no network or
// render front-end attached, driven purely by the interactive admin
// console (internal/console) — useful for exercising save/load and
// placement by hand without a graphical client.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/automancy/automancy/internal/config"
	"github.com/automancy/automancy/internal/console"
	"github.com/automancy/automancy/internal/game"
	"github.com/automancy/automancy/internal/ids"
	"github.com/automancy/automancy/internal/resources"
	"github.com/automancy/automancy/internal/tile"
)

func main() {
	configPath := flag.String("config", "engine.toml", "path to the engine's ambient configuration file")
	flag.Parse()

	log := slog.Default()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("loading engine config", "path", *configPath, "err", err)
		os.Exit(1)
	}
	log.Info("engine config loaded",
		"tick_rate_hz", cfg.TickRateHz, "save_dir", cfg.SaveDir,
		"culling_radius", cfg.CullingRadius, "rng_seed", cfg.RngSeed)
	tile.SeedRandom(cfg.RngSeed)

	interner := ids.NewInterner()
	registry := resources.NewRegistry(interner)

	g := game.New(log, registry, nil, cfg.SaveDir, game.WithTickInterval(cfg.TickInterval()))
	defer g.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console.New(g, registry, log, cfg.CullingRadius).Run(ctx)
}
