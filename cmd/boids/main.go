package main

import (
	"context"
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/simulation"
)

func main() {
	configPath := flag.String("config", "", "configuration file (.json, .yaml or .toml)")
	seed := flag.Int64("seed", 0, "random seed, 0 for a time based one")
	layout := flag.String("layout", "", "instance layout: matrix or transform")
	debug := flag.Bool("debug", false, "log the frame rate every second")
	flag.Parse()

	level := log.InfoLevel
	if *debug {
		level = log.DebugLevel
	}
	logger := log.New(level, os.Stdout)

	cfg := simulation.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configPath); err != nil {
			logger.Fatal(err)
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *layout != "" {
		cfg.Layout = *layout
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal(err)
	}

	ctx := context.Background()
	system, err := actor.NewActorSystem("boids",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(1))
	if err != nil {
		logger.Fatal(err)
	}
	if err := system.Start(ctx); err != nil {
		logger.Fatal(err)
	}
	defer system.Stop(ctx)

	game, err := simulation.NewGame(ctx, cfg, system, logger)
	if err != nil {
		logger.Fatal(err)
	}

	ebiten.SetWindowSize(cfg.WindowWidth, cfg.WindowHeight)
	ebiten.SetWindowTitle("Boids (instanced)")
	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal(err)
	}
}
