package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-boids-instanced/internal/telemetry"
	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/render"
	"github.com/lao-tseu-is-alive/go-boids-instanced/pkg/simulation"
)

func main() {
	configPath := flag.String("config", "", "configuration file (.json, .yaml or .toml)")
	seed := flag.Int64("seed", 0, "random seed, 0 for a time based one")
	layout := flag.String("layout", "", "instance layout: matrix or transform")
	frames := flag.Uint64("frames", 3600, "frames to run, 0 to run until interrupted")
	outputDir := flag.String("output-dir", "", "directory for config.yaml and telemetry.csv")
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

	recorder, err := telemetry.OpenRecorder(*outputDir, cfg.TelemetryEvery)
	if err != nil {
		logger.Fatal(err)
	}
	if *outputDir != "" {
		if err := cfg.WriteYAML(filepath.Join(*outputDir, "config.yaml")); err != nil {
			logger.Fatal(err)
		}
	}

	driver := simulation.NewDriver(cfg, cfg.Settings, &render.BufferRenderer{}, logger)
	if err := driver.Start(); err != nil {
		logger.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var recordErr error
	clock := &simulation.SteppedClock{Step: time.Duration(cfg.FrameStepMs * float64(time.Millisecond))}
	start := time.Now()
	runErr := driver.Run(ctx, clock, *frames, func(d *simulation.Driver) {
		if recordErr == nil {
			recordErr = recorder.Observe(d.Frames(), d.Population())
		}
	})
	elapsed := time.Since(start)

	if err := recorder.Close(); err != nil && recordErr == nil {
		recordErr = err
	}
	if recordErr != nil {
		logger.Error(recordErr)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Fatal(runErr)
	}

	logger.Infof("%d frames of %d agents in %s (%.1f frames/s), %d telemetry rows",
		driver.Frames(), len(driver.Population()), elapsed.Round(time.Millisecond),
		float64(driver.Frames())/elapsed.Seconds(), recorder.Rows())
	summary := telemetry.Measure(driver.Frames(), driver.Population())
	logger.Infof("final flock: mean speed %.6f (max %.4f), polarization %.3f, mean nearest neighbour %.4f",
		summary.MeanSpeed, behavior.MaxVelocity, summary.Polarization, summary.MeanNearest)
}
