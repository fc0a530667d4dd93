package main

import (
	"context"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Pursuit-Sense/internal/config"
	"github.com/Garsondee/Pursuit-Sense/internal/logging"
	"github.com/Garsondee/Pursuit-Sense/internal/sim"
	"github.com/Garsondee/Pursuit-Sense/internal/viewer"
)

func main() {
	var cfgPath string
	var watch bool
	var seed int64

	flag.StringVar(&cfgPath, "config", "", "YAML config file (built-in arena when empty)")
	flag.BoolVar(&watch, "watch", false, "reload tuning when the config file changes")
	flag.Int64Var(&seed, "seed", 1, "RNG seed")
	flag.Parse()

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.New(logging.Config{Level: logging.ParseLevel(cfg.Log.Level), Format: cfg.Log.Format})

	world, err := sim.NewWorld(cfg, sim.Params{Seed: seed, Logger: logger})
	if err != nil {
		log.Fatal(err)
	}
	v := viewer.New(world, 1904, 912, logger)

	if watch && cfgPath != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			err := config.Watch(ctx, cfgPath, logger, func(c *config.Config) {
				v.ReloadTuning(c.Tuning)
			})
			if err != nil {
				logger.Error("config watch stopped", "err", err)
			}
		}()
	}

	w, h := v.Size()
	ebiten.SetWindowTitle("Pursuit Sense")
	ebiten.SetWindowSize(w, h)
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
