package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Garsondee/Pursuit-Sense/internal/config"
	"github.com/Garsondee/Pursuit-Sense/internal/logging"
)

const shutdownTimeout = 5 * time.Second

func main() {
	var addr string
	var cfgPath string
	var tps int
	var seed int64

	flag.StringVar(&addr, "addr", ":8080", "HTTP listen address")
	flag.StringVar(&cfgPath, "config", "", "YAML config file (built-in arena when empty)")
	flag.IntVar(&tps, "tps", 0, "wall-clock ticks per second (0 uses the configured tick rate)")
	flag.Int64Var(&seed, "seed", 1, "RNG seed")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, addr, cfgPath, tps, seed); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, addr, cfgPath string, tps int, seed int64) error {
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return err
	}
	logger := logging.New(logging.Config{Level: logging.ParseLevel(cfg.Log.Level), Format: cfg.Log.Format})

	srv, err := newServer(cfg, seed, logger)
	if err != nil {
		return err
	}
	if tps <= 0 {
		tps = cfg.Tuning.World.TickRate
	}

	httpSrv := &http.Server{Addr: addr, Handler: srv.routes()}
	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "tps", tps)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	go srv.loop(ctx, tps)

	select {
	case err := <-errc:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	srv.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
