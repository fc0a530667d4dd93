package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Garsondee/Pursuit-Sense/internal/config"
	"github.com/Garsondee/Pursuit-Sense/internal/feed"
	"github.com/Garsondee/Pursuit-Sense/internal/logging"
	"github.com/Garsondee/Pursuit-Sense/internal/metrics"
	"github.com/Garsondee/Pursuit-Sense/internal/sim"
)

// server owns one world. Only the loop goroutine touches it; HTTP handlers
// read the atomics and the hub.
type server struct {
	world *sim.World
	hub   *feed.Hub
	rec   *metrics.Recorder
	log   logging.Logger
	dt    float64

	tick    atomic.Int64
	started time.Time
}

func newServer(cfg *config.Config, seed int64, log logging.Logger) (*server, error) {
	rec := metrics.New()
	w, err := sim.NewWorld(cfg, sim.Params{Seed: seed, Logger: log, Metrics: rec})
	if err != nil {
		return nil, err
	}
	return &server{
		world:   w,
		hub:     feed.NewHub(log),
		rec:     rec,
		log:     logging.OrNop(log),
		dt:      1 / float64(cfg.Tuning.World.TickRate),
		started: time.Now(),
	}, nil
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.rec.Handler())
	mux.Handle("/feed", s.hub)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	payload := struct {
		Status  string  `json:"status"`
		Tick    int64   `json:"tick"`
		Clients int     `json:"clients"`
		Uptime  float64 `json:"uptime_seconds"`
	}{
		Status:  "ok",
		Tick:    s.tick.Load(),
		Clients: s.hub.ClientCount(),
		Uptime:  time.Since(s.started).Seconds(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		s.log.Debug("health write failed", "err", err)
	}
}

// step advances the world one tick and broadcasts the result.
func (s *server) step() {
	s.world.Step(s.dt)
	s.tick.Store(int64(s.world.Tick()))
	if err := s.hub.Broadcast(s.world.Snapshot()); err != nil {
		s.log.Warn("broadcast failed", "tick", s.world.Tick(), "err", err)
	}
}

func (s *server) loop(ctx context.Context, tps int) {
	ticker := time.NewTicker(time.Second / time.Duration(tps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.step()
		}
	}
}
