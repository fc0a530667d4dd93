// Package metrics exposes simulation counters and gauges to Prometheus.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Garsondee/Pursuit-Sense/internal/simlog"
)

const namespace = "pursuit"

// Recorder owns a private registry so several simulations can run in one
// process without colliding.
type Recorder struct {
	reg *prometheus.Registry

	events      *prometheus.CounterVec
	ticks       prometheus.Counter
	tickSeconds prometheus.Histogram
	groupSize   prometheus.Gauge
	groupLOS    prometheus.Gauge
	agents      prometheus.Gauge
	followers   *prometheus.GaugeVec
}

// New creates a Recorder with Go runtime metrics included.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Simulation events by category and key.",
		}, []string{"category", "key"}),
		ticks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Simulation steps executed.",
		}),
		tickSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent in one simulation step.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 14), // 10µs to ~80ms
		}),
		groupSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chase_group_members",
			Help:      "Members of the pursuit group.",
		}),
		groupLOS: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chase_group_los_members",
			Help:      "Pursuit group members that currently see the target.",
		}),
		agents: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "agents_alive",
			Help:      "Spawned agents.",
		}),
		followers: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "follower_states",
			Help:      "Path followers per traversal state.",
		}, []string{"state"}),
	}
}

// Registry returns the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ObserveEntry counts a simulation log entry. It is meant to be passed to
// simlog.Log.Subscribe.
func (r *Recorder) ObserveEntry(e simlog.Entry) {
	if r == nil {
		return
	}
	r.events.WithLabelValues(e.Category, e.Key).Inc()
}

// ObserveTick records one step and its duration.
func (r *Recorder) ObserveTick(d time.Duration) {
	if r == nil {
		return
	}
	r.ticks.Inc()
	r.tickSeconds.Observe(d.Seconds())
}

// SetGroup publishes the pursuit group size.
func (r *Recorder) SetGroup(members, los int) {
	if r == nil {
		return
	}
	r.groupSize.Set(float64(members))
	r.groupLOS.Set(float64(los))
}

// SetAgents publishes the live agent count.
func (r *Recorder) SetAgents(n int) {
	if r == nil {
		return
	}
	r.agents.Set(float64(n))
}

// SetFollowerStates publishes how many followers are in each state. States
// missing from counts are reset to zero.
func (r *Recorder) SetFollowerStates(counts map[string]int) {
	if r == nil {
		return
	}
	r.followers.Reset()
	for state, n := range counts {
		r.followers.WithLabelValues(state).Set(float64(n))
	}
}
