package sim

import (
	"fmt"

	"github.com/Garsondee/Pursuit-Sense/internal/config"
	"github.com/Garsondee/Pursuit-Sense/internal/geom"
	"github.com/Garsondee/Pursuit-Sense/internal/logging"
)

// TestSim is a headless harness used by tests and batch reports. It wraps a
// World built from an open, empty arena unless WithDefaultArena is given.
type TestSim struct {
	*World

	cfg     *config.Config
	seed    int64
	verbose bool
	log     logging.Logger
	spawns  []geom.Vec3
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // seed, verbose, tuning, base arena: applied first
	simOptLayout                      // walls, chasms, links, target, ferry: applied to the arena
	simOptAgent                       // agents: spawned after the world is built
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.seed = seed }}
}

// WithVerbose enables per-tick position logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.verbose = v }}
}

// WithLogger routes operational logs to l.
func WithLogger(l logging.Logger) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.log = l }}
}

// WithDefaultArena starts from the built-in scenario instead of an empty one.
func WithDefaultArena() SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.cfg.Scenario = config.DefaultScenario() }}
}

// WithTuning edits the tuning in place.
func WithTuning(edit func(*config.Tuning)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { edit(&ts.cfg.Tuning) }}
}

// WithMapSize sets the arena dimensions.
func WithMapSize(w, h float64) SimOption {
	return SimOption{simOptLayout, func(ts *TestSim) {
		ts.cfg.Scenario.Width = w
		ts.cfg.Scenario.Height = h
	}}
}

// WithWall adds a line-of-sight blocker.
func WithWall(minX, minY, maxX, maxY float64) SimOption {
	return SimOption{simOptLayout, func(ts *TestSim) {
		ts.cfg.Scenario.Walls = append(ts.cfg.Scenario.Walls, config.Rect{minX, minY, maxX, maxY})
	}}
}

// WithChasm adds a gap that can only be crossed by a jump link.
func WithChasm(minX, minY, maxX, maxY float64) SimOption {
	return SimOption{simOptLayout, func(ts *TestSim) {
		ts.cfg.Scenario.Chasms = append(ts.cfg.Scenario.Chasms, config.Rect{minX, minY, maxX, maxY})
	}}
}

// WithJumpLink adds a link between two chasm edges.
func WithJumpLink(ax, ay, bx, by float64) SimOption {
	return SimOption{simOptLayout, func(ts *TestSim) {
		ts.cfg.Scenario.Links = append(ts.cfg.Scenario.Links, config.Link{A: config.Point{ax, ay}, B: config.Point{bx, by}})
	}}
}

// WithFleePoint adds a flee candidate.
func WithFleePoint(x, y float64) SimOption {
	return SimOption{simOptLayout, func(ts *TestSim) {
		ts.cfg.Scenario.FleePoints = append(ts.cfg.Scenario.FleePoints, config.Point{x, y})
	}}
}

// WithCollectible adds a wander point.
func WithCollectible(x, y float64) SimOption {
	return SimOption{simOptLayout, func(ts *TestSim) {
		ts.cfg.Scenario.Collectibles = append(ts.cfg.Scenario.Collectibles, config.Point{x, y})
	}}
}

// WithTargetRoute replaces the target's looping route. One point makes a
// stationary target.
func WithTargetRoute(points ...config.Point) SimOption {
	return SimOption{simOptLayout, func(ts *TestSim) {
		ts.cfg.Scenario.Target.Route = points
	}}
}

// WithThreatWindow makes the target threatening during [start, end).
func WithThreatWindow(start, end float64) SimOption {
	return SimOption{simOptLayout, func(ts *TestSim) {
		ts.cfg.Scenario.Target.ThreatWindows = append(ts.cfg.Scenario.Target.ThreatWindows, config.Window{Start: start, End: end})
	}}
}

// WithFerry declares a ferry lane.
func WithFerry(f config.Ferry) SimOption {
	return SimOption{simOptLayout, func(ts *TestSim) { ts.cfg.Scenario.Ferry = &f }}
}

// WithAgent spawns an agent at (x, y) facing +X.
func WithAgent(x, y float64) SimOption {
	return SimOption{simOptAgent, func(ts *TestSim) {
		ts.spawns = append(ts.spawns, geom.V(x, y, 0))
	}}
}

// NewTestSim constructs a TestSim from the given options in three ordered
// passes:
//  1. Infrastructure (seed, verbose, tuning, base arena)
//  2. Layout
//  3. Agents, spawned into the built world
//
// It panics if the tuning is invalid.
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		cfg:  &config.Config{Tuning: config.DefaultTuning(), Scenario: config.Scenario{Width: 2000, Height: 1300}},
		seed: 1,
	}
	for _, kind := range []simOptionKind{simOptInfra, simOptLayout, simOptAgent} {
		for _, o := range opts {
			if o.kind == kind {
				o.fn(ts)
			}
		}
	}

	w, err := NewWorld(ts.cfg, Params{Seed: ts.seed, Logger: ts.log, Verbose: ts.verbose})
	if err != nil {
		panic(fmt.Sprintf("sim: test harness: %v", err))
	}
	ts.World = w
	for _, p := range ts.spawns {
		w.SpawnAgent(p)
	}
	return ts
}

// Dt is the fixed step length.
func (ts *TestSim) Dt() float64 {
	return 1 / float64(ts.tuning.World.TickRate)
}

// RunTicks advances the simulation n fixed steps.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.Step(ts.Dt())
	}
}

// RunUntil advances up to maxTicks, stopping early once predicate holds.
// Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.Step(ts.Dt())
		if predicate(ts) {
			return ts.Tick()
		}
	}
	return -1
}
