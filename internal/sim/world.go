// Package sim hosts the pursuit agents, the scripted target and the ferry
// lane in one deterministic, tick-driven world.
package sim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/Garsondee/Pursuit-Sense/internal/chase"
	"github.com/Garsondee/Pursuit-Sense/internal/config"
	"github.com/Garsondee/Pursuit-Sense/internal/directive"
	"github.com/Garsondee/Pursuit-Sense/internal/ferry"
	"github.com/Garsondee/Pursuit-Sense/internal/geom"
	"github.com/Garsondee/Pursuit-Sense/internal/logging"
	"github.com/Garsondee/Pursuit-Sense/internal/metrics"
	"github.com/Garsondee/Pursuit-Sense/internal/nav"
	"github.com/Garsondee/Pursuit-Sense/internal/perception"
	"github.com/Garsondee/Pursuit-Sense/internal/simclock"
	"github.com/Garsondee/Pursuit-Sense/internal/simlog"
)

// Params are the host-side dependencies of a World.
type Params struct {
	Seed    int64
	Logger  logging.Logger
	Metrics *metrics.Recorder
	Verbose bool // record per-tick positions in the event log
}

// Stats are running totals for reports.
type Stats struct {
	Ticks         int
	Dissolutions  int
	Catches       int
	Despawns      int
	Launches      int
	Fallbacks     int
	FinishedPaths int
	Pickups       int
	BoatRuns      int
}

type collectible struct {
	loc           geom.Vec3
	cooldownUntil float64
}

// World is the simulation. It is not safe for concurrent use; hosts call Step
// from a single goroutine.
type World struct {
	scenario config.Scenario
	tuning   config.Tuning
	clock    *simclock.Logical
	rng      *rand.Rand
	log      logging.Logger
	metrics  *metrics.Recorder
	events   *simlog.Log
	recent   *simlog.Ring
	verbose  bool

	walls        []geom.Rect
	planner      *directive.LinkPlanner
	flee         []geom.Vec3
	collectibles []collectible

	agents []*Agent
	byID   map[chase.MemberID]*Agent
	target *Target
	group  *chase.Coordinator
	lane   *lane
	scene  *sceneView

	tick  int
	stats Stats
}

// NewWorld builds a world from cfg, spawning one agent per scenario spawn
// point. A nil cfg uses config.Default. Only the tuning is validated: an empty
// route means no target, and agents may be added later with SpawnAgent.
func NewWorld(cfg *config.Config, p Params) (*World, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	w := &World{
		scenario: cfg.Scenario,
		tuning:   cfg.Tuning,
		clock:    simclock.NewLogical(0),
		rng:      rand.New(rand.NewSource(p.Seed)), // #nosec G404 -- deterministic simulation
		log:      logging.OrNop(p.Logger),
		metrics:  p.Metrics,
		events:   simlog.NewLog(p.Verbose),
		recent:   simlog.NewRing(simlog.DefaultRingSize),
		verbose:  p.Verbose,
		walls:    cfg.Scenario.WallRects(),
		flee:     config.Points(cfg.Scenario.FleePoints),
		byID:     make(map[chase.MemberID]*Agent),
	}
	w.planner = &directive.LinkPlanner{Chasms: cfg.Scenario.ChasmRects(), Links: cfg.Scenario.JumpLinks()}
	w.scene = &sceneView{w: w}
	for _, c := range config.Points(cfg.Scenario.Collectibles) {
		w.collectibles = append(w.collectibles, collectible{loc: c})
	}

	w.events.Subscribe(w.recent.Add)
	w.events.Subscribe(w.metrics.ObserveEntry)

	w.group = chase.NewCoordinator(w.clock,
		chase.WithNoLOSDelay(w.tuning.Group.NoLOSDelay),
		chase.WithAlive(w.isAlive),
		chase.WithLogger(w.log),
		chase.WithObserver(w.groupEvent),
	)

	if len(cfg.Scenario.Target.Route) > 0 {
		w.target = w.newTarget(cfg.Scenario.Target)
	}
	if cfg.Scenario.Ferry != nil {
		w.lane = newLane(*cfg.Scenario.Ferry, w.tuning.Follower, w.tuning.World.BoatMaxSpeed, w.clock, logging.With(w.log, "agent", "boat"))
		w.lane.onState = func(from, to ferry.State) {
			w.record("boat", simlog.CatFerry, "state", fmt.Sprintf("%s → %s", from, to), 0)
			if to == ferry.StateDespawn {
				w.stats.BoatRuns++
			}
		}
	}
	for _, s := range config.Points(cfg.Scenario.Spawns) {
		w.SpawnAgent(s)
	}
	return w, nil
}

// SpawnAgent adds a live agent at p and returns it.
func (w *World) SpawnAgent(p geom.Vec3) *Agent {
	a := w.newAgent(p, fmt.Sprintf("A%d", len(w.agents)+1))
	w.agents = append(w.agents, a)
	return a
}

func (w *World) newAgent(spawn geom.Vec3, label string) *Agent {
	id := chase.MemberID(w.newID())
	log := logging.With(w.log, "agent", label)
	a := &Agent{
		ID:    id,
		Label: label,
		spawn: spawn,
		body:  NewBody(spawn, 0),
		alive: true,
	}
	a.follower = nav.NewPathFollower(w.tuning.Follower, log)
	a.controller = directive.NewController(a.follower, w.planner, w.locate, w.clock, w.tuning.Directive, log)
	a.controller.Observe(w.followerCallbacks(label))
	a.sampler = perception.NewSampler(id, w.tuning.Perception, w.clock, rand.New(rand.NewSource(w.rng.Int63())), log) // #nosec G404
	w.byID[id] = a
	w.record(label, simlog.CatAgent, "spawn", string(id), 0)
	return a
}

func (w *World) newTarget(script config.Target) *Target {
	route := config.Points(script.Route)
	f := nav.NewPathFollower(targetConfig(w.tuning.Follower, w.tuning.World.TargetMaxSpeed), logging.With(w.log, "agent", TargetID))
	t := &Target{
		script:     script,
		route:      route,
		body:       NewBody(route[0], 0),
		controller: directive.NewController(f, w.planner, nil, w.clock, w.tuning.Directive, w.log),
	}
	t.controller.Observe(w.followerCallbacks(TargetID))
	t.respawn()
	return t
}

func (w *World) newID() string {
	u, err := uuid.NewRandomFromReader(w.rng)
	if err != nil {
		return uuid.NewString()
	}
	return u.String()
}

// Step advances the world by dt seconds.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	started := time.Now()
	w.clock.Advance(dt)
	w.tick++
	w.stats.Ticks++

	w.stepTarget(dt)
	for _, i := range w.rng.Perm(len(w.agents)) {
		a := w.agents[i]
		if !a.alive {
			if w.clock.Now() >= a.respawnAt {
				w.agents[i] = w.newAgent(a.spawn, a.Label)
			}
			continue
		}
		w.stepAgent(a, dt)
	}
	if w.lane != nil {
		w.lane.step(dt, w.newID)
	}
	w.group.Tick()
	w.publish(time.Since(started))
}

func (w *World) stepTarget(dt float64) {
	t := w.target
	if t == nil {
		return
	}
	now := w.clock.Now()
	if !t.alive {
		if now < t.respawnAt {
			return
		}
		t.respawn()
		w.record(TargetID, simlog.CatTarget, "respawn", "", 0)
	}

	threatened := t.script.Threatened(now)
	if threatened != t.threatened {
		t.threatened = threatened
		if threatened {
			w.record(TargetID, simlog.CatTarget, "threat_on", "", 0)
			w.group.Dissolve()
		} else {
			w.record(TargetID, simlog.CatTarget, "threat_off", "", 0)
		}
	}

	if err := t.advance(); err != nil {
		w.log.Debug("target route leg skipped", "err", err)
	}
	t.controller.Update(t.body.handle(), dt)
	t.body.Integrate(dt, w.tuning.Follower.Gravity)
}

func (w *World) stepAgent(a *Agent, dt float64) {
	if a.sampler.Update(a.body, w.scene, w.group) {
		w.applySample(a)
	}
	a.controller.Update(a.body.handle(), dt)
	a.body.Integrate(dt, w.tuning.Follower.Gravity)

	if w.verbose {
		loc := a.body.Location()
		w.events.AddVerbose(w.tick, a.Label, simlog.CatAgent, "position", fmt.Sprintf("(%.1f,%.1f,%.1f)", loc.X, loc.Y, loc.Z), 0)
	}

	now := w.clock.Now()
	w.pickup(a, now)
	w.contact(a, now)
}

// applySample turns the latest blackboard into a move request. Collect
// goals are only replaced once the previous one is reached.
func (w *World) applySample(a *Agent) {
	bb := a.sampler.Blackboard()
	prevMode := a.mode
	a.mode = bb.Mode
	if prevMode != bb.Mode {
		w.record(a.Label, simlog.CatSense, "mode", fmt.Sprintf("%s → %s", prevMode, bb.Mode), 0)
	}

	if !bb.Destination.Valid {
		return
	}
	from := a.body.Location()
	var err error
	switch {
	case bb.Destination.FollowTarget:
		err = a.controller.MoveToEntity(from, TargetID)
	case bb.Mode == perception.ModeCollect && prevMode == perception.ModeCollect && (a.controller.HasActivePath() || a.controller.Pending()):
		return
	default:
		err = a.controller.MoveToLocation(from, bb.Destination.Point)
	}
	if err != nil {
		w.log.Debug("move request failed", "agent", a.Label, "mode", bb.Mode, "err", err)
	}
}

func (w *World) pickup(a *Agent, now float64) {
	if !a.body.IsGrounded() {
		return
	}
	loc := a.body.Location()
	for i := range w.collectibles {
		c := &w.collectibles[i]
		if now < c.cooldownUntil || geom.PlanarDist(loc, c.loc) > w.tuning.World.PickupRadius {
			continue
		}
		c.cooldownUntil = now + w.tuning.World.CollectibleCooldown
		w.stats.Pickups++
		w.record(a.Label, simlog.CatAgent, "pickup", fmt.Sprintf("#%d", i), float64(i))
	}
}

// contact resolves an agent touching the target: a calm target is caught, a
// threatened one takes the agent out.
func (w *World) contact(a *Agent, now float64) {
	t := w.target
	if t == nil || !t.alive || !a.alive {
		return
	}
	if geom.PlanarDist(a.body.Location(), t.body.Location()) > w.tuning.World.CatchRadius {
		return
	}
	if t.threatened {
		w.despawnAgent(a, now)
		return
	}

	w.stats.Catches++
	w.record(a.Label, simlog.CatTarget, "caught", string(a.ID), 0)
	w.group.Lock(w.tuning.Group.LockSeconds)
	w.group.Dissolve()
	t.alive = false
	t.respawnAt = now + w.tuning.World.RespawnDelay
	t.controller.Stop()
}

func (w *World) despawnAgent(a *Agent, now float64) {
	a.alive = false
	a.respawnAt = now + w.tuning.World.RespawnDelay
	a.controller.Stop()
	delete(w.byID, a.ID)
	w.stats.Despawns++
	w.record(a.Label, simlog.CatAgent, "despawn", string(a.ID), 0)
}

func (w *World) isAlive(id chase.MemberID) bool {
	a, ok := w.byID[id]
	return ok && a.alive
}

func (w *World) locate(id string) (geom.Vec3, bool) {
	if id != TargetID || w.target == nil || !w.target.alive {
		return geom.Vec3{}, false
	}
	return w.target.body.Location(), true
}

func (w *World) groupEvent(e chase.Event) {
	label := simlog.Global
	if a, ok := w.byID[e.Member]; ok {
		label = a.Label
	}
	if e.Kind == chase.EventDissolved {
		w.stats.Dissolutions++
	}
	w.record(label, simlog.CatGroup, e.Kind.String(), e.String(), float64(e.Size))
}

func (w *World) followerCallbacks(label string) nav.Callbacks {
	return nav.Callbacks{
		OnSegmentAdvanced: func(i int) {
			w.record(label, simlog.CatFollow, "segment", fmt.Sprintf("#%d", i), float64(i))
		},
		OnPathFinished: func(o nav.Outcome) {
			if o == nav.OutcomeSuccess {
				w.stats.FinishedPaths++
			}
			w.record(label, simlog.CatFollow, "finished", o.String(), 0)
		},
		OnLaunch: func(i int, v geom.Vec3) {
			w.stats.Launches++
			w.record(label, simlog.CatFollow, "launch", fmt.Sprintf("#%d v=(%.0f,%.0f,%.0f)", i, v.X, v.Y, v.Z), v.Len())
		},
		OnLaunchFallback: func(i int, err error) {
			w.stats.Fallbacks++
			w.record(label, simlog.CatFollow, "launch_fallback", fmt.Sprintf("#%d %v", i, err), float64(i))
		},
		OnLanded: func(i int) {
			w.record(label, simlog.CatFollow, "landed", fmt.Sprintf("#%d", i), float64(i))
		},
	}
}

func (w *World) record(agent, category, key, value string, num float64) {
	w.events.Add(w.tick, agent, category, key, value, num)
}

func (w *World) publish(d time.Duration) {
	if w.metrics == nil {
		return
	}
	states := make(map[string]int)
	alive := 0
	for _, a := range w.agents {
		if !a.alive {
			continue
		}
		alive++
		states[a.follower.State().String()]++
	}
	w.metrics.SetAgents(alive)
	w.metrics.SetFollowerStates(states)
	w.metrics.SetGroup(w.group.Size(), len(w.group.LOSMembers()))
	w.metrics.ObserveTick(d)
}

// ApplyTuning swaps the tuning on every live component. Takes effect on the
// next Step.
func (w *World) ApplyTuning(t config.Tuning) {
	w.tuning = t
	for _, a := range w.agents {
		a.follower.SetConfig(t.Follower)
		a.controller.SetConfig(t.Directive)
		a.sampler.SetConfig(t.Perception)
	}
	if w.target != nil {
		w.target.controller.Follower().SetConfig(targetConfig(t.Follower, t.World.TargetMaxSpeed))
		w.target.controller.SetConfig(t.Directive)
	}
	if w.lane != nil {
		w.lane.ctrl.Follower().SetConfig(targetConfig(t.Follower, t.World.BoatMaxSpeed))
	}
	w.group.SetNoLOSDelay(t.Group.NoLOSDelay)
	w.log.Info("tuning applied", "tick", w.tick)
}

// Now returns the simulation time in seconds.
func (w *World) Now() float64 { return w.clock.Now() }

// Tick returns how many steps have run.
func (w *World) Tick() int { return w.tick }

// Agents returns every agent slot, live or waiting to respawn.
func (w *World) Agents() []*Agent { return w.agents }

// Agent looks up a live agent by id.
func (w *World) Agent(id chase.MemberID) (*Agent, bool) {
	a, ok := w.byID[id]
	return a, ok
}

// Target returns the scripted target, or nil when the scenario has none.
func (w *World) Target() *Target { return w.target }

// Group returns the shared pursuit group.
func (w *World) Group() *chase.Coordinator { return w.group }

// Events returns the structured event log.
func (w *World) Events() *simlog.Log { return w.events }

// Recent returns the latest events, oldest first.
func (w *World) Recent() []simlog.Entry { return w.recent.Recent() }

func (w *World) Stats() Stats { return w.stats }

func (w *World) Scenario() config.Scenario { return w.scenario }

func (w *World) Tuning() config.Tuning { return w.tuning }

// Walls returns the line-of-sight blockers.
func (w *World) Walls() []geom.Rect { return w.walls }

// Planner returns the shared chasm-aware planner.
func (w *World) Planner() *directive.LinkPlanner { return w.planner }

// BoatState returns the ferry's mission stage and whether a boat is out.
func (w *World) BoatState() (ferry.State, bool) {
	if w.lane == nil || w.lane.boat == nil {
		return 0, false
	}
	return w.lane.boat.State(), true
}

// BridgeRaised reports a ferry bridge state. Without a lane it is false.
func (w *World) BridgeRaised(tag string) bool {
	return w.lane != nil && w.lane.BridgeRaised(tag)
}
