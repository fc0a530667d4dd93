// Package directive turns "go there" requests into paths for a
// nav.PathFollower and keeps entity goals up to date as they move.
package directive

import (
	"errors"
	"fmt"

	"github.com/Garsondee/Pursuit-Sense/internal/geom"
	"github.com/Garsondee/Pursuit-Sense/internal/logging"
	"github.com/Garsondee/Pursuit-Sense/internal/nav"
	"github.com/Garsondee/Pursuit-Sense/internal/simclock"
)

var (
	// ErrNoPlanner is returned when a move is requested without a planner.
	ErrNoPlanner = errors.New("directive: no planner")
	// ErrUnknownEntity is returned when an entity goal cannot be located.
	ErrUnknownEntity = errors.New("directive: unknown entity")
)

// Locator resolves an entity id to its current location.
type Locator func(id string) (geom.Vec3, bool)

// Config tunes re-planning.
type Config struct {
	// RepathDistance is how far an entity goal must move before re-planning.
	RepathDistance float64 `yaml:"repath_distance"`
	// RepathInterval is the minimum time between re-plans of an entity goal.
	RepathInterval float64 `yaml:"repath_interval"`
	// GoalTolerance treats point requests this close to the current goal as
	// the same request.
	GoalTolerance float64 `yaml:"goal_tolerance"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{RepathDistance: 100, RepathInterval: 0.5, GoalTolerance: 10}
}

type goalKind uint8

const (
	goalNone goalKind = iota
	goalPoint
	goalEntity
)

type goal struct {
	kind   goalKind
	point  geom.Vec3
	entity string
}

func (g goal) same(o goal, tol float64) bool {
	if g.kind != o.kind {
		return false
	}
	switch g.kind {
	case goalPoint:
		return geom.PlanarDist(g.point, o.point) <= tol
	case goalEntity:
		return g.entity == o.entity
	}
	return true
}

// Controller is the per-agent directive layer.
type Controller struct {
	follower *nav.PathFollower
	planner  Planner
	locate   Locator
	clock    simclock.Clock
	cfg      Config
	log      logging.Logger

	goal      goal
	pending   *goal
	plannedAt float64
	plannedTo geom.Vec3
	reached   bool
	replans   int

	observers  nav.Callbacks
	onComplete func(nav.Outcome)
}

// NewController wires a controller to follower. It takes over the follower's
// callbacks; use Observe to receive them too.
func NewController(follower *nav.PathFollower, planner Planner, locate Locator, clock simclock.Clock, cfg Config, log logging.Logger) *Controller {
	c := &Controller{
		follower: follower,
		planner:  planner,
		locate:   locate,
		clock:    clock,
		cfg:      cfg,
		log:      logging.OrNop(log),
	}
	follower.SetCallbacks(nav.Callbacks{
		OnSegmentAdvanced: func(i int) {
			if c.observers.OnSegmentAdvanced != nil {
				c.observers.OnSegmentAdvanced(i)
			}
		},
		OnPathFinished: c.pathFinished,
		OnLaunch: func(i int, v geom.Vec3) {
			if c.observers.OnLaunch != nil {
				c.observers.OnLaunch(i, v)
			}
		},
		OnLaunchFallback: func(i int, err error) {
			if c.observers.OnLaunchFallback != nil {
				c.observers.OnLaunchFallback(i, err)
			}
		},
		OnLanded: func(i int) {
			if c.observers.OnLanded != nil {
				c.observers.OnLanded(i)
			}
		},
	})
	return c
}

// Observe forwards follower callbacks to cb.
func (c *Controller) Observe(cb nav.Callbacks) { c.observers = cb }

// OnMoveCompleted sets the callback fired whenever a path ends.
func (c *Controller) OnMoveCompleted(fn func(nav.Outcome)) { c.onComplete = fn }

// SetConfig replaces the re-planning tuning.
func (c *Controller) SetConfig(cfg Config) { c.cfg = cfg }

// Follower returns the driven follower.
func (c *Controller) Follower() *nav.PathFollower { return c.follower }

// MoveToLocation plans from `from` to point and starts following it. A
// request equal to the current goal is ignored while a path is active. If
// the follower is mid-jump the request is kept and applied after landing.
func (c *Controller) MoveToLocation(from, point geom.Vec3) error {
	return c.request(from, goal{kind: goalPoint, point: point})
}

// MoveToEntity plans toward the entity's current location and keeps
// re-planning while it moves.
func (c *Controller) MoveToEntity(from geom.Vec3, id string) error {
	return c.request(from, goal{kind: goalEntity, entity: id})
}

func (c *Controller) request(from geom.Vec3, g goal) error {
	if c.planner == nil {
		return ErrNoPlanner
	}
	if c.follower.HasActivePath() && c.goal.same(g, c.cfg.GoalTolerance) {
		c.pending = nil
		return nil
	}
	if c.follower.Committed() {
		c.pending = &g
		return nil
	}
	return c.apply(from, g)
}

func (c *Controller) apply(from geom.Vec3, g goal) error {
	to := g.point
	if g.kind == goalEntity {
		loc, ok := c.locateEntity(g.entity)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownEntity, g.entity)
		}
		to = loc
	}
	points, err := c.planner.Plan(from, to)
	if err != nil {
		return fmt.Errorf("plan %v -> %v: %w", from, to, err)
	}
	if err := c.follower.AssignPath(points); err != nil {
		return err
	}
	c.goal = g
	c.pending = nil
	c.reached = false
	c.plannedAt = c.clock.Now()
	c.plannedTo = to
	return nil
}

// Update applies deferred requests, re-plans moving entity goals and ticks
// the follower.
func (c *Controller) Update(h nav.Handle, dt float64) {
	if !h.Valid() {
		return
	}
	if !c.follower.Committed() {
		if c.pending != nil {
			g := *c.pending
			c.pending = nil
			if err := c.apply(h.Body.Location(), g); err != nil {
				c.log.Warn("deferred move dropped", "err", err)
			}
		} else if c.needsRepath() {
			c.replans++
			if err := c.apply(h.Body.Location(), c.goal); err != nil {
				c.log.Debug("repath failed", "entity", c.goal.entity, "err", err)
			}
		}
	}
	c.follower.Tick(h, dt)
}

func (c *Controller) needsRepath() bool {
	if c.goal.kind != goalEntity {
		return false
	}
	if c.clock.Now()-c.plannedAt < c.cfg.RepathInterval {
		return false
	}
	loc, ok := c.locateEntity(c.goal.entity)
	if !ok {
		return false
	}
	return geom.PlanarDist(loc, c.plannedTo) > c.cfg.RepathDistance
}

func (c *Controller) locateEntity(id string) (geom.Vec3, bool) {
	if c.locate == nil {
		return geom.Vec3{}, false
	}
	return c.locate(id)
}

// Stop abandons the current goal and any deferred request.
func (c *Controller) Stop() {
	c.goal = goal{}
	c.pending = nil
	c.follower.Stop()
}

// HasActivePath reports whether the follower is moving along a path.
func (c *Controller) HasActivePath() bool { return c.follower.HasActivePath() }

// ReachedTarget reports whether the last goal's path finished successfully.
func (c *Controller) ReachedTarget() bool { return c.reached }

// Pending reports whether a request is waiting for the follower to land.
func (c *Controller) Pending() bool { return c.pending != nil }

// Replans returns how many times entity goals were re-planned.
func (c *Controller) Replans() int { return c.replans }

// Goal returns the current goal as a point, and whether one exists. Entity
// goals report the location they were last planned to.
func (c *Controller) Goal() (geom.Vec3, bool) {
	switch c.goal.kind {
	case goalPoint:
		return c.goal.point, true
	case goalEntity:
		return c.plannedTo, true
	}
	return geom.Vec3{}, false
}

func (c *Controller) pathFinished(o nav.Outcome) {
	if o == nav.OutcomeSuccess {
		c.reached = true
	}
	if c.observers.OnPathFinished != nil {
		c.observers.OnPathFinished(o)
	}
	if c.onComplete != nil {
		c.onComplete(o)
	}
}
