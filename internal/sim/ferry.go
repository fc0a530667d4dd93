package sim

import (
	"math"

	"github.com/Garsondee/Pursuit-Sense/internal/config"
	"github.com/Garsondee/Pursuit-Sense/internal/directive"
	"github.com/Garsondee/Pursuit-Sense/internal/ferry"
	"github.com/Garsondee/Pursuit-Sense/internal/geom"
	"github.com/Garsondee/Pursuit-Sense/internal/logging"
	"github.com/Garsondee/Pursuit-Sense/internal/nav"
	"github.com/Garsondee/Pursuit-Sense/internal/simclock"
)

// lane hosts one ferry route: two lifting bridges, one unloading operator
// and at most one boat at a time.
type lane struct {
	cfg   config.Ferry
	clock simclock.Clock
	log   logging.Logger

	operator *dock
	boat     *ferry.Boat
	body     *Body
	ctrl     *directive.Controller

	respawnAt float64
	runs      int
	onState   func(from, to ferry.State)
}

var _ ferry.Landmarks = (*lane)(nil)

func (l *lane) Waypoint(tag string) (geom.Vec3, bool) {
	switch tag {
	case ferry.TagStartWait:
		return l.cfg.StartWait.Vec(), true
	case ferry.TagEndWait:
		return l.cfg.EndWait.Vec(), true
	case ferry.TagDespawn:
		return l.cfg.Despawn.Vec(), true
	}
	return geom.Vec3{}, false
}

// BridgeRaised cycles each bridge: raised for BridgeUpSeconds at the start
// of every BridgeCycle. The end bridge runs BridgeOffset seconds behind.
func (l *lane) BridgeRaised(tag string) bool {
	offset := 0.0
	switch tag {
	case ferry.TagStartBridge:
	case ferry.TagEndBridge:
		offset = l.cfg.BridgeOffset
	default:
		return false
	}
	if l.cfg.BridgeCycle <= 0 {
		return true
	}
	phase := math.Mod(l.clock.Now()-offset, l.cfg.BridgeCycle)
	if phase < 0 {
		phase += l.cfg.BridgeCycle
	}
	return phase < l.cfg.BridgeUpSeconds
}

// MoveTo drives the boat hull along a straight line.
func (l *lane) MoveTo(p geom.Vec3) error {
	return l.ctrl.MoveToLocation(l.body.Location(), p)
}

// dock is the lane's single unloading operator.
type dock struct {
	drop        geom.Vec3
	seconds     float64
	busy        *ferry.Boat
	unloadUntil float64
	unloading   bool
}

var _ ferry.Operator = (*dock)(nil)

func (d *dock) Available() bool         { return d.busy == nil }
func (d *dock) DropLocation() geom.Vec3 { return d.drop }

func (d *dock) Reserve(b *ferry.Boat) {
	d.busy = b
	d.unloading = false
}

func (d *dock) Release(b *ferry.Boat) {
	if d.busy == b {
		d.busy = nil
		d.unloading = false
	}
}

func newLane(cfg config.Ferry, follower nav.Config, maxSpeed float64, clock simclock.Clock, log logging.Logger) *lane {
	l := &lane{
		cfg:      cfg,
		clock:    clock,
		log:      log,
		operator: &dock{drop: cfg.Drop.Vec(), seconds: cfg.UnloadSeconds},
		body:     NewBody(cfg.Spawn.Vec(), 0),
	}
	straight := directive.PlannerFunc(func(from, to geom.Vec3) ([]nav.PathPoint, error) {
		return []nav.PathPoint{nav.Ground(from), nav.Ground(to)}, nil
	})
	f := nav.NewPathFollower(targetConfig(follower, maxSpeed), log)
	l.ctrl = directive.NewController(f, straight, nil, clock, directive.DefaultConfig(), log)
	l.ctrl.OnMoveCompleted(func(o nav.Outcome) {
		if l.boat != nil {
			l.boat.OnMoveCompleted(o)
		}
	})
	return l
}

func (l *lane) launch(id string) {
	l.body.Teleport(l.cfg.Spawn.Vec())
	l.body.SetYaw(geom.YawOf(l.cfg.StartWait.Vec().Sub(l.cfg.Spawn.Vec())))
	l.ctrl.Stop()
	l.boat = ferry.NewBoat(id, l, l, []ferry.Operator{l.operator}, l.log)
	l.boat.OnStateChange(l.onState)
	l.runs++
}

func (l *lane) step(dt float64, newID func() string) {
	now := l.clock.Now()
	if l.boat == nil {
		if now >= l.respawnAt {
			l.launch(newID())
		}
		return
	}

	l.boat.Update()
	if l.boat.State() == ferry.StateWaitAtOperator && l.operator.busy == l.boat {
		if !l.operator.unloading {
			l.operator.unloading = true
			l.operator.unloadUntil = now + l.operator.seconds
		} else if now >= l.operator.unloadUntil {
			l.boat.NotifyUnloadComplete()
		}
	}
	l.ctrl.Update(nav.Handle{Body: l.body}, dt)

	if l.boat.Done() {
		l.boat = nil
		l.ctrl.Stop()
		l.respawnAt = now + l.cfg.RespawnDelay
	}
}
