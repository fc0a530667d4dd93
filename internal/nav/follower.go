package nav

import (
	"github.com/Garsondee/Pursuit-Sense/internal/geom"
	"github.com/Garsondee/Pursuit-Sense/internal/logging"
)

// Outcome reports how a path ended.
type Outcome uint8

const (
	OutcomeSuccess Outcome = iota // final point reached
	OutcomeAborted                // replaced by a new path or stopped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Body is the kinematic state of the agent being moved. While a path is
// active the follower is its only writer.
type Body interface {
	Location() geom.Vec3
	Yaw() float64
	SetLocation(geom.Vec3)
	SetYaw(float64)
}

// Movement is the external physics capability used for jump links.
type Movement interface {
	Launch(velocity geom.Vec3)
	IsGrounded() bool
}

// Handle is the agent the caller resolved for this frame. Movement may be nil
// when the agent has no physics capability; jumps then fall back to ground.
type Handle struct {
	Body     Body
	Movement Movement
}

// Valid reports whether the handle can be moved at all.
func (h Handle) Valid() bool {
	return h.Body != nil
}

// Callbacks are invoked synchronously from the follower's operations.
// Any field may be nil.
type Callbacks struct {
	OnSegmentAdvanced func(index int)
	OnPathFinished    func(outcome Outcome)
	OnLaunch          func(index int, velocity geom.Vec3)
	OnLaunchFallback  func(index int, err error)
	OnLanded          func(index int)
}

type gatePurpose uint8

const (
	gateLaunch  gatePurpose = iota // align with the link before launching
	gateLanding                    // align with the next segment after landing
)

type gate struct {
	purpose gatePurpose
	aim     geom.Vec3
	index   int // point to advance to on release
}

// PathFollower moves one agent along one path at a time.
type PathFollower struct {
	cfg Config
	log logging.Logger
	cb  Callbacks

	path        *Path
	start, end  int
	destination geom.Vec3
	state       State
	gate        gate

	// groundFallback marks the current jump link as walked on foot, either
	// because no arc could be solved or because the landing was missed.
	groundFallback bool
	flightTime     float64
	segments       int
}

// NewPathFollower returns an idle follower.
func NewPathFollower(cfg Config, log logging.Logger) *PathFollower {
	return &PathFollower{cfg: cfg, log: logging.OrNop(log)}
}

// SetCallbacks replaces the completion callbacks.
func (f *PathFollower) SetCallbacks(cb Callbacks) { f.cb = cb }

// SetConfig replaces the tuning. Takes effect on the next tick.
func (f *PathFollower) SetConfig(cfg Config) { f.cfg = cfg }

// Config returns the current tuning.
func (f *PathFollower) Config() Config { return f.cfg }

// State returns the current traversal state.
func (f *PathFollower) State() State { return f.state }

// HasActivePath reports whether a path is being followed.
func (f *PathFollower) HasActivePath() bool {
	return f.path != nil && f.state.active()
}

// Committed reports whether the agent is in the air or lining up a launch.
// Move requests should not interrupt a committed follower.
func (f *PathFollower) Committed() bool {
	return f.state == StateInFlight || (f.state == StateRotateGate && f.gate.purpose == gateLaunch)
}

// Cursor returns the active segment's start and end indices.
func (f *PathFollower) Cursor() (start, end int) { return f.start, f.end }

// Destination returns the location of the active segment's end point.
func (f *PathFollower) Destination() geom.Vec3 { return f.destination }

// Path returns the active path, or nil.
func (f *PathFollower) Path() *Path { return f.path }

// WalkingLink reports whether the active segment is a jump link being walked
// on foot after a failed launch or a missed landing.
func (f *PathFollower) WalkingLink() bool {
	return f.state == StateSteering && f.groundFallback
}

// SegmentsEntered returns how many segments of the current path have been
// entered so far.
func (f *PathFollower) SegmentsEntered() int { return f.segments }

// GateAim returns the point a rotate gate is aligning with.
func (f *PathFollower) GateAim() (geom.Vec3, bool) {
	if f.state != StateRotateGate {
		return geom.Vec3{}, false
	}
	return f.gate.aim, true
}

// AssignPath replaces any current path with points. Paths with fewer than
// two points are rejected with ErrInvalidPath and nothing changes.
func (f *PathFollower) AssignPath(points []PathPoint) error {
	p, err := NewPath(points)
	if err != nil {
		return err
	}
	f.Assign(p)
	return nil
}

// Assign replaces any current path with an already validated one.
func (f *PathFollower) Assign(p *Path) {
	if p == nil || p.Len() < 2 {
		return
	}
	f.abort()

	f.path = p
	f.segments = 0
	f.groundFallback = false
	f.flightTime = 0

	if p.isJumpStart(0) {
		// Segment 0 is entered on launch, once aligned with the link.
		f.start, f.end = 0, 1
		f.destination = p.Point(1).Location
		f.enterGate(gateLaunch, p.Point(1).Location, 0)
		return
	}
	f.enterSegment(0)
	f.setState(StateSteering)
}

// Stop discards the current path.
func (f *PathFollower) Stop() {
	f.abort()
}

// Tick advances the follower by dt seconds.
func (f *PathFollower) Tick(h Handle, dt float64) {
	if !h.Valid() || dt <= 0 || f.path == nil {
		return
	}
	if handler := stateHandlers[f.state]; handler != nil {
		handler(f, h, dt)
	}
}

// AdvanceSegment moves the cursor so that point index starts the active
// segment. Advancing to the final point finishes the path. If the point
// starts a jump link the agent is launched toward the next point once; when
// no arc can be solved it stays on the ground.
func (f *PathFollower) AdvanceSegment(h Handle, index int) {
	if f.path == nil || !f.state.active() || index < 0 {
		return
	}
	if index >= f.path.Len()-1 {
		f.finish(OutcomeSuccess)
		return
	}
	f.enterSegment(index)
	if f.path.isJumpStart(index) {
		f.launch(h, index)
		return
	}
	f.setState(StateSteering)
}

func (f *PathFollower) enterSegment(index int) {
	f.start = index
	f.end = index + 1
	f.destination = f.path.Point(f.end).Location
	f.groundFallback = false
	f.flightTime = 0
	f.segments++
	if f.cb.OnSegmentAdvanced != nil {
		f.cb.OnSegmentAdvanced(index)
	}
}

func (f *PathFollower) launch(h Handle, index int) {
	to := f.path.Point(index + 1).Location
	if h.Body == nil || h.Movement == nil {
		f.fallBackToGround(index, errNoMovement)
		return
	}
	v, err := SolveLaunch(h.Body.Location(), to, f.cfg.JumpApexHeight, f.cfg.Gravity, f.cfg.MaxLaunchSpeed)
	if err != nil {
		f.fallBackToGround(index, err)
		return
	}
	h.Movement.Launch(v)
	f.flightTime = 0
	f.setState(StateInFlight)
	if f.cb.OnLaunch != nil {
		f.cb.OnLaunch(index, v)
	}
}

func (f *PathFollower) fallBackToGround(index int, err error) {
	f.log.Warn("jump link walked on foot", "segment", index, "err", err)
	f.groundFallback = true
	f.setState(StateSteering)
	if f.cb.OnLaunchFallback != nil {
		f.cb.OnLaunchFallback(index, err)
	}
}

func (f *PathFollower) enterGate(purpose gatePurpose, aim geom.Vec3, index int) {
	f.gate = gate{purpose: purpose, aim: aim, index: index}
	f.setState(StateRotateGate)
}

func (f *PathFollower) finish(outcome Outcome) {
	if !f.setState(StateFinished) {
		return
	}
	f.path = nil
	if f.cb.OnPathFinished != nil {
		f.cb.OnPathFinished(outcome)
	}
}

func (f *PathFollower) abort() {
	if f.path == nil || !f.state.active() {
		f.path = nil
		return
	}
	f.setState(StateIdle)
	f.path = nil
	if f.cb.OnPathFinished != nil {
		f.cb.OnPathFinished(OutcomeAborted)
	}
}

func (f *PathFollower) setState(next State) bool {
	if !canTransition(f.state, next) {
		f.log.Error("illegal follower transition", "from", f.state, "to", next)
		return false
	}
	f.state = next
	return true
}

// rotateToward turns the body toward target and returns the alignment
// (dot product of forward and the desired direction) after turning.
func (f *PathFollower) rotateToward(body Body, target geom.Vec3, dt float64) float64 {
	dir := target.Sub(body.Location()).Planar().Normalize()
	if dir.IsZero() {
		return 1
	}
	yaw := geom.InterpYaw(body.Yaw(), geom.YawOf(dir), dt, f.cfg.RotationRate)
	body.SetYaw(yaw)
	return geom.Forward(yaw).Dot(dir)
}

func (f *PathFollower) alignment(body Body, target geom.Vec3) float64 {
	dir := target.Sub(body.Location()).Planar().Normalize()
	if dir.IsZero() {
		return 1
	}
	return geom.Forward(body.Yaw()).Dot(dir)
}
