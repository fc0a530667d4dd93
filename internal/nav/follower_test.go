package nav

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Pursuit-Sense/internal/geom"
)

const testDT = 1.0 / 60.0

// testBody is a point mass on a flat ground plane at Z=0.
type testBody struct {
	loc      geom.Vec3
	yaw      float64
	vel      geom.Vec3
	airborne bool
	launches int
	gravity  float64
}

func newTestBody(x, y float64) *testBody {
	return &testBody{loc: geom.V(x, y, 0), gravity: 980}
}

func (b *testBody) Location() geom.Vec3     { return b.loc }
func (b *testBody) Yaw() float64            { return b.yaw }
func (b *testBody) SetLocation(p geom.Vec3) { b.loc = p }
func (b *testBody) SetYaw(y float64)        { b.yaw = y }

func (b *testBody) Launch(v geom.Vec3) {
	b.vel = v
	b.airborne = true
	b.launches++
}

func (b *testBody) IsGrounded() bool { return !b.airborne }

func (b *testBody) integrate(dt float64) {
	if !b.airborne {
		return
	}
	b.vel.Z -= b.gravity * dt
	b.loc = b.loc.Add(b.vel.Scale(dt))
	if b.loc.Z <= 0 && b.vel.Z < 0 {
		b.loc.Z = 0
		b.vel = geom.Vec3{}
		b.airborne = false
	}
}

func (b *testBody) handle() Handle { return Handle{Body: b, Movement: b} }

type recorder struct {
	segments  []int
	outcomes  []Outcome
	launches  []int
	fallbacks []error
	landings  []int
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnSegmentAdvanced: func(i int) { r.segments = append(r.segments, i) },
		OnPathFinished:    func(o Outcome) { r.outcomes = append(r.outcomes, o) },
		OnLaunch:          func(i int, _ geom.Vec3) { r.launches = append(r.launches, i) },
		OnLaunchFallback:  func(_ int, err error) { r.fallbacks = append(r.fallbacks, err) },
		OnLanded:          func(i int) { r.landings = append(r.landings, i) },
	}
}

func newFollower(cfg Config) (*PathFollower, *recorder) {
	f := NewPathFollower(cfg, nil)
	r := &recorder{}
	f.SetCallbacks(r.callbacks())
	return f, r
}

// run ticks until the follower finishes or maxTicks elapse and returns every
// state observed after a tick.
func run(f *PathFollower, b *testBody, h Handle, maxTicks int) []State {
	var seen []State
	for i := 0; i < maxTicks && f.State() != StateFinished; i++ {
		f.Tick(h, testDT)
		b.integrate(testDT)
		seen = append(seen, f.State())
	}
	return seen
}

func TestCommandedSpeed_Profile(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, 400, cfg.CommandedSpeed(100), 1e-9)
	assert.InDelta(t, 300, cfg.CommandedSpeed(0), 1e-9)
	assert.InDelta(t, 500, cfg.CommandedSpeed(200), 1e-9)
	assert.InDelta(t, 500, cfg.CommandedSpeed(1000), 1e-9)
}

func TestAssignPath_RejectsShortPath(t *testing.T) {
	f, r := newFollower(DefaultConfig())
	err := f.AssignPath([]PathPoint{Ground(geom.V(0, 0, 0))})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPath))
	assert.Equal(t, StateIdle, f.State())
	assert.False(t, f.HasActivePath())
	assert.Empty(t, r.segments)

	require.ErrorIs(t, f.AssignPath(nil), ErrInvalidPath)
}

func TestGroundPath_FiresEverySegmentThenFinishesOnce(t *testing.T) {
	f, r := newFollower(DefaultConfig())
	b := newTestBody(0, 0)
	require.NoError(t, f.AssignPath([]PathPoint{
		Ground(geom.V(0, 0, 0)),
		Ground(geom.V(300, 0, 0)),
		Ground(geom.V(300, 300, 0)),
		Ground(geom.V(0, 300, 0)),
	}))
	assert.True(t, f.HasActivePath())

	run(f, b, b.handle(), 2000)

	assert.Equal(t, []int{0, 1, 2}, r.segments)
	assert.Equal(t, []Outcome{OutcomeSuccess}, r.outcomes)
	assert.Equal(t, StateFinished, f.State())
	assert.False(t, f.HasActivePath())
	assert.Less(t, geom.PlanarDist(b.loc, geom.V(0, 300, 0)), DefaultConfig().AcceptanceRadius+1)

	// Further ticks do nothing.
	f.Tick(b.handle(), testDT)
	assert.Len(t, r.outcomes, 1)
}

func TestSteering_NeverOvershootsSegmentEnd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AcceptanceRadius = 0
	f, r := newFollower(cfg)
	b := newTestBody(0, 0)
	require.NoError(t, f.AssignPath([]PathPoint{Ground(geom.V(0, 0, 0)), Ground(geom.V(3, 0, 0))}))

	f.Tick(b.handle(), 1)
	assert.InDelta(t, 3, b.loc.X, 1e-9)
	assert.Empty(t, r.outcomes)

	f.Tick(b.handle(), 1)
	assert.Equal(t, []Outcome{OutcomeSuccess}, r.outcomes)
}

func TestSteering_TurnsTowardTravel(t *testing.T) {
	f, _ := newFollower(DefaultConfig())
	b := newTestBody(0, 0)
	b.yaw = math.Pi
	require.NoError(t, f.AssignPath([]PathPoint{Ground(geom.V(0, 0, 0)), Ground(geom.V(0, 1000, 0))}))

	for i := 0; i < 60; i++ {
		f.Tick(b.handle(), testDT)
	}
	assert.InDelta(t, math.Pi/2, b.yaw, 0.05)
}

func TestJumpLink_GateLaunchLand(t *testing.T) {
	f, r := newFollower(DefaultConfig())
	b := newTestBody(0, 0)
	require.NoError(t, f.AssignPath([]PathPoint{
		Ground(geom.V(0, 0, 0)),
		Jump(geom.V(300, 0, 0)),
		Ground(geom.V(600, 0, 0)),
		Ground(geom.V(900, 0, 0)),
	}))

	seen := run(f, b, b.handle(), 2000)

	assert.Contains(t, seen, StateRotateGate)
	assert.Contains(t, seen, StateInFlight)
	assert.Equal(t, 1, b.launches)
	assert.Equal(t, []int{1}, r.launches)
	assert.Equal(t, []int{2}, r.landings)
	assert.Empty(t, r.fallbacks)
	assert.Equal(t, []int{0, 1, 2}, r.segments)
	assert.Equal(t, []Outcome{OutcomeSuccess}, r.outcomes)
}

func TestJumpLink_MisalignedGateRotatesBeforeLaunch(t *testing.T) {
	f, _ := newFollower(DefaultConfig())
	b := newTestBody(0, 0)
	b.yaw = math.Pi
	require.NoError(t, f.AssignPath([]PathPoint{
		Ground(geom.V(0, 0, 0)),
		Jump(geom.V(30, 0, 0)),
		Ground(geom.V(330, 0, 0)),
	}))

	f.Tick(b.handle(), testDT)
	require.Equal(t, StateRotateGate, f.State())
	assert.True(t, f.Committed())
	aim, ok := f.GateAim()
	require.True(t, ok)
	assert.Equal(t, geom.V(330, 0, 0), aim)

	f.Tick(b.handle(), testDT)
	assert.Equal(t, StateRotateGate, f.State(), "a half turn takes more than one tick")
	assert.Zero(t, b.launches)
	assert.Equal(t, geom.V(0, 0, 0), b.loc, "no translation while gated")
}

func TestJumpLink_NoArcStaysOnGround(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLaunchSpeed = 10
	f, r := newFollower(cfg)
	b := newTestBody(0, 0)
	require.NoError(t, f.AssignPath([]PathPoint{
		Ground(geom.V(0, 0, 0)),
		Jump(geom.V(300, 0, 0)),
		Ground(geom.V(600, 0, 0)),
	}))

	seen := run(f, b, b.handle(), 2000)

	assert.NotContains(t, seen, StateInFlight)
	assert.Zero(t, b.launches)
	require.Len(t, r.fallbacks, 1)
	assert.ErrorIs(t, r.fallbacks[0], ErrNoArc)
	assert.Equal(t, []int{0, 1}, r.segments)
	assert.Equal(t, []Outcome{OutcomeSuccess}, r.outcomes)
}

func TestJumpLink_NoMovementCapabilityFallsBack(t *testing.T) {
	f, r := newFollower(DefaultConfig())
	b := newTestBody(0, 0)
	require.NoError(t, f.AssignPath([]PathPoint{
		Ground(geom.V(0, 0, 0)),
		Jump(geom.V(300, 0, 0)),
		Ground(geom.V(600, 0, 0)),
	}))

	var walked bool
	h := Handle{Body: b}
	for i := 0; i < 2000 && f.State() != StateFinished; i++ {
		f.Tick(h, testDT)
		walked = walked || f.WalkingLink()
		assert.NotEqual(t, StateInFlight, f.State())
	}
	assert.True(t, walked)
	assert.Len(t, r.fallbacks, 1)
	assert.Equal(t, []Outcome{OutcomeSuccess}, r.outcomes)
}

func TestJumpAtFirstPoint_GatesThenEntersSegmentZero(t *testing.T) {
	f, r := newFollower(DefaultConfig())
	b := newTestBody(0, 0)
	require.NoError(t, f.AssignPath([]PathPoint{Jump(geom.V(0, 0, 0)), Ground(geom.V(300, 0, 0))}))
	assert.Equal(t, StateRotateGate, f.State())
	assert.Empty(t, r.segments)

	run(f, b, b.handle(), 2000)

	assert.Equal(t, []int{0}, r.segments)
	assert.Equal(t, 1, b.launches)
	assert.Equal(t, []Outcome{OutcomeSuccess}, r.outcomes)
}

func TestJumpTagOnLastPoint_IsGround(t *testing.T) {
	f, r := newFollower(DefaultConfig())
	b := newTestBody(0, 0)
	require.NoError(t, f.AssignPath([]PathPoint{Ground(geom.V(0, 0, 0)), Jump(geom.V(200, 0, 0))}))

	seen := run(f, b, b.handle(), 2000)

	assert.NotContains(t, seen, StateRotateGate)
	assert.Zero(t, b.launches)
	assert.Equal(t, []Outcome{OutcomeSuccess}, r.outcomes)
}

func TestAssignPath_ReplacingAbortsPrevious(t *testing.T) {
	f, r := newFollower(DefaultConfig())
	b := newTestBody(0, 0)
	require.NoError(t, f.AssignPath([]PathPoint{Ground(geom.V(0, 0, 0)), Ground(geom.V(1000, 0, 0))}))
	f.Tick(b.handle(), testDT)

	require.NoError(t, f.AssignPath([]PathPoint{Ground(b.loc), Ground(geom.V(0, 500, 0))}))
	assert.Equal(t, []Outcome{OutcomeAborted}, r.outcomes)
	assert.Equal(t, []int{0, 0}, r.segments)
	assert.Equal(t, 1, f.SegmentsEntered())

	f.Stop()
	assert.Equal(t, []Outcome{OutcomeAborted, OutcomeAborted}, r.outcomes)
	assert.Equal(t, StateIdle, f.State())

	f.Stop()
	assert.Len(t, r.outcomes, 2, "stopping an idle follower reports nothing")
}

func TestAssignPath_AfterFinishDoesNotAbort(t *testing.T) {
	f, r := newFollower(DefaultConfig())
	b := newTestBody(0, 0)
	require.NoError(t, f.AssignPath([]PathPoint{Ground(geom.V(0, 0, 0)), Ground(geom.V(100, 0, 0))}))
	run(f, b, b.handle(), 1000)
	require.Equal(t, StateFinished, f.State())

	require.NoError(t, f.AssignPath([]PathPoint{Ground(b.loc), Ground(geom.V(0, 0, 0))}))
	assert.Equal(t, []Outcome{OutcomeSuccess}, r.outcomes)
	assert.Equal(t, StateSteering, f.State())
}

func TestTick_InvalidHandleIsNoop(t *testing.T) {
	f, _ := newFollower(DefaultConfig())
	require.NoError(t, f.AssignPath([]PathPoint{Ground(geom.V(0, 0, 0)), Ground(geom.V(100, 0, 0))}))
	f.Tick(Handle{}, testDT)
	assert.Equal(t, StateSteering, f.State())
}

func TestAdvanceSegment_IgnoredWhenIdle(t *testing.T) {
	f, r := newFollower(DefaultConfig())
	b := newTestBody(0, 0)
	f.AdvanceSegment(b.handle(), 1)
	assert.Empty(t, r.segments)
	assert.Equal(t, StateIdle, f.State())
}

func TestTransitionTable(t *testing.T) {
	assert.True(t, canTransition(StateIdle, StateSteering))
	assert.True(t, canTransition(StateSteering, StateInFlight))
	assert.True(t, canTransition(StateInFlight, StateRotateGate))
	assert.False(t, canTransition(StateIdle, StateInFlight))
	assert.False(t, canTransition(StateFinished, StateInFlight))
	assert.False(t, canTransition(StateIdle, StateFinished))
	assert.False(t, canTransition(State(42), StateIdle))
}

func TestJumpLink_GateCoversAcceptanceRadius(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JumpImminentRadius = 10
	cfg.AcceptanceRadius = 20
	f, r := newFollower(cfg)
	b := newTestBody(0, 0)
	b.yaw = 3.0
	landing := geom.V(300, 400, 0)

	var alignmentAtLaunch float64
	cb := r.callbacks()
	onLaunch := cb.OnLaunch
	cb.OnLaunch = func(i int, v geom.Vec3) {
		alignmentAtLaunch = f.alignment(b, landing)
		onLaunch(i, v)
	}
	f.SetCallbacks(cb)
	require.NoError(t, f.AssignPath([]PathPoint{
		Ground(geom.V(0, 0, 0)),
		Jump(geom.V(300, 0, 0)),
		Ground(landing),
	}))

	seen := run(f, b, b.handle(), 2000)

	assert.Contains(t, seen, StateRotateGate)
	assert.Equal(t, []int{1}, r.launches)
	assert.Greater(t, alignmentAtLaunch, cfg.LaunchAlignment)
	assert.Equal(t, []Outcome{OutcomeSuccess}, r.outcomes)
}

func TestJumpLink_LandingGateTurnsBeforeResuming(t *testing.T) {
	f, r := newFollower(DefaultConfig())
	b := newTestBody(0, 0)
	require.NoError(t, f.AssignPath([]PathPoint{
		Ground(geom.V(0, 0, 0)),
		Jump(geom.V(300, 0, 0)),
		Ground(geom.V(600, 0, 0)),
		Ground(geom.V(600, 600, 0)),
	}))

	var gated bool
	var gateLoc geom.Vec3
	for i := 0; i < 3000 && f.State() != StateFinished; i++ {
		f.Tick(b.handle(), testDT)
		b.integrate(testDT)
		if f.State() != StateRotateGate || f.gate.purpose != gateLanding {
			continue
		}
		if !gated {
			gated = true
			gateLoc = b.loc
			continue
		}
		assert.Equal(t, gateLoc, b.loc, "no translation while gated")
	}

	assert.True(t, gated, "landing facing away from the next point should gate")
	assert.Equal(t, []int{2}, r.landings)
	assert.Equal(t, []int{0, 1, 2}, r.segments)
	assert.Equal(t, []Outcome{OutcomeSuccess}, r.outcomes)
}

// shortBody launches at half the requested horizontal speed.
type shortBody struct {
	*testBody
}

func (s shortBody) Launch(v geom.Vec3) {
	s.testBody.Launch(geom.V(v.X*0.5, v.Y*0.5, v.Z))
}

func TestJumpLink_MissedLandingWalksRestOfLink(t *testing.T) {
	f, r := newFollower(DefaultConfig())
	b := shortBody{newTestBody(0, 0)}
	h := Handle{Body: b, Movement: b}
	require.NoError(t, f.AssignPath([]PathPoint{
		Ground(geom.V(0, 0, 0)),
		Jump(geom.V(300, 0, 0)),
		Ground(geom.V(600, 0, 0)),
	}))

	var walked bool
	for i := 0; i < 3000 && f.State() != StateFinished; i++ {
		f.Tick(h, testDT)
		b.integrate(testDT)
		walked = walked || f.WalkingLink()
	}

	assert.Equal(t, 1, b.launches)
	assert.True(t, walked)
	assert.Empty(t, r.landings)
	assert.Empty(t, r.fallbacks)
	assert.Equal(t, StateFinished, f.State())
	assert.Equal(t, []Outcome{OutcomeSuccess}, r.outcomes)
}
