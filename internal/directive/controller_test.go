package directive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Pursuit-Sense/internal/geom"
	"github.com/Garsondee/Pursuit-Sense/internal/nav"
	"github.com/Garsondee/Pursuit-Sense/internal/simclock"
)

const dt = 1.0 / 60.0

type body struct {
	loc      geom.Vec3
	yaw      float64
	vel      geom.Vec3
	airborne bool
}

func (b *body) Location() geom.Vec3     { return b.loc }
func (b *body) Yaw() float64            { return b.yaw }
func (b *body) SetLocation(p geom.Vec3) { b.loc = p }
func (b *body) SetYaw(y float64)        { b.yaw = y }
func (b *body) Launch(v geom.Vec3)      { b.vel, b.airborne = v, true }
func (b *body) IsGrounded() bool        { return !b.airborne }

func (b *body) integrate() {
	if !b.airborne {
		return
	}
	b.vel.Z -= 980 * dt
	b.loc = b.loc.Add(b.vel.Scale(dt))
	if b.loc.Z <= 0 && b.vel.Z < 0 {
		b.loc.Z, b.vel, b.airborne = 0, geom.Vec3{}, false
	}
}

func (b *body) handle() nav.Handle { return nav.Handle{Body: b, Movement: b} }

func chasmPlanner() *LinkPlanner {
	return &LinkPlanner{
		Chasms: []geom.Rect{{MinX: 250, MinY: -500, MaxX: 350, MaxY: 500}},
		Links:  []JumpLink{{A: geom.V(240, 0, 0), B: geom.V(360, 0, 0)}},
	}
}

func newTestController(t *testing.T, planner Planner, locate Locator) (*Controller, *simclock.Logical, *[]nav.Outcome) {
	t.Helper()
	clock := simclock.NewLogical(0)
	f := nav.NewPathFollower(nav.DefaultConfig(), nil)
	c := NewController(f, planner, locate, clock, DefaultConfig(), nil)
	var outcomes []nav.Outcome
	c.OnMoveCompleted(func(o nav.Outcome) { outcomes = append(outcomes, o) })
	return c, clock, &outcomes
}

func TestLinkPlanner_StraightWhenClear(t *testing.T) {
	p := chasmPlanner()
	pts, err := p.Plan(geom.V(0, 0, 0), geom.V(200, 100, 0))
	require.NoError(t, err)
	assert.Equal(t, []nav.PathPoint{nav.Ground(geom.V(0, 0, 0)), nav.Ground(geom.V(200, 100, 0))}, pts)
}

func TestLinkPlanner_SplicesLinkInTravelDirection(t *testing.T) {
	p := chasmPlanner()
	pts, err := p.Plan(geom.V(0, 0, 0), geom.V(600, 50, 0))
	require.NoError(t, err)
	assert.Equal(t, []nav.PathPoint{
		nav.Ground(geom.V(0, 0, 0)),
		nav.Jump(geom.V(240, 0, 0)),
		nav.Ground(geom.V(360, 0, 0)),
		nav.Ground(geom.V(600, 50, 0)),
	}, pts)

	back, err := p.Plan(geom.V(600, 50, 0), geom.V(0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, nav.Jump(geom.V(360, 0, 0)), back[1])
	assert.Equal(t, nav.Ground(geom.V(240, 0, 0)), back[2])
}

func TestLinkPlanner_NoLinkIsNoRoute(t *testing.T) {
	p := &LinkPlanner{Chasms: chasmPlanner().Chasms}
	_, err := p.Plan(geom.V(0, 0, 0), geom.V(600, 0, 0))
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestMoveToLocation_NoPlanner(t *testing.T) {
	c, _, _ := newTestController(t, nil, nil)
	assert.ErrorIs(t, c.MoveToLocation(geom.Vec3{}, geom.V(10, 0, 0)), ErrNoPlanner)
}

func TestMoveToLocation_PlannerErrorKeepsPriorPath(t *testing.T) {
	fail := false
	planner := PlannerFunc(func(from, to geom.Vec3) ([]nav.PathPoint, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return []nav.PathPoint{nav.Ground(from), nav.Ground(to)}, nil
	})
	c, _, outcomes := newTestController(t, planner, nil)
	require.NoError(t, c.MoveToLocation(geom.Vec3{}, geom.V(500, 0, 0)))

	fail = true
	err := c.MoveToLocation(geom.Vec3{}, geom.V(0, 500, 0))
	require.Error(t, err)
	assert.True(t, c.HasActivePath())
	g, _ := c.Goal()
	assert.Equal(t, geom.V(500, 0, 0), g)
	assert.Empty(t, *outcomes)
}

func TestMoveToLocation_SameGoalIsNotReissued(t *testing.T) {
	c, _, outcomes := newTestController(t, chasmPlanner(), nil)
	b := &body{}
	require.NoError(t, c.MoveToLocation(b.loc, geom.V(200, 0, 0)))
	c.Update(b.handle(), dt)
	require.NoError(t, c.MoveToLocation(b.loc, geom.V(203, 0, 0)))
	assert.Empty(t, *outcomes, "a near-identical request must not restart the path")

	for i := 0; i < 600 && c.HasActivePath(); i++ {
		c.Update(b.handle(), dt)
	}
	assert.True(t, c.ReachedTarget())
	assert.Equal(t, []nav.Outcome{nav.OutcomeSuccess}, *outcomes)
}

func TestMoveToLocation_DeferredWhileAirborne(t *testing.T) {
	c, _, outcomes := newTestController(t, chasmPlanner(), nil)
	b := &body{}
	require.NoError(t, c.MoveToLocation(b.loc, geom.V(600, 0, 0)))

	for i := 0; i < 600 && c.Follower().State() != nav.StateInFlight; i++ {
		c.Update(b.handle(), dt)
		b.integrate()
	}
	require.Equal(t, nav.StateInFlight, c.Follower().State())

	require.NoError(t, c.MoveToLocation(b.loc, geom.V(600, 300, 0)))
	assert.True(t, c.Pending())
	c.Update(b.handle(), dt)
	b.integrate()
	assert.Equal(t, nav.StateInFlight, c.Follower().State(), "a jump is never interrupted")
	assert.Empty(t, *outcomes)

	for i := 0; i < 600 && c.Pending(); i++ {
		c.Update(b.handle(), dt)
		b.integrate()
	}
	require.False(t, c.Pending())
	g, _ := c.Goal()
	assert.Equal(t, geom.V(600, 300, 0), g)
	assert.Equal(t, []nav.Outcome{nav.OutcomeAborted}, *outcomes)
	assert.Greater(t, b.loc.X, 300.0, "the agent landed across the chasm")
}

func TestMoveToEntity_RepathsWhenEntityMoves(t *testing.T) {
	target := geom.V(1000, 0, 0)
	locate := func(id string) (geom.Vec3, bool) { return target, id == "t" }
	c, clock, _ := newTestController(t, PlannerFunc(func(from, to geom.Vec3) ([]nav.PathPoint, error) {
		return []nav.PathPoint{nav.Ground(from), nav.Ground(to)}, nil
	}), locate)
	b := &body{}

	require.NoError(t, c.MoveToEntity(b.loc, "t"))
	assert.ErrorIs(t, c.MoveToEntity(b.loc, "nobody"), ErrUnknownEntity)

	target = geom.V(1000, 500, 0)
	clock.Set(0.2)
	c.Update(b.handle(), dt)
	assert.Zero(t, c.Replans(), "re-planning waits for the interval")

	clock.Set(0.6)
	c.Update(b.handle(), dt)
	assert.Equal(t, 1, c.Replans())
	g, _ := c.Goal()
	assert.Equal(t, target, g)

	clock.Set(1.2)
	c.Update(b.handle(), dt)
	assert.Equal(t, 1, c.Replans(), "unmoved entity needs no re-plan")
}

func TestStop_ClearsGoal(t *testing.T) {
	c, _, outcomes := newTestController(t, chasmPlanner(), nil)
	require.NoError(t, c.MoveToLocation(geom.Vec3{}, geom.V(100, 0, 0)))
	c.Stop()
	assert.False(t, c.HasActivePath())
	_, ok := c.Goal()
	assert.False(t, ok)
	assert.Equal(t, []nav.Outcome{nav.OutcomeAborted}, *outcomes)
}
