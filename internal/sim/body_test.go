package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Garsondee/Pursuit-Sense/internal/geom"
	"github.com/Garsondee/Pursuit-Sense/internal/nav"
)

func TestBody_BallisticFlightLandsOnGround(t *testing.T) {
	b := NewBody(geom.V(0, 0, 0), 0)
	v, err := nav.SolveLaunch(b.Location(), geom.V(200, 0, 0), 150, 980, 2000)
	assert.NoError(t, err)

	b.Launch(v)
	assert.False(t, b.IsGrounded())
	for i := 0; i < 600 && !b.IsGrounded(); i++ {
		b.Integrate(1.0/120, 980)
	}
	assert.True(t, b.IsGrounded())
	assert.Zero(t, b.Location().Z)
	assert.InDelta(t, 200, b.Location().X, 5)
	assert.True(t, b.Velocity().IsZero())
}

func TestBody_SecondLaunchInFlightIgnored(t *testing.T) {
	b := NewBody(geom.V(0, 0, 0), 0)
	b.Launch(geom.V(100, 0, 500))
	b.Launch(geom.V(-100, 0, 500))
	assert.Equal(t, 1, b.Launches())
	assert.Equal(t, 100.0, b.Velocity().X)
}

func TestBody_GroundedIgnoresIntegrate(t *testing.T) {
	b := NewBody(geom.V(5, 5, 0), 1)
	b.Integrate(1, 980)
	assert.Equal(t, geom.V(5, 5, 0), b.Location())
}

func TestBody_TeleportCancelsFlight(t *testing.T) {
	b := NewBody(geom.V(0, 0, 0), 0)
	b.Launch(geom.V(0, 0, 500))
	b.Integrate(0.1, 980)
	b.Teleport(geom.V(10, 20, 30))
	assert.True(t, b.IsGrounded())
	assert.Equal(t, geom.V(10, 20, 0), b.Location())
}
