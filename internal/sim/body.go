package sim

import (
	"github.com/Garsondee/Pursuit-Sense/internal/geom"
	"github.com/Garsondee/Pursuit-Sense/internal/nav"
)

// Body is a point mass on a flat ground plane at Z=0. Ground translation is
// written by the follower; airborne translation comes from Integrate.
type Body struct {
	loc      geom.Vec3
	yaw      float64
	vel      geom.Vec3
	airborne bool
	launches int
}

var (
	_ nav.Body     = (*Body)(nil)
	_ nav.Movement = (*Body)(nil)
)

// NewBody places a grounded body at p facing yaw.
func NewBody(p geom.Vec3, yaw float64) *Body {
	p.Z = 0
	return &Body{loc: p, yaw: yaw}
}

func (b *Body) Location() geom.Vec3     { return b.loc }
func (b *Body) Yaw() float64            { return b.yaw }
func (b *Body) SetLocation(p geom.Vec3) { b.loc = p }
func (b *Body) SetYaw(y float64)        { b.yaw = y }

// Launch applies an impulse. Launching an airborne body is ignored.
func (b *Body) Launch(v geom.Vec3) {
	if b.airborne {
		return
	}
	b.vel = v
	b.airborne = true
	b.launches++
}

func (b *Body) IsGrounded() bool { return !b.airborne }

// Velocity returns the ballistic velocity, zero on the ground.
func (b *Body) Velocity() geom.Vec3 { return b.vel }

// Launches returns how many impulses the body accepted.
func (b *Body) Launches() int { return b.launches }

// Integrate advances ballistic flight by dt under gravity. The body lands
// when it comes back down to the ground plane.
func (b *Body) Integrate(dt, gravity float64) {
	if !b.airborne || dt <= 0 {
		return
	}
	b.loc = b.loc.Add(b.vel.Scale(dt))
	b.vel.Z -= gravity * dt
	if b.loc.Z <= 0 && b.vel.Z < 0 {
		b.loc.Z = 0
		b.vel = geom.Vec3{}
		b.airborne = false
	}
}

// Teleport moves the body to p on the ground and cancels any flight.
func (b *Body) Teleport(p geom.Vec3) {
	p.Z = 0
	b.loc = p
	b.vel = geom.Vec3{}
	b.airborne = false
}

func (b *Body) handle() nav.Handle {
	return nav.Handle{Body: b, Movement: b}
}
