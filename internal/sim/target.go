package sim

import (
	"github.com/Garsondee/Pursuit-Sense/internal/config"
	"github.com/Garsondee/Pursuit-Sense/internal/directive"
	"github.com/Garsondee/Pursuit-Sense/internal/geom"
	"github.com/Garsondee/Pursuit-Sense/internal/nav"
)

// TargetID is the entity id agents use to chase the target.
const TargetID = "target"

// Target is the scripted entity the agents pursue. It loops its route.
type Target struct {
	script     config.Target
	route      []geom.Vec3
	next       int
	body       *Body
	controller *directive.Controller

	alive      bool
	respawnAt  float64
	threatened bool
}

func (t *Target) Location() geom.Vec3 { return t.body.Location() }

// Alive reports whether the target is in the world.
func (t *Target) Alive() bool { return t.alive }

// Threatened reports whether the target is currently dangerous to agents.
func (t *Target) Threatened() bool { return t.threatened }

// Body returns the target's kinematic body.
func (t *Target) Body() *Body { return t.body }

// Follower returns the target's path follower.
func (t *Target) Follower() *nav.PathFollower { return t.controller.Follower() }

func (t *Target) respawn() {
	t.alive = true
	t.controller.Stop()
	t.body.Teleport(t.route[0])
	t.next = 1 % len(t.route)
}

// advance sends the target toward its next route point once the current leg
// is done.
func (t *Target) advance() error {
	if len(t.route) < 2 || t.controller.HasActivePath() || t.controller.Pending() {
		return nil
	}
	to := t.route[t.next]
	t.next = (t.next + 1) % len(t.route)
	return t.controller.MoveToLocation(t.body.Location(), to)
}

// targetConfig caps the follower tuning at the target's top speed.
func targetConfig(cfg nav.Config, maxSpeed float64) nav.Config {
	if maxSpeed <= 0 {
		return cfg
	}
	cfg.MaxSpeed = maxSpeed
	if cfg.MinSpeed > maxSpeed {
		cfg.MinSpeed = maxSpeed
	}
	return cfg
}
