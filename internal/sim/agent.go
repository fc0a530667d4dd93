package sim

import (
	"github.com/Garsondee/Pursuit-Sense/internal/chase"
	"github.com/Garsondee/Pursuit-Sense/internal/directive"
	"github.com/Garsondee/Pursuit-Sense/internal/geom"
	"github.com/Garsondee/Pursuit-Sense/internal/nav"
	"github.com/Garsondee/Pursuit-Sense/internal/perception"
)

// Agent is one pursuing AI.
type Agent struct {
	ID    chase.MemberID
	Label string

	spawn      geom.Vec3
	body       *Body
	follower   *nav.PathFollower
	controller *directive.Controller
	sampler    *perception.Sampler

	alive     bool
	respawnAt float64
	mode      perception.Mode
}

// Location returns the agent's current position.
func (a *Agent) Location() geom.Vec3 { return a.body.Location() }

// Yaw returns the agent's heading.
func (a *Agent) Yaw() float64 { return a.body.Yaw() }

// Alive reports whether the agent is in the world.
func (a *Agent) Alive() bool { return a.alive }

// Body returns the agent's kinematic body.
func (a *Agent) Body() *Body { return a.body }

// Follower returns the agent's path follower.
func (a *Agent) Follower() *nav.PathFollower { return a.follower }

// Controller returns the agent's directive layer.
func (a *Agent) Controller() *directive.Controller { return a.controller }

// Sampler returns the agent's perception sampler.
func (a *Agent) Sampler() *perception.Sampler { return a.sampler }

// Mode returns the mode chosen by the latest sample.
func (a *Agent) Mode() perception.Mode { return a.mode }

// Spawn returns where the agent enters the world.
func (a *Agent) Spawn() geom.Vec3 { return a.spawn }
