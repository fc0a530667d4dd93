package nav

import (
	"errors"

	"github.com/Garsondee/Pursuit-Sense/internal/geom"
)

var errNoMovement = errors.New("nav: no movement capability")

// State is the follower's traversal mode.
type State uint8

const (
	StateIdle       State = iota // no path
	StateSteering                // ground segment
	StateRotateGate              // rotating in place before a launch or after a landing
	StateInFlight                // ballistic, translation owned by physics
	StateFinished                // last path completed
	stateCount
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSteering:
		return "steering"
	case StateRotateGate:
		return "rotate_gate"
	case StateInFlight:
		return "in_flight"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

func (s State) active() bool {
	return s == StateSteering || s == StateRotateGate || s == StateInFlight
}

// transitions[from][to] lists every legal state change. Steering→Steering is
// a segment advance on the ground.
var transitions = [stateCount][stateCount]bool{
	StateIdle: {
		StateSteering:   true,
		StateRotateGate: true,
	},
	StateSteering: {
		StateIdle:       true,
		StateSteering:   true,
		StateRotateGate: true,
		StateInFlight:   true,
		StateFinished:   true,
	},
	StateRotateGate: {
		StateIdle:     true,
		StateSteering: true,
		StateInFlight: true,
		StateFinished: true,
	},
	StateInFlight: {
		StateIdle:       true,
		StateSteering:   true,
		StateRotateGate: true,
		StateFinished:   true,
	},
	StateFinished: {
		StateSteering:   true,
		StateRotateGate: true,
	},
}

func canTransition(from, to State) bool {
	if from >= stateCount || to >= stateCount {
		return false
	}
	return transitions[from][to]
}

type stateHandler func(f *PathFollower, h Handle, dt float64)

var stateHandlers = [stateCount]stateHandler{
	StateSteering:   (*PathFollower).tickSteering,
	StateRotateGate: (*PathFollower).tickRotateGate,
	StateInFlight:   (*PathFollower).tickInFlight,
}

// tickSteering translates toward the segment end and turns toward the
// direction of travel. Approaching a jump point stops translation and hands
// over to the launch gate.
func (f *PathFollower) tickSteering(h Handle, dt float64) {
	body := h.Body
	loc := body.Location()
	target := f.destination
	dist := geom.PlanarDist(loc, target)

	// The launch gate also covers the acceptance radius.
	if f.path.isJumpStart(f.end) && (dist < f.cfg.JumpImminentRadius || dist <= f.cfg.AcceptanceRadius) {
		f.enterGate(gateLaunch, f.path.Point(f.end+1).Location, f.end)
		return
	}
	if dist <= f.cfg.AcceptanceRadius {
		f.AdvanceSegment(h, f.end)
		return
	}

	dir := target.Sub(loc).Planar().Normalize()
	step := f.cfg.CommandedSpeed(dist) * dt
	if step > dist {
		step = dist
	}
	body.SetLocation(loc.Add(dir.Scale(step)))
	f.rotateToward(body, target, dt)
}

// tickRotateGate turns in place until the agent faces the gate's aim point
// closely enough, then releases into the next segment.
func (f *PathFollower) tickRotateGate(h Handle, dt float64) {
	threshold := f.cfg.LandingAlignment
	if f.gate.purpose == gateLaunch {
		threshold = f.cfg.LaunchAlignment
	}
	if f.rotateToward(h.Body, f.gate.aim, dt) <= threshold {
		return
	}
	f.AdvanceSegment(h, f.gate.index)
}

// tickInFlight waits for the launched agent to come down near the landing
// point. Translation belongs to the physics capability.
func (f *PathFollower) tickInFlight(h Handle, dt float64) {
	if h.Movement == nil {
		return
	}
	f.flightTime += dt
	if !h.Movement.IsGrounded() {
		return
	}
	landing := f.path.Point(f.end).Location
	if geom.PlanarDist(h.Body.Location(), landing) < f.cfg.LandingRadius {
		f.land(h)
		return
	}
	if f.flightTime > f.cfg.MaxFlightTime {
		f.log.Warn("missed landing point, walking the rest of the link", "segment", f.start)
		f.groundFallback = true
		f.setState(StateSteering)
	}
}

func (f *PathFollower) land(h Handle) {
	landing := f.end
	if f.cb.OnLanded != nil {
		f.cb.OnLanded(landing)
	}
	if landing >= f.path.Len()-1 {
		f.AdvanceSegment(h, landing)
		return
	}
	next := f.path.Point(landing + 1).Location
	if f.path.isJumpStart(landing) {
		f.enterGate(gateLaunch, next, landing)
		return
	}
	if f.alignment(h.Body, next) > f.cfg.LandingAlignment {
		f.AdvanceSegment(h, landing)
		return
	}
	f.enterGate(gateLanding, next, landing)
}
