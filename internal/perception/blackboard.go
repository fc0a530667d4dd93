package perception

import "github.com/Garsondee/Pursuit-Sense/internal/geom"

// --- Modes ---

// Mode is the behaviour the latest sample selected.
type Mode int

const (
	ModeNone    Mode = iota // no target tracked
	ModeFlee                // target is threatening: run to the best flee point
	ModeChase               // run at the target or its last known position
	ModeCollect             // wander between collectibles
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeFlee:
		return "flee"
	case ModeChase:
		return "chase"
	case ModeCollect:
		return "collect"
	default:
		return "unknown"
	}
}

// --- Destination ---

// Destination is where the agent should go next. When FollowTarget is set
// the agent moves toward the live target and Point is only informative.
type Destination struct {
	Point        geom.Vec3
	FollowTarget bool
	Valid        bool
}

// --- Blackboard ---

// Blackboard is an agent's perception memory, rewritten by every sample.
type Blackboard struct {
	HasTarget  bool
	Threatened bool
	Detected   bool // inside the forward detection sweep
	HasLOS     bool // detected and unobstructed

	LKP           geom.Vec3
	LKPValidUntil float64
	hasLKP        bool

	Mode        Mode
	Destination Destination
}

// RecordSighting stores the target's location, valid until the given time.
func (bb *Blackboard) RecordSighting(p geom.Vec3, validUntil float64) {
	bb.LKP = p
	bb.LKPValidUntil = validUntil
	bb.hasLKP = true
}

// LKPValid reports whether the last known position may still be used.
func (bb *Blackboard) LKPValid(now float64) bool {
	return bb.hasLKP && bb.LKPValidUntil > now
}

// Forget clears everything that depends on the target.
func (bb *Blackboard) Forget() {
	*bb = Blackboard{}
}
