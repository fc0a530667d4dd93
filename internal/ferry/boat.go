// Package ferry scripts a boat through a fixed mission: wait for the first
// bridge, unload at an operator, wait for the second bridge, leave.
package ferry

import (
	"errors"

	"github.com/Garsondee/Pursuit-Sense/internal/geom"
	"github.com/Garsondee/Pursuit-Sense/internal/logging"
	"github.com/Garsondee/Pursuit-Sense/internal/nav"
)

// State is the boat's mission stage.
type State int

const (
	StateSpawned State = iota
	StateGoToStartBridge
	StateWaitAtStartBridge
	StateGoToOperator
	StateWaitAtOperator
	StateGoToEndBridge
	StateWaitAtEndBridge
	StateGoToDespawn
	StateDespawn
)

func (s State) String() string {
	switch s {
	case StateSpawned:
		return "spawned"
	case StateGoToStartBridge:
		return "go_to_start_bridge"
	case StateWaitAtStartBridge:
		return "wait_at_start_bridge"
	case StateGoToOperator:
		return "go_to_operator"
	case StateWaitAtOperator:
		return "wait_at_operator"
	case StateGoToEndBridge:
		return "go_to_end_bridge"
	case StateWaitAtEndBridge:
		return "wait_at_end_bridge"
	case StateGoToDespawn:
		return "go_to_despawn"
	case StateDespawn:
		return "despawn"
	default:
		return "unknown"
	}
}

// Landmark tags.
const (
	TagStartWait   = "start_wait"
	TagEndWait     = "end_wait"
	TagDespawn     = "despawn"
	TagStartBridge = "start_bridge"
	TagEndBridge   = "end_bridge"
)

var errNoWaypoint = errors.New("ferry: waypoint missing")

// Landmarks resolves tagged waypoints and bridge states.
type Landmarks interface {
	Waypoint(tag string) (geom.Vec3, bool)
	// BridgeRaised reports whether the bridge with tag lets boats through.
	BridgeRaised(tag string) bool
}

// Operator unloads boats at its drop location.
type Operator interface {
	Available() bool
	Reserve(b *Boat)
	Release(b *Boat)
	DropLocation() geom.Vec3
}

// Mover issues move requests for the boat.
type Mover interface {
	MoveTo(p geom.Vec3) error
}

// Boat is one ferry run.
type Boat struct {
	id        string
	state     State
	mover     Mover
	marks     Landmarks
	operators []Operator
	reserved  Operator
	log       logging.Logger
	onState   func(from, to State)
}

// NewBoat creates a boat in StateSpawned.
func NewBoat(id string, mover Mover, marks Landmarks, operators []Operator, log logging.Logger) *Boat {
	return &Boat{
		id:        id,
		mover:     mover,
		marks:     marks,
		operators: operators,
		log:       logging.OrNop(log),
	}
}

// ID returns the boat id.
func (b *Boat) ID() string { return b.id }

// State returns the current stage.
func (b *Boat) State() State { return b.state }

// Done reports whether the boat finished its run and can be removed.
func (b *Boat) Done() bool { return b.state == StateDespawn }

// OnStateChange sets a callback fired on every stage change.
func (b *Boat) OnStateChange(fn func(from, to State)) { b.onState = fn }

// Update drives the stages that do not wait on a move completion.
func (b *Boat) Update() {
	switch b.state {
	case StateSpawned:
		if b.moveToTag(TagStartWait) {
			b.setState(StateGoToStartBridge)
		}
	case StateWaitAtStartBridge:
		if b.marks.BridgeRaised(TagStartBridge) {
			b.setState(StateGoToOperator)
		}
	case StateGoToOperator:
		if b.reserved != nil {
			return
		}
		for _, op := range b.operators {
			if !op.Available() {
				continue
			}
			if err := b.mover.MoveTo(op.DropLocation()); err != nil {
				b.log.Warn("boat cannot reach operator", "boat", b.id, "err", err)
				return
			}
			op.Reserve(b)
			b.reserved = op
			return
		}
	case StateWaitAtEndBridge:
		if b.marks.BridgeRaised(TagEndBridge) && b.moveToTag(TagDespawn) {
			b.setState(StateGoToDespawn)
		}
	}
}

// OnMoveCompleted advances the travel stages once a move succeeds.
func (b *Boat) OnMoveCompleted(outcome nav.Outcome) {
	if outcome != nav.OutcomeSuccess {
		return
	}
	switch b.state {
	case StateGoToStartBridge:
		b.setState(StateWaitAtStartBridge)
	case StateGoToOperator:
		if b.reserved != nil {
			b.setState(StateWaitAtOperator)
		}
	case StateGoToEndBridge:
		b.setState(StateWaitAtEndBridge)
	case StateGoToDespawn:
		b.setState(StateDespawn)
	}
}

// NotifyUnloadComplete is called by the operator when the cargo is off.
func (b *Boat) NotifyUnloadComplete() {
	if b.state != StateWaitAtOperator {
		b.log.Debug("unload notice ignored", "boat", b.id, "state", b.state)
		return
	}
	if b.reserved != nil {
		b.reserved.Release(b)
		b.reserved = nil
	}
	b.setState(StateGoToEndBridge)
	if !b.moveToTag(TagEndWait) {
		b.log.Warn("boat stranded after unload", "boat", b.id)
	}
}

func (b *Boat) moveToTag(tag string) bool {
	p, ok := b.marks.Waypoint(tag)
	if !ok {
		b.log.Warn("boat waypoint missing", "boat", b.id, "tag", tag, "err", errNoWaypoint)
		return false
	}
	if err := b.mover.MoveTo(p); err != nil {
		b.log.Warn("boat move failed", "boat", b.id, "tag", tag, "err", err)
		return false
	}
	return true
}

func (b *Boat) setState(next State) {
	prev := b.state
	b.state = next
	if b.onState != nil {
		b.onState(prev, next)
	}
}
