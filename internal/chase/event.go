package chase

import "fmt"

// EventKind names a group state change.
type EventKind uint8

const (
	EventJoin EventKind = iota
	EventJoinRejected
	EventLOSGain
	EventLOSLoss
	EventArmed
	EventCanceled
	EventDissolved
	EventLocked
)

func (k EventKind) String() string {
	switch k {
	case EventJoin:
		return "join"
	case EventJoinRejected:
		return "join_rejected"
	case EventLOSGain:
		return "los_gain"
	case EventLOSLoss:
		return "los_loss"
	case EventArmed:
		return "armed"
	case EventCanceled:
		return "canceled"
	case EventDissolved:
		return "dissolved"
	case EventLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// Event is published to the coordinator's observer after each change.
type Event struct {
	Kind   EventKind
	Member MemberID // empty for group-wide events
	Time   float64  // clock time of the change
	At     float64  // deadline or lock expiry, when relevant
	Size   int      // members after the change
	LOS    int      // LOS members after the change
}

func (e Event) String() string {
	switch e.Kind {
	case EventArmed:
		return fmt.Sprintf("at=%.2f size=%d", e.At, e.Size)
	case EventLocked:
		return fmt.Sprintf("until=%.2f", e.At)
	default:
		return fmt.Sprintf("size=%d los=%d", e.Size, e.LOS)
	}
}

// Observer receives events synchronously.
type Observer func(Event)
