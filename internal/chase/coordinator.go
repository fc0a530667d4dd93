// Package chase coordinates the shared pursuit group: who is chasing, who
// currently sees the target, and when the group gives up.
//
// Membership is all-or-nothing. Agents join one at a time but only leave
// together, when the group dissolves.
package chase

import (
	"sort"

	"github.com/Garsondee/Pursuit-Sense/internal/logging"
	"github.com/Garsondee/Pursuit-Sense/internal/simclock"
)

// DefaultNoLOSDelay is how long the group may go without any member seeing
// the target before it dissolves.
const DefaultNoLOSDelay = 3.0

// MemberID is a stable agent identity. The coordinator never owns agents.
type MemberID string

// Alive reports whether an agent still exists.
type Alive func(MemberID) bool

// Coordinator is the single shared pursuit group. It is not safe for
// concurrent use; all calls happen inside the simulation tick.
type Coordinator struct {
	clock      simclock.Clock
	noLOSDelay float64
	alive      Alive
	log        logging.Logger
	observer   Observer

	members   map[MemberID]struct{}
	los       map[MemberID]struct{}
	deadline  simclock.Deadline
	lockUntil float64
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithNoLOSDelay sets the dissolution delay.
func WithNoLOSDelay(seconds float64) Option {
	return func(c *Coordinator) { c.noLOSDelay = seconds }
}

// WithAlive installs the liveness lookup consulted before using a member id.
func WithAlive(fn Alive) Option {
	return func(c *Coordinator) { c.alive = fn }
}

// WithLogger sets the operational logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.log = logging.OrNop(l) }
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(c *Coordinator) { c.observer = o }
}

// NewCoordinator returns an empty group reading time from clock.
func NewCoordinator(clock simclock.Clock, opts ...Option) *Coordinator {
	c := &Coordinator{
		clock:      clock,
		noLOSDelay: DefaultNoLOSDelay,
		log:        logging.Nop{},
		members:    make(map[MemberID]struct{}),
		los:        make(map[MemberID]struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetObserver replaces the event observer.
func (c *Coordinator) SetObserver(o Observer) { c.observer = o }

// SetNoLOSDelay changes the delay used for deadlines armed from now on.
func (c *Coordinator) SetNoLOSDelay(seconds float64) { c.noLOSDelay = seconds }

// NoLOSDelay returns the dissolution delay.
func (c *Coordinator) NoLOSDelay() float64 { return c.noLOSDelay }

// AddMember inserts id unless the group is locked. It reports whether id is
// a member afterwards because of this call.
func (c *Coordinator) AddMember(id MemberID) bool {
	if id == "" || !c.isAlive(id) {
		return false
	}
	if c.Locked() {
		c.emit(EventJoinRejected, id, c.lockUntil)
		return false
	}
	if _, ok := c.members[id]; ok {
		return false
	}
	c.members[id] = struct{}{}
	c.emit(EventJoin, id, 0)
	return true
}

// ReportLOS records whether member id currently sees the target. Reports from
// non-members are ignored.
func (c *Coordinator) ReportLOS(id MemberID, hasLOS bool) {
	if !c.IsMember(id) {
		return
	}
	pruned := c.prune()

	if hasLOS {
		if _, ok := c.los[id]; !ok {
			c.los[id] = struct{}{}
			c.emit(EventLOSGain, id, 0)
		}
		if c.deadline.Armed() {
			c.deadline.Cancel()
			c.emit(EventCanceled, id, 0)
		}
		return
	}

	_, had := c.los[id]
	if had {
		delete(c.los, id)
		c.emit(EventLOSLoss, id, 0)
	}
	if (had || pruned) && len(c.los) == 0 {
		c.armIfIdle(id)
	}
}

// Tick fires the dissolution deadline once it is due. The group dissolves only
// if still nobody has line of sight.
func (c *Coordinator) Tick() {
	if !c.deadline.Fire(c.clock.Now()) {
		return
	}
	c.prune()
	if len(c.members) > 0 && len(c.los) == 0 {
		c.log.Info("chase group lost the target", "members", len(c.members))
		c.Dissolve()
	}
}

// Dissolve empties the group and cancels any pending deadline.
func (c *Coordinator) Dissolve() {
	wasActive := len(c.members) > 0 || c.deadline.Armed()
	clear(c.members)
	clear(c.los)
	c.deadline.Cancel()
	if wasActive {
		c.emit(EventDissolved, "", 0)
	}
}

// Lock blocks new members for seconds. Existing members are unaffected.
func (c *Coordinator) Lock(seconds float64) {
	c.lockUntil = c.clock.Now() + seconds
	c.emit(EventLocked, "", c.lockUntil)
}

// Locked reports whether AddMember is currently rejected.
func (c *Coordinator) Locked() bool {
	return c.clock.Now() < c.lockUntil
}

// LockUntil returns the lock expiry time.
func (c *Coordinator) LockUntil() float64 { return c.lockUntil }

// IsMember reports whether id is a live member.
func (c *Coordinator) IsMember(id MemberID) bool {
	if _, ok := c.members[id]; !ok {
		return false
	}
	return c.isAlive(id)
}

// HasLOS reports whether id is a live member that currently sees the target.
func (c *Coordinator) HasLOS(id MemberID) bool {
	if _, ok := c.los[id]; !ok {
		return false
	}
	return c.isAlive(id)
}

// Size returns the number of live members.
func (c *Coordinator) Size() int { return len(c.Members()) }

// Members returns the live members in sorted order.
func (c *Coordinator) Members() []MemberID { return c.sorted(c.members) }

// LOSMembers returns the live members with line of sight, in sorted order.
func (c *Coordinator) LOSMembers() []MemberID { return c.sorted(c.los) }

// DeadlineAt returns the armed dissolution deadline.
func (c *Coordinator) DeadlineAt() (float64, bool) { return c.deadline.At() }

// RemoveMember drops a single member.
//
// Deprecated: membership is all-or-nothing; use Dissolve. Kept for callers
// that predate group dissolution.
func (c *Coordinator) RemoveMember(id MemberID) {
	delete(c.members, id)
	delete(c.los, id)
	for m := range c.members {
		if !c.isAlive(m) {
			delete(c.members, m)
			delete(c.los, m)
		}
	}
}

func (c *Coordinator) armIfIdle(cause MemberID) {
	if len(c.members) == 0 || c.deadline.Armed() {
		return
	}
	at := c.clock.Now() + c.noLOSDelay
	c.deadline.Arm(at)
	c.emit(EventArmed, cause, at)
}

// prune forgets ids whose agents no longer exist and reports whether that
// emptied the LOS set.
func (c *Coordinator) prune() bool {
	if c.alive == nil {
		return false
	}
	hadLOS := len(c.los) > 0
	for id := range c.members {
		if !c.alive(id) {
			delete(c.members, id)
			delete(c.los, id)
		}
	}
	return hadLOS && len(c.los) == 0
}

func (c *Coordinator) isAlive(id MemberID) bool {
	return c.alive == nil || c.alive(id)
}

func (c *Coordinator) sorted(set map[MemberID]struct{}) []MemberID {
	out := make([]MemberID, 0, len(set))
	for id := range set {
		if c.isAlive(id) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (c *Coordinator) emit(kind EventKind, id MemberID, at float64) {
	if c.observer == nil {
		return
	}
	c.observer(Event{
		Kind:   kind,
		Member: id,
		Time:   c.clock.Now(),
		At:     at,
		Size:   len(c.members),
		LOS:    len(c.los),
	})
}
