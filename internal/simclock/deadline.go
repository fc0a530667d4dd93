package simclock

// Deadline is a deferred one-shot alarm. It never fires on its own: the owner
// polls Due or Fire once per tick, so arm, cancel and fire are each atomic
// with respect to the tick that calls them.
type Deadline struct {
	at    float64
	armed bool
}

// Arm schedules the deadline at t, replacing any earlier schedule.
func (d *Deadline) Arm(t float64) {
	d.at = t
	d.armed = true
}

// Cancel disarms the deadline. Cancelling an unarmed deadline is a no-op.
func (d *Deadline) Cancel() {
	d.armed = false
	d.at = 0
}

// Armed reports whether the deadline is pending.
func (d *Deadline) Armed() bool {
	return d.armed
}

// At returns the scheduled time and whether one is pending.
func (d *Deadline) At() (float64, bool) {
	return d.at, d.armed
}

// Due reports whether the deadline is armed and now has reached it.
func (d *Deadline) Due(now float64) bool {
	return d.armed && now >= d.at
}

// Fire disarms the deadline and returns true if it was due at now.
func (d *Deadline) Fire(now float64) bool {
	if !d.Due(now) {
		return false
	}
	d.Cancel()
	return true
}

// Remaining returns the seconds left before the deadline, or 0 when unarmed
// or overdue.
func (d *Deadline) Remaining(now float64) float64 {
	if !d.armed || now >= d.at {
		return 0
	}
	return d.at - now
}
