// Package simclock provides the logical simulation clock and the cancellable
// one-shot deadlines checked against it. Time is in seconds since the start
// of the simulation; nothing here reads wall-clock time.
package simclock

// Clock reports the current simulation time.
type Clock interface {
	Now() float64
}

// Logical is a manually advanced clock. The zero value starts at t=0.
type Logical struct {
	now float64
}

// NewLogical returns a clock starting at t.
func NewLogical(t float64) *Logical {
	return &Logical{now: t}
}

// Now implements Clock.
func (c *Logical) Now() float64 {
	return c.now
}

// Advance moves the clock forward by dt seconds. Negative steps are ignored.
func (c *Logical) Advance(dt float64) {
	if dt > 0 {
		c.now += dt
	}
}

// Set jumps the clock to t. Used by tests to reproduce exact timestamps.
func (c *Logical) Set(t float64) {
	c.now = t
}

// Func adapts a plain function to Clock.
type Func func() float64

// Now implements Clock.
func (f Func) Now() float64 { return f() }
