package config

import (
	"fmt"
	"strings"
)

type problems []string

func (p *problems) fail(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(p, "; "))
}

// Validate checks cross-field consistency of the whole file. Every problem is
// reported, wrapped in ErrInvalid.
func (c *Config) Validate() error {
	var p problems
	c.Tuning.check(&p)
	c.Scenario.check(&p)
	return p.err()
}

// Validate checks the tuning alone, for hosts that build their own layout.
func (t Tuning) Validate() error {
	var p problems
	t.check(&p)
	return p.err()
}

func (t Tuning) check(p *problems) {
	fail := p.fail

	f := t.Follower
	if f.MaxSpeed <= 0 {
		fail("follower.max_speed must be positive")
	}
	if f.MinSpeed < 0 || f.MinSpeed > f.MaxSpeed {
		fail("follower.min_speed must be in [0, max_speed]")
	}
	if f.SlowDownDistance < 0 || f.AcceptanceRadius < 0 || f.JumpImminentRadius < 0 || f.LandingRadius <= 0 {
		fail("follower radii must not be negative and landing_radius must be positive")
	}
	for name, v := range map[string]float64{"launch_alignment": f.LaunchAlignment, "landing_alignment": f.LandingAlignment} {
		if v <= 0 || v > 1 {
			fail("follower.%s must be in (0, 1]", name)
		}
	}
	if f.Gravity <= 0 || f.JumpApexHeight <= 0 {
		fail("follower.gravity and follower.jump_apex_height must be positive")
	}

	pc := t.Perception
	if pc.Interval <= 0 {
		fail("perception.interval must be positive")
	}
	if pc.Jitter < 0 || pc.Jitter >= pc.Interval {
		fail("perception.jitter must be in [0, interval)")
	}
	if pc.LKPValidity < 0 || pc.DetectionRadius <= 0 || pc.DetectionHalfLength <= 0 {
		fail("perception detection sizes must be positive")
	}

	if t.Group.NoLOSDelay <= 0 {
		fail("group.no_los_delay must be positive")
	}
	if t.Group.LockSeconds < 0 {
		fail("group.lock_seconds must not be negative")
	}

	w := t.World
	if w.TickRate <= 0 {
		fail("world.tick_rate must be positive")
	}
	if w.RespawnDelay < 0 || w.CatchRadius <= 0 || w.PickupRadius <= 0 || w.CollectibleCooldown < 0 {
		fail("world timings and radii are out of range")
	}
	if w.TargetMaxSpeed <= 0 || w.BoatMaxSpeed <= 0 {
		fail("world target and boat speeds must be positive")
	}
}

func (s Scenario) check(p *problems) {
	fail := p.fail

	if s.Width <= 0 || s.Height <= 0 {
		fail("scenario size must be positive")
	}
	for i, r := range append(append([]Rect{}, s.Walls...), s.Chasms...) {
		if r[0] >= r[2] || r[1] >= r[3] {
			fail("scenario rect %d has min >= max", i)
		}
	}
	if len(s.Spawns) == 0 {
		fail("scenario.spawns must not be empty")
	}
	if len(s.Target.Route) < 2 {
		fail("scenario.target.route needs at least two points")
	}
	for i, win := range s.Target.ThreatWindows {
		if win.End <= win.Start {
			fail("scenario.target.threat_windows[%d] is empty", i)
		}
	}
	if fr := s.Ferry; fr != nil {
		if fr.BridgeCycle <= 0 || fr.BridgeUpSeconds <= 0 || fr.BridgeUpSeconds > fr.BridgeCycle {
			fail("scenario.ferry bridge timing is out of range")
		}
		if fr.UnloadSeconds < 0 || fr.RespawnDelay < 0 {
			fail("scenario.ferry timings must not be negative")
		}
	}
}
