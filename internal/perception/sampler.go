// Package perception decides, a few times per second, what an agent knows
// about the target and where it should go because of it.
package perception

import (
	"math"
	"math/rand"

	"github.com/Garsondee/Pursuit-Sense/internal/chase"
	"github.com/Garsondee/Pursuit-Sense/internal/geom"
	"github.com/Garsondee/Pursuit-Sense/internal/logging"
	"github.com/Garsondee/Pursuit-Sense/internal/simclock"
)

// Pose is the sampling agent's current placement.
type Pose interface {
	Location() geom.Vec3
	Yaw() float64
}

// Target is what the scene reports about the tracked entity.
type Target struct {
	Location   geom.Vec3
	Threatened bool
}

// Collectible is one candidate wander point.
type Collectible struct {
	Location   geom.Vec3
	OnCooldown bool
}

// Scene is the world as seen by a sampler.
type Scene interface {
	Target() (Target, bool)
	LineOfSight(from, to geom.Vec3) bool
	FleePoints() []geom.Vec3
	Collectibles() []Collectible
}

// Group is the shared pursuit group a sampler reports into.
type Group interface {
	AddMember(id chase.MemberID) bool
	ReportLOS(id chase.MemberID, hasLOS bool)
}

// Sampler runs one agent's periodic perception.
type Sampler struct {
	id    chase.MemberID
	cfg   Config
	clock simclock.Clock
	rng   *rand.Rand
	log   logging.Logger

	next    simclock.Deadline
	bb      Blackboard
	samples int
}

// NewSampler creates a sampler for agent id. The first sample runs on the
// first Update.
func NewSampler(id chase.MemberID, cfg Config, clock simclock.Clock, rng *rand.Rand, log logging.Logger) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	s := &Sampler{id: id, cfg: cfg, clock: clock, rng: rng, log: logging.OrNop(log)}
	s.next.Arm(clock.Now())
	return s
}

// ID returns the agent the sampler belongs to.
func (s *Sampler) ID() chase.MemberID { return s.id }

// SetConfig replaces the tuning. The current interval is kept.
func (s *Sampler) SetConfig(cfg Config) { s.cfg = cfg }

// Blackboard returns the result of the latest sample.
func (s *Sampler) Blackboard() Blackboard { return s.bb }

// Samples returns how many samples have run.
func (s *Sampler) Samples() int { return s.samples }

// NextAt returns when the next sample is due.
func (s *Sampler) NextAt() float64 {
	at, _ := s.next.At()
	return at
}

// Update samples if the interval has elapsed and reports whether it did.
func (s *Sampler) Update(self Pose, scene Scene, group Group) bool {
	now := s.clock.Now()
	if !s.next.Fire(now) {
		return false
	}
	s.Sample(self, scene, group)
	s.next.Arm(now + s.interval())
	return true
}

func (s *Sampler) interval() float64 {
	iv := s.cfg.Interval
	if s.cfg.Jitter > 0 {
		iv += (s.rng.Float64()*2 - 1) * s.cfg.Jitter
	}
	return math.Max(iv, 0)
}

// Sample runs one perception pass immediately and returns the new blackboard.
func (s *Sampler) Sample(self Pose, scene Scene, group Group) Blackboard {
	s.samples++
	now := s.clock.Now()

	target, ok := scene.Target()
	if !ok {
		s.bb.Forget()
		return s.bb
	}

	loc := self.Location()
	s.bb.HasTarget = true
	s.bb.Threatened = target.Threatened
	s.bb.Detected = s.detects(loc, self.Yaw(), target.Location)
	s.bb.HasLOS = s.bb.Detected && scene.LineOfSight(s.eye(loc), s.eye(target.Location))

	if s.bb.HasLOS {
		s.bb.RecordSighting(target.Location, now+s.cfg.LKPValidity)
	}

	s.bb.Mode, s.bb.Destination = s.selectDestination(loc, target, scene, now)

	if group != nil {
		if s.bb.Mode == ModeChase {
			group.AddMember(s.id)
		}
		group.ReportLOS(s.id, s.bb.HasLOS)
	}
	return s.bb
}

// DetectionSweep returns the start and end of the forward sweep for an agent
// at loc facing yaw.
func (s *Sampler) DetectionSweep(loc geom.Vec3, yaw float64) (start, end geom.Vec3) {
	fwd := geom.Forward(yaw)
	start = loc.Add(fwd.Scale(s.cfg.ForwardOffset))
	end = start.Add(fwd.Scale(2 * s.cfg.DetectionHalfLength))
	return start, end
}

func (s *Sampler) detects(loc geom.Vec3, yaw float64, target geom.Vec3) bool {
	start, end := s.DetectionSweep(loc, yaw)
	return geom.SphereSweepHits(start, end, s.cfg.DetectionRadius, target)
}

func (s *Sampler) eye(p geom.Vec3) geom.Vec3 {
	return p.Add(geom.V(0, 0, s.cfg.EyeHeight))
}

func (s *Sampler) selectDestination(self geom.Vec3, target Target, scene Scene, now float64) (Mode, Destination) {
	switch {
	case target.Threatened:
		p, ok := BestFleePoint(self, target.Location, scene.FleePoints(), s.cfg.FleeAngleWeight)
		return ModeFlee, Destination{Point: p, Valid: ok}
	case s.bb.HasLOS:
		return ModeChase, Destination{Point: target.Location, FollowTarget: true, Valid: true}
	case s.bb.LKPValid(now):
		return ModeChase, Destination{Point: s.bb.LKP, Valid: true}
	default:
		p, ok := PickCollectible(s.rng, self, scene.Collectibles(), s.cfg.MinCollectibleDistance)
		return ModeCollect, Destination{Point: p, Valid: ok}
	}
}
