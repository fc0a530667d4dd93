package sim

import (
	"github.com/Garsondee/Pursuit-Sense/internal/geom"
	"github.com/Garsondee/Pursuit-Sense/internal/perception"
)

// sceneView is the world as perception sees it.
type sceneView struct {
	w *World
}

var _ perception.Scene = (*sceneView)(nil)

func (s *sceneView) Target() (perception.Target, bool) {
	t := s.w.target
	if t == nil || !t.alive {
		return perception.Target{}, false
	}
	return perception.Target{Location: t.body.Location(), Threatened: t.threatened}, true
}

// LineOfSight is blocked by walls only. Chasms and the ferry lane are open.
func (s *sceneView) LineOfSight(from, to geom.Vec3) bool {
	return geom.HasLineOfSight(from, to, s.w.walls)
}

func (s *sceneView) FleePoints() []geom.Vec3 { return s.w.flee }

func (s *sceneView) Collectibles() []perception.Collectible {
	now := s.w.clock.Now()
	out := make([]perception.Collectible, len(s.w.collectibles))
	for i, c := range s.w.collectibles {
		out[i] = perception.Collectible{Location: c.loc, OnCooldown: now < c.cooldownUntil}
	}
	return out
}
