package perception

import (
	"math"
	"math/rand"

	"github.com/Garsondee/Pursuit-Sense/internal/geom"
)

// BestFleePoint scores each candidate by its distance from the target plus
// the angle between the agent's heading to the target and to the candidate,
// in degrees times angleWeight. The highest score wins; on a tie the earlier
// candidate is kept.
func BestFleePoint(self, target geom.Vec3, candidates []geom.Vec3, angleWeight float64) (geom.Vec3, bool) {
	best := math.Inf(-1)
	var out geom.Vec3
	found := false
	toTarget := target.Sub(self)
	for _, c := range candidates {
		score := geom.Dist(c, target) + geom.AngleBetweenDeg(toTarget, c.Sub(self))*angleWeight
		if score > best {
			best = score
			out = c
			found = true
		}
	}
	return out, found
}

// PickCollectible returns a uniformly random collectible that is not on
// cooldown and at least minDist from self. Candidates are drawn without
// replacement until one qualifies.
func PickCollectible(rng *rand.Rand, self geom.Vec3, pool []Collectible, minDist float64) (geom.Vec3, bool) {
	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	for len(idx) > 0 {
		k := rng.Intn(len(idx))
		c := pool[idx[k]]
		if !c.OnCooldown && (minDist <= 0 || geom.PlanarDist(self, c.Location) >= minDist) {
			return c.Location, true
		}
		idx[k] = idx[len(idx)-1]
		idx = idx[:len(idx)-1]
	}
	return geom.Vec3{}, false
}
