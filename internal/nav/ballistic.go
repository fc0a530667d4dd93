package nav

import (
	"errors"
	"math"

	"github.com/Garsondee/Pursuit-Sense/internal/geom"
)

// ErrNoArc is returned when no launch velocity reaches the landing point
// under the configured constraints.
var ErrNoArc = errors.New("nav: no ballistic arc")

// SolveLaunch returns the launch velocity of an arc from `from` to `to` whose
// apex sits apexHeight above the higher endpoint.
func SolveLaunch(from, to geom.Vec3, apexHeight, gravity, maxSpeed float64) (geom.Vec3, error) {
	if gravity <= 0 || apexHeight <= 0 {
		return geom.Vec3{}, ErrNoArc
	}
	apex := math.Max(from.Z, to.Z) + apexHeight
	up := apex - from.Z
	down := apex - to.Z

	vz := math.Sqrt(2 * gravity * up)
	flight := vz/gravity + math.Sqrt(2*down/gravity)
	if flight <= 0 || math.IsNaN(flight) || math.IsInf(flight, 0) {
		return geom.Vec3{}, ErrNoArc
	}

	planar := to.Sub(from).Planar()
	v := planar.Scale(1 / flight)
	v.Z = vz
	if maxSpeed > 0 && v.Len() > maxSpeed {
		return geom.Vec3{}, ErrNoArc
	}
	return v, nil
}
