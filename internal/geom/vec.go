// Package geom holds the small amount of vector math the navigation and
// perception code shares. Z is up; "planar" means the XY plane.
package geom

import "math"

const epsilon = 1e-9

// Vec3 is a world-space position or direction.
type Vec3 struct {
	X, Y, Z float64
}

// V is shorthand for constructing a Vec3.
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 {
	return Vec3{a.X * s, a.Y * s, a.Z * s}
}
func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Len returns the euclidean length.
func (a Vec3) Len() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

// Planar drops the vertical component.
func (a Vec3) Planar() Vec3 {
	return Vec3{X: a.X, Y: a.Y}
}

// Normalize returns the unit vector, or the zero vector when a is too short
// to have a direction.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l < epsilon {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// IsZero reports whether every component is within epsilon of zero.
func (a Vec3) IsZero() bool {
	return math.Abs(a.X) < epsilon && math.Abs(a.Y) < epsilon && math.Abs(a.Z) < epsilon
}

// Dist returns the 3D distance between a and b.
func Dist(a, b Vec3) float64 {
	return b.Sub(a).Len()
}

// PlanarDist returns the distance between a and b ignoring height.
func PlanarDist(a, b Vec3) float64 {
	return b.Sub(a).Planar().Len()
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// AngleBetweenDeg returns the unsigned angle between two directions in
// degrees. A zero-length input yields 90, the angle of the zero dot product.
func AngleBetweenDeg(a, b Vec3) float64 {
	d := a.Normalize().Dot(b.Normalize())
	d = math.Max(-1, math.Min(1, d))
	return math.Acos(d) * 180 / math.Pi
}

// DistToSegment returns the distance from p to the segment a→b.
func DistToSegment(p, a, b Vec3) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < epsilon {
		return Dist(p, a)
	}
	t := Clamp01(p.Sub(a).Dot(ab) / l2)
	return Dist(p, a.Add(ab.Scale(t)))
}
