package geom

import "math"

// Rect is an axis-aligned rectangle on the ground plane. Walls built from
// Rects are treated as infinitely tall.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Contains reports whether p lies inside r (planar).
func (r Rect) Contains(p Vec3) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Center returns the planar midpoint of r.
func (r Rect) Center() Vec3 {
	return Vec3{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

// HasLineOfSight returns true if the planar segment a→b does not intersect
// any of the rectangles.
func HasLineOfSight(a, b Vec3, walls []Rect) bool {
	for _, w := range walls {
		if SegmentHitsRect(a, b, w) {
			return false
		}
	}
	return true
}

// SegmentHitsRect checks if the planar segment a→b intersects r.
func SegmentHitsRect(a, b Vec3, r Rect) bool {
	_, hit := segmentRectHitT(a.X, a.Y, b.X, b.Y, r)
	return hit
}

// segmentRectHitT returns the first segment parameter t in [0,1] where the
// line from (ox,oy)->(ex,ey) enters r. The bool is false when no hit exists.
func segmentRectHitT(ox, oy, ex, ey float64, r Rect) (float64, bool) {
	dx := ex - ox
	dy := ey - oy

	tMin := 0.0
	tMax := 1.0

	// X slab
	if math.Abs(dx) < 1e-12 {
		if ox < r.MinX || ox > r.MaxX {
			return 0, false
		}
	} else {
		invD := 1.0 / dx
		t1 := (r.MinX - ox) * invD
		t2 := (r.MaxX - ox) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	// Y slab
	if math.Abs(dy) < 1e-12 {
		if oy < r.MinY || oy > r.MaxY {
			return 0, false
		}
	} else {
		invD := 1.0 / dy
		t1 := (r.MinY - oy) * invD
		t2 := (r.MaxY - oy) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	if tMax < 0 || tMin > 1 {
		return 0, false
	}
	return tMin, true
}

// SphereSweepHits reports whether a sphere of radius swept from a to b
// touches point p.
func SphereSweepHits(a, b Vec3, radius float64, p Vec3) bool {
	return DistToSegment(p, a, b) <= radius
}
