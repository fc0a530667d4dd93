// Package nav follows precomputed paths: it steers an agent along ground
// segments, aligns it before and after jump links, and launches it across
// jump links on a ballistic arc.
package nav

import (
	"errors"
	"fmt"

	"github.com/Garsondee/Pursuit-Sense/internal/geom"
)

// ErrInvalidPath is returned when a path has fewer than two points.
var ErrInvalidPath = errors.New("nav: invalid path")

// LinkType tags how the edge leaving a point is traversed.
type LinkType uint8

const (
	LinkGround LinkType = iota // steer along the ground
	LinkJump                   // ballistic arc to the next point
)

func (l LinkType) String() string {
	switch l {
	case LinkGround:
		return "ground"
	case LinkJump:
		return "jump"
	default:
		return "unknown"
	}
}

// PathPoint is one point of a path.
type PathPoint struct {
	Location geom.Vec3
	Link     LinkType
}

// Ground is shorthand for a ground-tagged point.
func Ground(p geom.Vec3) PathPoint { return PathPoint{Location: p, Link: LinkGround} }

// Jump is shorthand for a jump-tagged point.
func Jump(p geom.Vec3) PathPoint { return PathPoint{Location: p, Link: LinkJump} }

// Path is an ordered, immutable sequence of points.
type Path struct {
	points []PathPoint
}

// NewPath copies points into a Path.
func NewPath(points []PathPoint) (*Path, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: %d points", ErrInvalidPath, len(points))
	}
	cp := make([]PathPoint, len(points))
	copy(cp, points)
	return &Path{points: cp}, nil
}

// Len returns the number of points.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.points)
}

// Point returns point i. It panics on an out-of-range index like a slice.
func (p *Path) Point(i int) PathPoint {
	return p.points[i]
}

// Points returns a copy of the points.
func (p *Path) Points() []PathPoint {
	if p == nil {
		return nil
	}
	cp := make([]PathPoint, len(p.points))
	copy(cp, p.points)
	return cp
}

// Last returns the final point.
func (p *Path) Last() PathPoint {
	return p.points[len(p.points)-1]
}

// isJumpStart reports whether the edge leaving point i is a jump link. A jump
// tag on the final point has nowhere to go and counts as ground.
func (p *Path) isJumpStart(i int) bool {
	return i >= 0 && i+1 < len(p.points) && p.points[i].Link == LinkJump
}
