package directive

import (
	"errors"
	"fmt"
	"math"

	"github.com/Garsondee/Pursuit-Sense/internal/geom"
	"github.com/Garsondee/Pursuit-Sense/internal/nav"
)

// ErrNoRoute is returned when a planner cannot produce a path.
var ErrNoRoute = errors.New("directive: no route")

// Planner answers navigation queries with a tagged point sequence.
type Planner interface {
	Plan(from, to geom.Vec3) ([]nav.PathPoint, error)
}

// PlannerFunc adapts a function to Planner.
type PlannerFunc func(from, to geom.Vec3) ([]nav.PathPoint, error)

func (f PlannerFunc) Plan(from, to geom.Vec3) ([]nav.PathPoint, error) { return f(from, to) }

// JumpLink connects the two edges of a chasm. Links are usable both ways.
type JumpLink struct {
	A, B geom.Vec3
}

// LinkPlanner walks straight lines and crosses a chasm through the cheapest
// jump link. Only one chasm crossing per route is supported.
type LinkPlanner struct {
	Chasms []geom.Rect
	Links  []JumpLink
}

// Plan returns from→to, with one jump link spliced in if the straight line
// crosses a chasm.
func (p *LinkPlanner) Plan(from, to geom.Vec3) ([]nav.PathPoint, error) {
	if !p.crossesChasm(from, to) {
		return []nav.PathPoint{nav.Ground(from), nav.Ground(to)}, nil
	}

	best := math.Inf(1)
	var route []nav.PathPoint
	for _, l := range p.Links {
		for _, dir := range [2][2]geom.Vec3{{l.A, l.B}, {l.B, l.A}} {
			launch, landing := dir[0], dir[1]
			if p.crossesChasm(from, launch) || p.crossesChasm(landing, to) {
				continue
			}
			cost := geom.PlanarDist(from, launch) + geom.PlanarDist(launch, landing) + geom.PlanarDist(landing, to)
			if cost < best {
				best = cost
				route = []nav.PathPoint{nav.Ground(from), nav.Jump(launch), nav.Ground(landing), nav.Ground(to)}
			}
		}
	}
	if route == nil {
		return nil, fmt.Errorf("%w: %v -> %v crosses a chasm with no usable link", ErrNoRoute, from, to)
	}
	return route, nil
}

func (p *LinkPlanner) crossesChasm(a, b geom.Vec3) bool {
	for _, c := range p.Chasms {
		if geom.SegmentHitsRect(a, b, c) {
			return true
		}
	}
	return false
}
