package geometry

import (
	"iter"
	"slices"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MakeValid repairs a geometry, or every member of a sequence of geometries,
// so that each polygon in the result is topologically valid.
//
// Supported inputs:
//   - orb.Polygon: repaired into an orb.Polygon, an orb.MultiPolygon when the
//     repair splits it, or an empty orb.Polygon when nothing with area remains
//   - orb.MultiPolygon: repaired as one group, so members that overlap are
//     merged and the result members never overlap
//   - orb.Collection: every member repaired, returned as an orb.Collection
//   - []orb.Geometry, []orb.Polygon, []any, iter.Seq[orb.Geometry]: every
//     element repaired, returned as an orb.Collection
//   - points, line strings, rings and bounds: returned unchanged
//
// Anything else yields a *TypeError.
//
// # Algorithm
//
// A group that is already valid (closed simple rings with area, holes inside
// their own exterior, no two rings meeting, no polygon inside another) is
// returned as is, with shells turned CCW and holes CW.
//
// Any other group is rebuilt from its covered area. A point is covered when
// it is inside the exterior ring of some polygon and outside every hole of
// that polygon, each ring read with the even-odd rule, so self-crossing
// rings, spikes and holes that stray outside their exterior all resolve.
// All rings are noded against each other, each piece of linework that has
// covered area on exactly one side is kept, and the pieces are chained into
// walks that split at repeated vertices. CCW loops become shells and CW
// loops become holes of the smallest shell containing them. Rebuilt
// polygons are ordered by their top-most, then left-most vertex.
func MakeValid(v any) (orb.Geometry, error) {
	switch g := v.(type) {
	case orb.Polygon:
		return polygonResult(repair([]orb.Polygon{g})), nil
	case orb.MultiPolygon:
		return append(orb.MultiPolygon{}, repair(g)...), nil
	case orb.Collection:
		return makeValidEach(v, slices.Values([]orb.Geometry(g)))
	case []orb.Geometry:
		return makeValidEach(v, slices.Values(g))
	case []orb.Polygon:
		return makeValidEach(v, slices.Values(g))
	case []any:
		return makeValidEach(v, slices.Values(g))
	case iter.Seq[orb.Geometry]:
		return makeValidEach(v, g)
	case orb.Point, orb.MultiPoint, orb.LineString, orb.MultiLineString, orb.Ring, orb.Bound:
		return v.(orb.Geometry), nil
	default:
		return nil, notGeometry(v)
	}
}

func makeValidEach[T any](src any, seq iter.Seq[T]) (orb.Geometry, error) {
	out := orb.Collection{}
	for g := range seq {
		valid, err := MakeValid(g)
		if err != nil {
			return nil, &TypeError{Value: src, Err: err}
		}
		out = append(out, valid)
	}
	return out, nil
}

func polygonResult(polygons []orb.Polygon) orb.Geometry {
	switch len(polygons) {
	case 0:
		return orb.Polygon{}
	case 1:
		return polygons[0]
	default:
		return orb.MultiPolygon(polygons)
	}
}

type shell struct {
	ring  orb.Ring
	area  float64
	holes []orb.Ring
}

func repair(polygons []orb.Polygon) []orb.Polygon {
	if !validGroup(polygons) {
		return rebuild(polygons)
	}

	out := make([]orb.Polygon, len(polygons))
	for i, p := range polygons {
		q := make(orb.Polygon, len(p))
		q[0] = oriented(p[0], orb.CCW)
		for j, h := range p[1:] {
			q[j+1] = oriented(h, orb.CW)
		}
		out[i] = q
	}
	return out
}

// validGroup reports whether polygons can be returned without rebuilding.
func validGroup(polygons []orb.Polygon) bool {
	for _, p := range polygons {
		if len(p) == 0 {
			return false
		}
		for _, r := range p {
			if len(r) < 4 || r[0] != r[len(r)-1] || len(openPoints(r)) != len(r)-1 || isDegenerate(r) {
				return false
			}
		}
	}
	if !newLinework(polygons).simple() {
		return false
	}

	for i, p := range polygons {
		for k, h := range p[1:] {
			if !ringWithin(h, p[0]) {
				return false
			}
			for _, other := range p[k+2:] {
				if ringWithin(h, other) || ringWithin(other, h) {
					return false
				}
			}
		}
		for j, q := range polygons {
			if i != j && ringWithin(q[0], p[0]) && !withinAny(q[0], p[1:]) {
				return false
			}
		}
	}
	return true
}

func withinAny(r orb.Ring, rings []orb.Ring) bool {
	for _, o := range rings {
		if ringWithin(r, o) {
			return true
		}
	}
	return false
}

// rebuild traces the covered area of polygons afresh.
func rebuild(polygons []orb.Polygon) []orb.Polygon {
	var shells []*shell
	var holes []orb.Ring
	for _, walk := range linkEdges(newLinework(polygons).boundary()) {
		for _, loop := range splitLoops(walk) {
			if signedArea(loop) > 0 {
				shells = append(shells, newShell(loop))
			} else {
				holes = append(holes, loop)
			}
		}
	}

	for _, h := range holes {
		if s := containingShell(shells, h); s != nil {
			s.holes = append(s.holes, h)
		}
	}

	corners := make(map[*shell]orb.Point, len(shells))
	for _, s := range shells {
		corners[s] = topLeft(s.ring)
	}
	sort.SliceStable(shells, func(i, j int) bool {
		a, b := corners[shells[i]], corners[shells[j]]
		return a[1] < b[1] || (a[1] == b[1] && a[0] < b[0])
	})

	out := make([]orb.Polygon, 0, len(shells))
	for _, s := range shells {
		out = append(out, append(orb.Polygon{s.ring}, s.holes...))
	}
	return out
}

func newShell(r orb.Ring) *shell {
	r = oriented(r, orb.CCW)
	return &shell{ring: r, area: planar.Area(r)}
}

// containingShell returns the smallest shell that contains r, or nil.
func containingShell(shells []*shell, r orb.Ring) *shell {
	var best *shell
	for _, s := range shells {
		if best != nil && s.area >= best.area {
			continue
		}
		if ringWithin(r, s.ring) {
			best = s
		}
	}
	return best
}

func oriented(r orb.Ring, o orb.Orientation) orb.Ring {
	if r.Orientation() != o {
		return reversed(r)
	}
	return r
}

// topLeft returns the vertex of r with the smallest y, then smallest x.
func topLeft(r orb.Ring) orb.Point {
	best := r[0]
	for _, p := range r[1:] {
		if p[1] < best[1] || (p[1] == best[1] && p[0] < best[0]) {
			best = p
		}
	}
	return best
}

// splitLoops cuts a closed walk at every repeated vertex into loops that
// do not touch themselves, dropping loops without area.
func splitLoops(pts []orb.Point) []orb.Ring {
	if len(pts) < 3 {
		return nil
	}

	var loops []orb.Ring
	stack := make([]orb.Point, 0, len(pts))
	seen := make(map[orb.Point]int, len(pts))
	for i := 0; i <= len(pts); i++ {
		p := pts[i%len(pts)]
		at, ok := seen[p]
		if !ok {
			seen[p] = len(stack)
			stack = append(stack, p)
			continue
		}

		loop := closeRing(stack[at:])
		for _, q := range stack[at+1:] {
			delete(seen, q)
		}
		stack = stack[:at+1]
		if !isDegenerate(loop) {
			loops = append(loops, loop)
		}
	}
	return loops
}
