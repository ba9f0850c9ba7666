package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// SimplifyTolerance returns the Douglas-Peucker distance used for a mask
// sampled at gridResolution: one pixel diagonal per grid cell.
func SimplifyTolerance(gridResolution float64) float64 {
	return math.Sqrt2 * gridResolution
}

// Simplify reduces the point count of every ring in g with Douglas-Peucker.
//
// The rings of a polygon or multi-polygon are simplified as one group, one
// ring at a time. A simplified ring is kept only when it still has three
// distinct points, neither crosses nor touches itself, shares no point with
// any other ring of the group and leaves every containment between rings
// as it was. Otherwise the ring keeps its original points, so a valid group
// stays valid. Other geometry is simplified directly. A tolerance of zero or
// less returns g unchanged. The input is not modified.
func Simplify(g orb.Geometry, tolerance float64) orb.Geometry {
	if tolerance <= 0 || g == nil {
		return g
	}

	switch g := g.(type) {
	case orb.Polygon:
		return simplifyGroup([]orb.Polygon{g}, tolerance)[0]
	case orb.MultiPolygon:
		return orb.MultiPolygon(simplifyGroup(g, tolerance))
	case orb.Collection:
		out := make(orb.Collection, len(g))
		for i, m := range g {
			out[i] = Simplify(m, tolerance)
		}
		return out
	case orb.Ring:
		if s, ok := simplifyRing(g, tolerance); ok {
			return s
		}
		return g.Clone()
	default:
		return simplify.DouglasPeucker(tolerance).Simplify(orb.Clone(g))
	}
}

func simplifyGroup(polygons []orb.Polygon, tolerance float64) []orb.Polygon {
	type ref struct{ polygon, ring int }

	out := make([]orb.Polygon, len(polygons))
	var refs []ref
	for i, p := range polygons {
		out[i] = make(orb.Polygon, len(p))
		for j, r := range p {
			out[i][j] = r.Clone()
			refs = append(refs, ref{i, j})
		}
	}

	for _, self := range refs {
		current := out[self.polygon][self.ring]
		candidate, ok := simplifyRing(current, tolerance)
		if !ok {
			continue
		}
		for _, other := range refs {
			if other != self && !sameTopology(current, candidate, out[other.polygon][other.ring]) {
				ok = false
				break
			}
		}
		if ok {
			out[self.polygon][self.ring] = candidate
		}
	}
	return out
}

// simplifyRing returns the simplified ring when it dropped points and is
// still a simple ring.
func simplifyRing(r orb.Ring, tolerance float64) (orb.Ring, bool) {
	s := simplify.DouglasPeucker(tolerance).Ring(r.Clone())
	if len(s) == len(r) || len(openPoints(s)) < 3 || !isSimpleRing(s) {
		return nil, false
	}
	return s, true
}

// sameTopology reports whether replacing ring with candidate keeps its
// relation to other: no contact between the two, and containment either
// way unchanged.
func sameTopology(ring, candidate, other orb.Ring) bool {
	if !ring.Bound().Intersects(other.Bound()) {
		return true
	}
	if ringsMeet(candidate, other) {
		return false
	}
	return ringWithin(candidate, other) == ringWithin(ring, other) &&
		ringWithin(other, candidate) == ringWithin(other, ring)
}
