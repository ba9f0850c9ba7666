package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// degenerateArea is the relative area below which a loop counts as a spike.
const degenerateArea = 1e-10

// openPoints returns the distinct vertices of r in order, without the
// closing point and without consecutive duplicates.
func openPoints(r orb.Ring) []orb.Point {
	pts := make([]orb.Point, 0, len(r))
	for _, p := range r {
		if len(pts) > 0 && pts[len(pts)-1] == p {
			continue
		}
		pts = append(pts, p)
	}
	for len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// closeRing copies pts into a ring whose last point repeats the first.
func closeRing(pts []orb.Point) orb.Ring {
	r := make(orb.Ring, 0, len(pts)+1)
	r = append(r, pts...)
	return append(r, pts[0])
}

func reversed(r orb.Ring) orb.Ring {
	out := make(orb.Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

// signedArea is positive for counter-clockwise rings, matching orb.Ring.Orientation.
func signedArea(r orb.Ring) float64 {
	if len(r) < 3 {
		return 0
	}
	ox, oy := r[0][0], r[0][1]
	var sum float64
	for i := 1; i < len(r)-1; i++ {
		sum += (r[i][0]-ox)*(r[i+1][1]-oy) - (r[i+1][0]-ox)*(r[i][1]-oy)
	}
	return sum / 2
}

// isDegenerate reports rings with fewer than three distinct vertices or
// an area that is negligible next to their extent.
func isDegenerate(r orb.Ring) bool {
	if len(openPoints(r)) < 3 {
		return true
	}
	b := r.Bound()
	extent := math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1])
	return math.Abs(signedArea(r)) <= degenerateArea*extent*extent
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

// onSegment reports whether p lies exactly on the closed segment ab.
func onSegment(p, a, b orb.Point) bool {
	if cross(a, b, p) != 0 {
		return false
	}
	return p[0] >= math.Min(a[0], b[0]) && p[0] <= math.Max(a[0], b[0]) &&
		p[1] >= math.Min(a[1], b[1]) && p[1] <= math.Max(a[1], b[1])
}

func boxesOverlap(a1, a2, b1, b2 orb.Point) bool {
	return math.Max(a1[0], a2[0]) >= math.Min(b1[0], b2[0]) &&
		math.Max(b1[0], b2[0]) >= math.Min(a1[0], a2[0]) &&
		math.Max(a1[1], a2[1]) >= math.Min(b1[1], b2[1]) &&
		math.Max(b1[1], b2[1]) >= math.Min(a1[1], a2[1])
}

// intersections returns the points shared by segments a1a2 and b1b2.
// Endpoints lying on the other segment are returned as-is so that
// touching vertices compare equal; a proper crossing yields one
// computed point.
func intersections(a1, a2, b1, b2 orb.Point) []orb.Point {
	if !boxesOverlap(a1, a2, b1, b2) {
		return nil
	}

	var out []orb.Point
	for _, p := range [...]orb.Point{b1, b2} {
		if onSegment(p, a1, a2) {
			out = append(out, p)
		}
	}
	for _, p := range [...]orb.Point{a1, a2} {
		if onSegment(p, b1, b2) {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		return out
	}

	dax, day := a2[0]-a1[0], a2[1]-a1[1]
	dbx, dby := b2[0]-b1[0], b2[1]-b1[1]
	d := dax*dby - day*dbx
	if d == 0 {
		return nil
	}
	ex, ey := b1[0]-a1[0], b1[1]-a1[1]
	t := (ex*dby - ey*dbx) / d
	u := (ex*day - ey*dax) / d
	if t <= 0 || t >= 1 || u <= 0 || u >= 1 {
		return nil
	}
	return []orb.Point{{a1[0] + t*dax, a1[1] + t*day}}
}

// isSimpleRing reports whether r neither crosses nor touches itself.
func isSimpleRing(r orb.Ring) bool {
	return len(openPoints(r)) >= 3 && newLinework([]orb.Polygon{{r}}).simple()
}

// ringsMeet reports whether rings a and b share any point.
func ringsMeet(a, b orb.Ring) bool {
	lw := newLinework([]orb.Polygon{{a}, {b}})
	met := false
	lw.eachPair(func(i, j int) bool {
		s, t := lw.segs[i], lw.segs[j]
		if s.ring != t.ring && len(intersections(s.a, s.b, t.a, t.b)) > 0 {
			met = true
		}
		return !met
	})
	return met
}

func onRingBoundary(p orb.Point, r orb.Ring) bool {
	for i := 0; i+1 < len(r); i++ {
		if onSegment(p, r[i], r[i+1]) {
			return true
		}
	}
	return false
}

// ringWithin reports whether inner lies inside outer, judged by the first
// vertex (or edge midpoint) of inner that is not on outer's boundary. The
// answer holds for the whole ring only when the two rings do not cross.
func ringWithin(inner, outer orb.Ring) bool {
	if !outer.Bound().Contains(inner.Bound().Min) || !outer.Bound().Contains(inner.Bound().Max) {
		return false
	}
	for _, p := range inner {
		if !onRingBoundary(p, outer) {
			return planar.RingContains(outer, p)
		}
	}
	for i := 0; i+1 < len(inner); i++ {
		mid := orb.Point{(inner[i][0] + inner[i+1][0]) / 2, (inner[i][1] + inner[i+1][1]) / 2}
		if !onRingBoundary(mid, outer) {
			return planar.RingContains(outer, mid)
		}
	}
	return false
}
