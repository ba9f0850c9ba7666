package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// sideOffset places the two points that classify the sides of a segment,
// as a fraction of the segment length away from its midpoint.
const sideOffset = 1e-7

// segment is one edge of a ring in a polygon group.
type segment struct {
	a, b orb.Point
	ring int // group-wide ring number
	pos  int // edge number within the ring
	n    int // edge count of the ring
}

type ringInfo struct {
	polygon int
	hole    bool
}

// linework holds every ring edge of a group of polygons, bucketed into
// vertical strips so crossing and contact queries only look at nearby edges.
type linework struct {
	segs   []segment
	rings  []ringInfo
	minX   float64
	width  float64
	strips [][]int
}

func newLinework(polygons []orb.Polygon) *linework {
	lw := &linework{}
	for pi, p := range polygons {
		for ri, r := range p {
			id := len(lw.rings)
			lw.rings = append(lw.rings, ringInfo{polygon: pi, hole: ri > 0})

			pts := openPoints(r)
			n := len(pts)
			if n < 2 {
				continue
			}
			for i, a := range pts {
				lw.segs = append(lw.segs, segment{a: a, b: pts[(i+1)%n], ring: id, pos: i, n: n})
			}
		}
	}
	lw.index()
	return lw
}

func (lw *linework) index() {
	if len(lw.segs) == 0 {
		return
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, s := range lw.segs {
		minX = math.Min(minX, math.Min(s.a[0], s.b[0]))
		maxX = math.Max(maxX, math.Max(s.a[0], s.b[0]))
	}

	count := int(math.Sqrt(float64(len(lw.segs)))) + 1
	lw.minX = minX
	lw.width = (maxX - minX) / float64(count)
	if !(lw.width > 0) {
		count, lw.width = 1, 0
	}

	lw.strips = make([][]int, count)
	for i, s := range lw.segs {
		lo, hi := lw.span(s)
		for k := lo; k <= hi; k++ {
			lw.strips[k] = append(lw.strips[k], i)
		}
	}
}

func (lw *linework) strip(x float64) int {
	if lw.width == 0 {
		return 0
	}
	k := int((x - lw.minX) / lw.width)
	return max(0, min(k, len(lw.strips)-1))
}

func (lw *linework) span(s segment) (int, int) {
	return lw.strip(math.Min(s.a[0], s.b[0])), lw.strip(math.Max(s.a[0], s.b[0]))
}

// eachPair calls fn once for every pair i < j of segments that share a
// strip, until fn returns false.
func (lw *linework) eachPair(fn func(i, j int) bool) {
	mark := make([]int, len(lw.segs))
	for i, s := range lw.segs {
		lo, hi := lw.span(s)
		for k := lo; k <= hi; k++ {
			for _, j := range lw.strips[k] {
				if j <= i || mark[j] == i+1 {
					continue
				}
				mark[j] = i + 1
				if !fn(i, j) {
					return
				}
			}
		}
	}
}

// simple reports whether no two edges of the group meet, apart from
// neighbouring edges of one ring at their shared vertex.
func (lw *linework) simple() bool {
	ok := true
	lw.eachPair(func(i, j int) bool {
		s, t := lw.segs[i], lw.segs[j]
		for _, x := range intersections(s.a, s.b, t.a, t.b) {
			if !joint(x, s, t) {
				ok = false
				return false
			}
		}
		return true
	})
	return ok
}

// joint reports whether x is the vertex where consecutive edges s and t of
// the same ring meet.
func joint(x orb.Point, s, t segment) bool {
	if s.ring != t.ring {
		return false
	}
	return ((s.pos+1)%s.n == t.pos && x == s.b) || ((t.pos+1)%t.n == s.pos && x == s.a)
}

// noded splits every edge at each point it shares with another edge and
// returns the pieces in edge order. Pieces that coincide are returned once.
func (lw *linework) noded() [][2]orb.Point {
	cuts := make([][]orb.Point, len(lw.segs))
	lw.eachPair(func(i, j int) bool {
		s, t := lw.segs[i], lw.segs[j]
		for _, x := range intersections(s.a, s.b, t.a, t.b) {
			if x != s.a && x != s.b {
				cuts[i] = append(cuts[i], x)
			}
			if x != t.a && x != t.b {
				cuts[j] = append(cuts[j], x)
			}
		}
		return true
	})

	seen := make(map[[2]orb.Point]bool)
	var pieces [][2]orb.Point
	add := func(a, b orb.Point) {
		if a == b {
			return
		}
		key := [2]orb.Point{a, b}
		if b[0] < a[0] || (b[0] == a[0] && b[1] < a[1]) {
			key = [2]orb.Point{b, a}
		}
		if seen[key] {
			return
		}
		seen[key] = true
		pieces = append(pieces, [2]orb.Point{a, b})
	}

	for i, s := range lw.segs {
		c := cuts[i]
		sort.Slice(c, func(x, y int) bool {
			return planar.DistanceSquared(s.a, c[x]) < planar.DistanceSquared(s.a, c[y])
		})
		prev := s.a
		for _, x := range c {
			if x != prev {
				add(prev, x)
				prev = x
			}
		}
		add(prev, s.b)
	}
	return pieces
}

// inside reports whether q is covered by the group: inside the exterior
// ring of some polygon and outside all of that polygon's holes, each ring
// read with the even-odd rule. q must not lie on any edge.
func (lw *linework) inside(q orb.Point) bool {
	if len(lw.strips) == 0 {
		return false
	}

	odd := make(map[int]bool)
	for _, i := range lw.strips[lw.strip(q[0])] {
		s := lw.segs[i]
		if (s.a[0] <= q[0]) == (s.b[0] <= q[0]) {
			continue
		}
		y := s.a[1] + (q[0]-s.a[0])*(s.b[1]-s.a[1])/(s.b[0]-s.a[0])
		if y < q[1] {
			odd[s.ring] = !odd[s.ring]
		}
	}

	shells := make(map[int]bool)
	holed := make(map[int]bool)
	for ring, o := range odd {
		if !o {
			continue
		}
		info := lw.rings[ring]
		if info.hole {
			holed[info.polygon] = true
		} else {
			shells[info.polygon] = true
		}
	}
	for p := range shells {
		if !holed[p] {
			return true
		}
	}
	return false
}

// boundary returns the noded pieces that separate covered from uncovered
// area, directed so the covered side is on the left.
func (lw *linework) boundary() [][2]orb.Point {
	var edges [][2]orb.Point
	for _, piece := range lw.noded() {
		a, b := piece[0], piece[1]
		dx, dy := (b[0]-a[0])*sideOffset, (b[1]-a[1])*sideOffset
		mx, my := (a[0]+b[0])/2, (a[1]+b[1])/2

		left := lw.inside(orb.Point{mx - dy, my + dx})
		right := lw.inside(orb.Point{mx + dy, my - dx})
		switch {
		case left && !right:
			edges = append(edges, [2]orb.Point{a, b})
		case right && !left:
			edges = append(edges, [2]orb.Point{b, a})
		}
	}
	return edges
}

// linkEdges chains directed edges into closed walks. Where several edges
// leave a vertex, the walk takes the first one clockwise from the edge it
// arrived on, which keeps it on the covered corner it is following.
func linkEdges(edges [][2]orb.Point) [][]orb.Point {
	outgoing := make(map[orb.Point][]int, len(edges))
	for i, e := range edges {
		outgoing[e[0]] = append(outgoing[e[0]], i)
	}

	next := func(cur int) int {
		e := edges[cur]
		candidates := outgoing[e[1]]
		if len(candidates) == 1 {
			return candidates[0]
		}
		back := math.Atan2(e[0][1]-e[1][1], e[0][0]-e[1][0])
		best, bestTurn := -1, math.Inf(1)
		for _, c := range candidates {
			out := edges[c]
			turn := math.Mod(back-math.Atan2(out[1][1]-out[0][1], out[1][0]-out[0][0]), 2*math.Pi)
			if turn <= 0 {
				turn += 2 * math.Pi
			}
			if turn < bestTurn {
				best, bestTurn = c, turn
			}
		}
		return best
	}

	used := make([]bool, len(edges))
	var walks [][]orb.Point
	for start := range edges {
		if used[start] {
			continue
		}

		var walk []orb.Point
		for cur := start; ; {
			used[cur] = true
			walk = append(walk, edges[cur][0])
			n := next(cur)
			if n == start {
				walks = append(walks, walk)
				break
			}
			if n < 0 || used[n] {
				break
			}
			cur = n
		}
	}
	return walks
}
