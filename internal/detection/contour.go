package detection

import (
	"github.com/paulmach/orb"
)

// Mask is a binary raster. Cells reporting Foreground are traced.
type Mask interface {
	Width() int
	Height() int
	Foreground(x, y int) bool
}

// Point is a pixel corner. (0,0) is the top-left corner of the mask.
type Point struct {
	X, Y int
}

// direction of a boundary edge, in clockwise screen order.
type direction int

const (
	east direction = iota
	south
	west
	north
)

// left returns the direction after a left turn on screen (Y grows downward).
func (d direction) left() direction {
	return (d + 3) % 4
}

// edge is one unit side of a foreground pixel that borders background.
// It runs from vertex "from" with the foreground on its right-hand side.
type edge struct {
	from Point
	dir  direction
}

func (e edge) to() Point {
	switch e.dir {
	case east:
		return Point{X: e.from.X + 1, Y: e.from.Y}
	case south:
		return Point{X: e.from.X, Y: e.from.Y + 1}
	case west:
		return Point{X: e.from.X - 1, Y: e.from.Y}
	default:
		return Point{X: e.from.X, Y: e.from.Y - 1}
	}
}

// TraceMask converts the foreground of a mask into polygons.
//
// Each 8-connected component of foreground cells becomes one polygon. The
// boundary follows pixel edges: the cell at (x, y) covers the square
// [x, x+1] × [y, y+1], so a single pixel yields a unit square. Every
// 4-connected background region enclosed by the component becomes a hole.
//
// Returns:
//   - orb.MultiPolygon: one polygon per component, in raster order of each
//     component's first cell. Empty when the mask has no foreground.
//
// # Ring Layout
//
// Rings are closed and hold corner vertices only; collinear points along a
// straight run are dropped. Exterior rings have positive signed area (orb.CCW)
// and holes negative signed area (orb.CW). Rings with fewer than three
// distinct points are discarded.
//
// Where two cells of a component meet only at a corner, the boundary passes
// through that corner twice, so the ring touches itself there. Such rings are
// not valid simple rings; geometry.MakeValid splits them at the shared corner.
func TraceMask(m Mask) orb.MultiPolygon {
	width, height := m.Width(), m.Height()
	components, count := labelComponents(m, width, height)

	edges := make([][]edge, count)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := components[y][x]
			if c < 0 {
				continue
			}
			fg := func(dx, dy int) bool {
				nx, ny := x+dx, y+dy
				return nx >= 0 && nx < width && ny >= 0 && ny < height && components[ny][nx] >= 0
			}
			if !fg(0, -1) {
				edges[c] = append(edges[c], edge{from: Point{X: x, Y: y}, dir: east})
			}
			if !fg(1, 0) {
				edges[c] = append(edges[c], edge{from: Point{X: x + 1, Y: y}, dir: south})
			}
			if !fg(0, 1) {
				edges[c] = append(edges[c], edge{from: Point{X: x + 1, Y: y + 1}, dir: west})
			}
			if !fg(-1, 0) {
				edges[c] = append(edges[c], edge{from: Point{X: x, Y: y + 1}, dir: north})
			}
		}
	}

	polygons := make(orb.MultiPolygon, 0, count)
	for _, componentEdges := range edges {
		var exterior orb.Ring
		var holes []orb.Ring
		for _, ring := range linkRings(componentEdges) {
			if len(ring) < 4 {
				continue
			}
			switch ring.Orientation() {
			case orb.CCW:
				exterior = ring
			case orb.CW:
				holes = append(holes, ring)
			}
		}
		if exterior == nil {
			continue
		}
		polygons = append(polygons, append(orb.Polygon{exterior}, holes...))
	}
	return polygons
}

// labelComponents assigns each foreground cell the index of its 8-connected
// component. Background cells are -1.
func labelComponents(m Mask, width, height int) ([][]int, int) {
	components := make([][]int, height)
	for y := 0; y < height; y++ {
		components[y] = make([]int, width)
		for x := 0; x < width; x++ {
			components[y][x] = -1
		}
	}

	count := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if components[y][x] == -1 && m.Foreground(x, y) {
				floodFill(m, components, x, y, width, height, count)
				count++
			}
		}
	}
	return components, count
}

// floodFill performs iterative flood-fill from a starting point.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on large components. Uses 8-connectivity (includes diagonal neighbors).
func floodFill(m Mask, components [][]int, startX, startY, width, height, id int) {
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if components[p.Y][p.X] != -1 || !m.Foreground(p.X, p.Y) {
			continue
		}

		components[p.Y][p.X] = id

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
}

// linkRings chains the boundary edges of one component into closed rings.
//
// At most vertices exactly one edge leaves. Where two leave, the cells around
// the vertex form a diagonal pair, and the left turn is taken so the two
// diagonal cells stay on the same ring (8-connectivity for the foreground,
// 4-connectivity for the background).
func linkRings(edges []edge) []orb.Ring {
	outgoing := make(map[Point][]int, len(edges))
	for i, e := range edges {
		outgoing[e.from] = append(outgoing[e.from], i)
	}

	used := make([]bool, len(edges))
	next := func(cur edge) int {
		candidates := outgoing[cur.to()]
		if len(candidates) == 1 {
			return candidates[0]
		}
		for _, i := range candidates {
			if edges[i].dir == cur.dir.left() {
				return i
			}
		}
		return -1
	}

	var rings []orb.Ring
	for start := range edges {
		if used[start] {
			continue
		}

		var corners []Point
		cur := start
		for {
			used[cur] = true
			n := next(edges[cur])
			if n < 0 {
				break
			}
			if edges[n].dir != edges[cur].dir {
				corners = append(corners, edges[n].from)
			}
			if n == start || used[n] {
				break
			}
			cur = n
		}

		if len(corners) < 3 {
			continue
		}
		ring := make(orb.Ring, 0, len(corners)+1)
		for _, p := range corners {
			ring = append(ring, orb.Point{float64(p.X), float64(p.Y)})
		}
		rings = append(rings, append(ring, ring[0]))
	}
	return rings
}
