package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// ToPercentage maps every point from pixel space to percentage space.
//
// A point (x, y) becomes (x / width × 100, y / height × 100). The transform
// works on any orb geometry (polygons, multi-polygons, collections) without
// changing ring structure or point counts. The input is not modified.
//
// width and height must be positive.
func ToPercentage(g orb.Geometry, width, height int) orb.Geometry {
	w, h := float64(width), float64(height)
	return transform(g, func(p orb.Point) orb.Point {
		return orb.Point{p[0] / w * 100, p[1] / h * 100}
	})
}

// ToPixel is the inverse of ToPercentage: (x × width / 100, y × height / 100).
func ToPixel(g orb.Geometry, width, height int) orb.Geometry {
	w, h := float64(width), float64(height)
	return transform(g, func(p orb.Point) orb.Point {
		return orb.Point{p[0] * w / 100, p[1] * h / 100}
	})
}

// transform applies proj to a copy of g; orb/project rewrites in place.
func transform(g orb.Geometry, proj orb.Projection) orb.Geometry {
	if g == nil {
		return nil
	}
	return project.Geometry(orb.Clone(g), proj)
}
