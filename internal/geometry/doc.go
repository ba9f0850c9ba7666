// Package geometry normalizes traced mask outlines into valid, flat polygon lists.
//
// All geometry is expressed with github.com/paulmach/orb types. The package
// provides the transforms applied to every label's outline, in this order:
//
//  1. Simplify: optional Douglas-Peucker point reduction per ring
//  2. ToPercentage: pixel space to percentage-of-image space
//  3. MakeValid: self-intersection and spike repair
//  4. Flatten: reduce any polygon, multi-polygon, collection or sequence to []orb.Polygon
//
// Collect gathers a plain sequence of geometries into one orb value before
// step 1. PolygonWKT and ParseWKT convert polygons to and from well-known text.
//
// # Orientation
//
// Rings are closed (first point equals last point). After MakeValid, shells
// have positive signed area (orb.CCW) and holes negative signed area (orb.CW).
// Mask coordinates grow downward on Y, so a CCW shell appears clockwise on screen.
//
// # Errors
//
// Values that are neither an orb geometry nor a sequence of them are reported
// as *TypeError, which wraps ErrNotGeometry:
//
//	polygons, err := geometry.Flatten(v)
//	if errors.Is(err, geometry.ErrNotGeometry) {
//	    // v contained something that is not geometry
//	}
package geometry
