package geometry

import (
	"iter"
	"slices"

	"github.com/paulmach/orb"
)

// Flatten reduces a geometry, or a sequence of geometries, to a flat list of
// non-empty polygons in depth-first order.
//
//   - orb.Polygon: the polygon itself
//   - orb.MultiPolygon: its members in order
//   - orb.Collection: each member flattened, results concatenated
//   - []orb.Geometry, []orb.Polygon, []any, iter.Seq[orb.Geometry]: each
//     element flattened in iteration order
//
// Empty polygons and non-polygon kinds (points, lines, rings, bounds) are
// dropped. Any other value, at any depth, yields a *TypeError.
func Flatten(v any) ([]orb.Polygon, error) {
	switch g := v.(type) {
	case orb.Polygon:
		if isEmptyPolygon(g) {
			return nil, nil
		}
		return []orb.Polygon{g}, nil
	case orb.MultiPolygon:
		polygons := make([]orb.Polygon, 0, len(g))
		for _, p := range g {
			if !isEmptyPolygon(p) {
				polygons = append(polygons, p)
			}
		}
		return polygons, nil
	case orb.Collection:
		return flattenEach(v, slices.Values([]orb.Geometry(g)))
	case []orb.Geometry:
		return flattenEach(v, slices.Values(g))
	case []orb.Polygon:
		return flattenEach(v, slices.Values(g))
	case []any:
		return flattenEach(v, slices.Values(g))
	case iter.Seq[orb.Geometry]:
		return flattenEach(v, g)
	case orb.Point, orb.MultiPoint, orb.LineString, orb.MultiLineString, orb.Ring, orb.Bound:
		return nil, nil
	default:
		return nil, notGeometry(v)
	}
}

func flattenEach[T any](src any, seq iter.Seq[T]) ([]orb.Polygon, error) {
	var polygons []orb.Polygon
	for g := range seq {
		found, err := Flatten(g)
		if err != nil {
			return nil, &TypeError{Value: src, Err: err}
		}
		polygons = append(polygons, found...)
	}
	return polygons, nil
}

func isEmptyPolygon(p orb.Polygon) bool {
	return len(p) == 0 || len(p[0]) == 0
}

// Collect turns a geometry group into a single orb geometry so it can be
// simplified and rescaled as one value.
//
// An orb geometry is returned as is. []orb.Polygon becomes an orb.MultiPolygon;
// []orb.Geometry, []any and iter.Seq[orb.Geometry] become an orb.Collection,
// collecting nested sequences recursively. Any other value yields a *TypeError.
func Collect(v any) (orb.Geometry, error) {
	switch g := v.(type) {
	case orb.Geometry:
		return g, nil
	case []orb.Polygon:
		return orb.MultiPolygon(slices.Clone(g)), nil
	case []orb.Geometry:
		return collectEach(v, slices.Values(g))
	case []any:
		return collectEach(v, slices.Values(g))
	case iter.Seq[orb.Geometry]:
		return collectEach(v, g)
	default:
		return nil, notGeometry(v)
	}
}

func collectEach[T any](src any, seq iter.Seq[T]) (orb.Geometry, error) {
	out := orb.Collection{}
	for g := range seq {
		member, err := Collect(g)
		if err != nil {
			return nil, &TypeError{Value: src, Err: err}
		}
		out = append(out, member)
	}
	return out, nil
}
