package geometry

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// EmptyPolygonWKT is written for polygons without an exterior ring.
const EmptyPolygonWKT = "POLYGON EMPTY"

// PolygonWKT returns the well-known text of p. An empty polygon is always
// written as EmptyPolygonWKT, never as an empty geometry collection.
func PolygonWKT(p orb.Polygon) string {
	if isEmptyPolygon(p) {
		return EmptyPolygonWKT
	}
	return wkt.MarshalString(p)
}

// ParseWKT parses polygon well-known text as written by PolygonWKT.
func ParseWKT(s string) (orb.Polygon, error) {
	if strings.EqualFold(strings.TrimSpace(s), EmptyPolygonWKT) {
		return orb.Polygon{}, nil
	}
	p, err := wkt.UnmarshalPolygon(s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse polygon WKT: %w", err)
	}
	return p, nil
}
