package geometry

import (
	"errors"
	"fmt"
)

// ErrNotGeometry is the root cause of every TypeError.
var ErrNotGeometry = errors.New("not a geometry or sequence of geometries")

// TypeError reports a value that MakeValid or Flatten cannot interpret as geometry.
//
// Value is the offending value. When the failure was found inside a sequence,
// Value is the sequence and Err is the error raised for the failing element,
// so the chain names every level down to ErrNotGeometry.
type TypeError struct {
	Value any
	Err   error
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("non-geometry object detected: %v (%T): %v", e.Value, e.Value, e.Err)
}

func (e *TypeError) Unwrap() error {
	return e.Err
}

func notGeometry(v any) error {
	return &TypeError{Value: v, Err: ErrNotGeometry}
}
