package emu

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned for a coordinate or index outside its region.
var ErrOutOfBounds = errors.New("out of bounds")

// ErrInvalidColor is returned for a color outside the 4-bit domain.
var ErrInvalidColor = errors.New("invalid color")

// DrawError provides context for a rejected drawing call.
type DrawError struct {
	Op   string // Primitive that rejected the call
	X, Y int    // Offending coordinate, or index/color in X
	Err  error  // ErrOutOfBounds or ErrInvalidColor
}

func (e *DrawError) Error() string {
	return fmt.Sprintf("%s(%d, %d): %v", e.Op, e.X, e.Y, e.Err)
}

func (e *DrawError) Unwrap() error {
	return e.Err
}

// BoundsPolicy selects how primitives treat out-of-range arguments.
type BoundsPolicy int

const (
	// PolicyClip drops off-screen pixels and wraps colors to their low
	// nibble. Calls never fail.
	PolicyClip BoundsPolicy = iota
	// PolicyStrict rejects the whole call with a *DrawError before anything
	// is written.
	PolicyStrict
)

func (p BoundsPolicy) String() string {
	switch p {
	case PolicyClip:
		return "clip"
	case PolicyStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParseBoundsPolicy converts a core option value to a policy.
func ParseBoundsPolicy(s string) (BoundsPolicy, error) {
	switch s {
	case "clip", "":
		return PolicyClip, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return PolicyClip, fmt.Errorf("unknown bounds policy %q", s)
	}
}
