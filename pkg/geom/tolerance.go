package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultEpsilon is the tolerance used when none is configured.
const DefaultEpsilon = 1.0e-9

// Tolerance is the one numeric tolerance shared by plane matching,
// normal length checks and degenerate triangle detection.
// The zero value behaves like DefaultTolerance.
type Tolerance struct {
	Eps float64
}

// NewTolerance returns a Tolerance with the given epsilon. Non-positive or
// non-finite values fall back to DefaultEpsilon.
func NewTolerance(eps float64) Tolerance {
	if !(eps > 0) || math.IsInf(eps, 0) {
		eps = DefaultEpsilon
	}
	return Tolerance{Eps: eps}
}

// DefaultTolerance returns a Tolerance of DefaultEpsilon.
func DefaultTolerance() Tolerance {
	return Tolerance{Eps: DefaultEpsilon}
}

// Epsilon returns the effective epsilon.
func (t Tolerance) Epsilon() float64 {
	if !(t.Eps > 0) {
		return DefaultEpsilon
	}
	return t.Eps
}

// IsZero reports whether |a| is strictly below epsilon.
func (t Tolerance) IsZero(a float64) bool {
	return math.Abs(a) < t.Epsilon()
}

// Equal reports whether a and b differ by less than epsilon.
func (t Tolerance) Equal(a, b float64) bool {
	return t.IsZero(b - a)
}

// VecEqual compares two vectors component by component.
func (t Tolerance) VecEqual(a, b r3.Vec) bool {
	return t.Equal(a.X, b.X) && t.Equal(a.Y, b.Y) && t.Equal(a.Z, b.Z)
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
