package geom

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Plane is an origin point and a unit normal. Two planes are the same when
// their normals agree component-wise and the other origin lies on this
// plane, both within a Tolerance.
type Plane struct {
	Origin r3.Vec `json:"origin"`
	Normal r3.Vec `json:"normal"`
}

// NewPlane normalizes normal and returns the plane through origin. It
// reports false when the normal has no usable length.
func NewPlane(origin, normal r3.Vec, tol Tolerance) (Plane, bool) {
	n := r3.Norm(normal)
	if !(n >= tol.Epsilon()) || !IsFinite(normal) || !IsFinite(origin) {
		return Plane{}, false
	}
	return Plane{Origin: origin, Normal: r3.Scale(1/n, normal)}, true
}

// SignedDistance returns the distance from p to the plane, positive on the
// side the normal points to.
func (p Plane) SignedDistance(q r3.Vec) float64 {
	return r3.Dot(p.Normal, r3.Sub(q, p.Origin))
}

// Matches reports whether the plane through origin with the given normal is
// this plane within tol.
func (p Plane) Matches(origin, normal r3.Vec, tol Tolerance) bool {
	return tol.VecEqual(p.Normal, normal) && tol.IsZero(p.SignedDistance(origin))
}

// Equal reports whether q describes the same plane as p within tol.
func (p Plane) Equal(q Plane, tol Tolerance) bool {
	return p.Matches(q.Origin, q.Normal, tol)
}

func (p Plane) String() string {
	return fmt.Sprintf("plane(o=%v n=%v)", p.Origin, p.Normal)
}
