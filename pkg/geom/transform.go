package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is a 4x3 affine map: three basis columns holding rotation and
// scale, plus a translation. A point p maps to
// p.X*BasisX + p.Y*BasisY + p.Z*BasisZ + Origin.
type Transform struct {
	BasisX r3.Vec `json:"basis_x"`
	BasisY r3.Vec `json:"basis_y"`
	BasisZ r3.Vec `json:"basis_z"`
	Origin r3.Vec `json:"origin"`
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		BasisX: r3.Vec{X: 1},
		BasisY: r3.Vec{Y: 1},
		BasisZ: r3.Vec{Z: 1},
	}
}

// Translation returns a pure translation by v.
func Translation(v r3.Vec) Transform {
	t := Identity()
	t.Origin = v
	return t
}

// Rotation returns a rotation of angle radians about axis through the origin.
// A zero axis yields the identity.
func Rotation(axis r3.Vec, angle float64) Transform {
	if r3.Norm(axis) == 0 {
		return Identity()
	}
	rot := r3.NewRotation(angle, r3.Unit(axis))
	return Transform{
		BasisX: rot.Rotate(r3.Vec{X: 1}),
		BasisY: rot.Rotate(r3.Vec{Y: 1}),
		BasisZ: rot.Rotate(r3.Vec{Z: 1}),
	}
}

// Scaling returns a uniform scale about the origin.
func Scaling(s float64) Transform {
	return Transform{
		BasisX: r3.Vec{X: s},
		BasisY: r3.Vec{Y: s},
		BasisZ: r3.Vec{Z: s},
	}
}

// OfVector applies the linear part of t to v.
func (t Transform) OfVector(v r3.Vec) r3.Vec {
	return r3.Add(r3.Add(r3.Scale(v.X, t.BasisX), r3.Scale(v.Y, t.BasisY)), r3.Scale(v.Z, t.BasisZ))
}

// OfPoint applies t to the point p.
func (t Transform) OfPoint(p r3.Vec) r3.Vec {
	return r3.Add(t.OfVector(p), t.Origin)
}

// Multiply returns t∘right: the transform that applies right first and t
// second.
func (t Transform) Multiply(right Transform) Transform {
	return Transform{
		BasisX: t.OfVector(right.BasisX),
		BasisY: t.OfVector(right.BasisY),
		BasisZ: t.OfVector(right.BasisZ),
		Origin: t.OfPoint(right.Origin),
	}
}

// Determinant of the linear part.
func (t Transform) Determinant() float64 {
	return r3.Dot(t.BasisX, r3.Cross(t.BasisY, t.BasisZ))
}

// IsFinite reports whether every coefficient is finite.
func (t Transform) IsFinite() bool {
	return IsFinite(t.BasisX) && IsFinite(t.BasisY) && IsFinite(t.BasisZ) && IsFinite(t.Origin)
}

// AlmostEqual compares all twelve coefficients within tol.
func (t Transform) AlmostEqual(o Transform, tol Tolerance) bool {
	return tol.VecEqual(t.BasisX, o.BasisX) &&
		tol.VecEqual(t.BasisY, o.BasisY) &&
		tol.VecEqual(t.BasisZ, o.BasisZ) &&
		tol.VecEqual(t.Origin, o.Origin)
}

// IsIdentity reports whether t is the identity within tol.
func (t Transform) IsIdentity(tol Tolerance) bool {
	return t.AlmostEqual(Identity(), tol)
}

// IsSingular reports whether the linear part collapses volume.
func (t Transform) IsSingular(tol Tolerance) bool {
	d := t.Determinant()
	return math.IsNaN(d) || tol.IsZero(d)
}

func (t Transform) String() string {
	return fmt.Sprintf("[x=%v y=%v z=%v o=%v]", t.BasisX, t.BasisY, t.BasisZ, t.Origin)
}
