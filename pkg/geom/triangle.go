package geom

import "gonum.org/v1/gonum/spatial/r3"

// Triangle is three ordered corner points. Nothing guarantees it is
// non-degenerate.
type Triangle [3]r3.Vec

// Normal returns the unit normal of the triangle, the normalized cross
// product of (p1-p0) and (p2-p0). It reports false for collinear or
// coincident corners.
func (t Triangle) Normal(tol Tolerance) (r3.Vec, bool) {
	c := r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
	n := r3.Norm(c)
	if !(n >= tol.Epsilon()) || !IsFinite(c) {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, c), true
}

// IsDegenerate reports whether the triangle has no usable normal.
func (t Triangle) IsDegenerate(tol Tolerance) bool {
	_, ok := t.Normal(tol)
	return !ok
}

// Area returns the triangle's area.
func (t Triangle) Area() float64 {
	return r3.Norm(r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))) / 2
}

// Transformed maps every corner through tr.
func (t Triangle) Transformed(tr Transform) Triangle {
	return Triangle{tr.OfPoint(t[0]), tr.OfPoint(t[1]), tr.OfPoint(t[2])}
}

// Plane returns the plane through the first corner with the triangle normal.
func (t Triangle) Plane(tol Tolerance) (Plane, bool) {
	n, ok := t.Normal(tol)
	if !ok {
		return Plane{}, false
	}
	return Plane{Origin: t[0], Normal: n}, true
}
