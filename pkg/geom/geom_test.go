package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func assertVec(t *testing.T, want, got r3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "X")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "Y")
	assert.InDelta(t, want.Z, got.Z, 1e-9, "Z")
}

func TestToleranceZeroValue(t *testing.T) {
	var tol Tolerance
	assert.Equal(t, DefaultEpsilon, tol.Epsilon())
	assert.True(t, tol.IsZero(1e-10))
	assert.False(t, tol.IsZero(1e-9), "IsZero is strict")
}

func TestNewToleranceFallsBack(t *testing.T) {
	tests := []struct {
		name string
		eps  float64
		want float64
	}{
		{"positive", 1e-6, 1e-6},
		{"zero", 0, DefaultEpsilon},
		{"negative", -1, DefaultEpsilon},
		{"nan", math.NaN(), DefaultEpsilon},
		{"inf", math.Inf(1), DefaultEpsilon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewTolerance(tt.eps).Epsilon())
		})
	}
}

func TestTransformMultiplyOrder(t *testing.T) {
	outer := Translation(r3.Vec{X: 10})
	inner := Rotation(r3.Vec{Z: 1}, math.Pi/2)

	total := outer.Multiply(inner)
	p := r3.Vec{X: 1}

	// inner first: (1,0,0) -> (0,1,0); then outer: -> (10,1,0)
	assertVec(t, r3.Vec{X: 10, Y: 1}, total.OfPoint(p))
	assertVec(t, outer.OfPoint(inner.OfPoint(p)), total.OfPoint(p))

	// the other order gives a different point
	assertVec(t, r3.Vec{Y: 11}, inner.Multiply(outer).OfPoint(p))
}

func TestTransformIdentity(t *testing.T) {
	tol := DefaultTolerance()
	id := Identity()
	assert.True(t, id.IsIdentity(tol))
	assert.InDelta(t, 1.0, id.Determinant(), 1e-12)

	tr := Translation(r3.Vec{X: 1, Y: 2, Z: 3})
	assert.True(t, tr.Multiply(id).AlmostEqual(tr, tol))
	assert.True(t, id.Multiply(tr).AlmostEqual(tr, tol))
	assert.False(t, tr.IsIdentity(tol))
}

func TestTransformOfVectorIgnoresOrigin(t *testing.T) {
	tr := Translation(r3.Vec{X: 5})
	assertVec(t, r3.Vec{Y: 1}, tr.OfVector(r3.Vec{Y: 1}))
}

func TestRotationZeroAxis(t *testing.T) {
	assert.True(t, Rotation(r3.Vec{}, 1).IsIdentity(DefaultTolerance()))
}

func TestScalingSingular(t *testing.T) {
	tol := DefaultTolerance()
	assert.True(t, Scaling(0).IsSingular(tol))
	assert.False(t, Scaling(2).IsSingular(tol))
	assert.InDelta(t, 8.0, Scaling(2).Determinant(), 1e-12)
}

func TestTransformIsFinite(t *testing.T) {
	tr := Identity()
	assert.True(t, tr.IsFinite())
	tr.Origin.X = math.NaN()
	assert.False(t, tr.IsFinite())
}

func TestPlaneMatches(t *testing.T) {
	tol := DefaultTolerance()
	p := Plane{Origin: r3.Vec{}, Normal: r3.Vec{Z: 1}}

	tests := []struct {
		name   string
		origin r3.Vec
		normal r3.Vec
		want   bool
	}{
		{"same plane other origin", r3.Vec{X: 5, Y: -3}, r3.Vec{Z: 1}, true},
		{"within epsilon", r3.Vec{X: 1, Z: 1e-10}, r3.Vec{Z: 1}, true},
		{"offset plane", r3.Vec{Z: 1e-6}, r3.Vec{Z: 1}, false},
		{"flipped normal", r3.Vec{}, r3.Vec{Z: -1}, false},
		{"tilted normal", r3.Vec{}, r3.Unit(r3.Vec{X: 1e-6, Z: 1}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Matches(tt.origin, tt.normal, tol))
		})
	}
}

func TestNewPlaneNormalizes(t *testing.T) {
	tol := DefaultTolerance()
	p, ok := NewPlane(r3.Vec{X: 1}, r3.Vec{Z: 4}, tol)
	require.True(t, ok)
	assertVec(t, r3.Vec{Z: 1}, p.Normal)
	assert.InDelta(t, 2.0, p.SignedDistance(r3.Vec{Z: 2}), 1e-12)
	assert.InDelta(t, -2.0, p.SignedDistance(r3.Vec{Z: -2}), 1e-12)

	_, ok = NewPlane(r3.Vec{}, r3.Vec{}, tol)
	assert.False(t, ok)
}

func TestTriangleNormal(t *testing.T) {
	tol := DefaultTolerance()
	tests := []struct {
		name string
		tri  Triangle
		ok   bool
		want r3.Vec
	}{
		{"unit right triangle", Triangle{{}, {X: 1}, {Y: 1}}, true, r3.Vec{Z: 1}},
		{"reversed winding", Triangle{{}, {Y: 1}, {X: 1}}, true, r3.Vec{Z: -1}},
		{"collinear", Triangle{{}, {X: 1}, {X: 2}}, false, r3.Vec{}},
		{"coincident", Triangle{{X: 1}, {X: 1}, {X: 1}}, false, r3.Vec{}},
		{"nan corner", Triangle{{}, {X: math.NaN()}, {Y: 1}}, false, r3.Vec{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := tt.tri.Normal(tol)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, !tt.ok, tt.tri.IsDegenerate(tol))
			if ok {
				assertVec(t, tt.want, n)
			}
		})
	}
}

func TestTriangleTransformed(t *testing.T) {
	tri := Triangle{{}, {X: 1}, {Y: 1}}
	moved := tri.Transformed(Translation(r3.Vec{Z: 3}))
	for i := range moved {
		assert.InDelta(t, 3.0, moved[i].Z, 1e-12)
	}
	assert.InDelta(t, 0.5, moved.Area(), 1e-12)

	pl, ok := moved.Plane(DefaultTolerance())
	require.True(t, ok)
	assert.InDelta(t, 3.0, pl.Origin.Z, 1e-12)
}
