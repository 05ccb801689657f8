package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/directshape/pkg/geom"
	"github.com/chazu/directshape/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(element "wall" :name "Wall")`,
			expect: `(element "wall" "__kw_name" "Wall")`,
		},
		{
			name:   "multiple keywords",
			input:  `(rotate :axis :z :angle 90)`,
			expect: `(rotate "__kw_axis" "__kw_z" "__kw_angle" 90)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "stable ref in string preserved",
			input:  `(face "wall:3:SURFACE")`,
			expect: `(face "wall:3:SURFACE")`,
		},
		{
			name:   "escaped quote in string",
			input:  `"a \" :b" :c`,
			expect: `"a \" :b" "__kw_c"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`raw :x`",
			expect: "`raw :x`",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def left-wall (element "w"))`,
			expect: `(def left_wall (element "w"))`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(vec3 -1 0 -2.5)`,
			expect: `(vec3 -1 0 -2.5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:plane-scope`,
			expect: `"__kw_plane-scope"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, preprocessSource(tt.input))
		})
	}
}

// evalOK evaluates source and fails the test on any error.
func evalOK(t *testing.T, source string) *scene.Document {
	t.Helper()
	doc, evalErrs, err := NewEngine().Evaluate(source)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	require.NotNil(t, doc)
	return doc
}

// evalFails evaluates source and returns the joined eval error messages.
func evalFails(t *testing.T, source string) string {
	t.Helper()
	doc, evalErrs, err := NewEngine().Evaluate(source)
	require.NoError(t, err, "expected non-fatal eval error")
	require.Nil(t, doc, "expected nil document on eval error")
	require.NotEmpty(t, evalErrs)
	msgs := make([]string, len(evalErrs))
	for i, e := range evalErrs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

func assertVecNear(t *testing.T, want, got r3.Vec) {
	t.Helper()
	assert.InDelta(t, 0, r3.Norm(r3.Sub(want, got)), 1e-9, "got %v, want %v", got, want)
}

// ---------------------------------------------------------------------------
// Element and geometry tests
// ---------------------------------------------------------------------------

func TestSimpleElement(t *testing.T) {
	doc := evalOK(t, `
(element "slab" :name "Floor Slab" :category "Floors"
  (solid
    (face "slab:1:SURFACE" (tri (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0)))
    (edge "slab:2:LINEAR" (vec3 0 0 0) (vec3 1 0 0))))
`)
	require.Equal(t, 1, doc.Len())
	e := doc.Get("slab")
	require.NotNil(t, e)
	assert.Equal(t, "Floor Slab", e.Name)
	assert.Equal(t, "Floors", e.Category)
	assert.Nil(t, e.Transform)
	assert.Nil(t, e.Location)

	require.Len(t, e.Geometry, 1)
	s, ok := e.Geometry[0].(*scene.Solid)
	require.True(t, ok, "got %T", e.Geometry[0])
	require.Len(t, s.Faces, 1)
	require.Len(t, s.Edges, 1)
	assert.Equal(t, geom.Triangle{{}, {X: 1}, {Y: 1}}, s.Faces[0].Mesh[0])
	assert.Equal(t, r3.Vec{X: 1}, s.Edges[0].End)
}

func TestVariableReference(t *testing.T) {
	doc := evalOK(t, `
(def bottom (face "box:1:SURFACE" (quad (vec3 0 0 0) (vec3 0 1 0) (vec3 1 1 0) (vec3 1 0 0))))
(def box-solid (solid bottom))
(element "box" box-solid)
`)
	e := doc.Get("box")
	require.NotNil(t, e)
	f, ok := e.FaceByRef("box:1:SURFACE")
	require.True(t, ok)
	require.Len(t, f.Mesh, 2, "quad splits into two triangles")
	assert.Equal(t, r3.Vec{X: 1}, f.Mesh[1][2])
}

func TestListArguments(t *testing.T) {
	doc := evalOK(t, `
(element "e"
  (solid (list
    (face "e:1:SURFACE" (list (tri (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0))
                              (tri (vec3 1 0 0) (vec3 1 1 0) (vec3 0 1 0)))))))
`)
	f, ok := doc.Get("e").FaceByRef("e:1:SURFACE")
	require.True(t, ok)
	assert.Len(t, f.Mesh, 2)
}

func TestNestedInstances(t *testing.T) {
	doc := evalOK(t, `
(element "family" :transform (translate (vec3 100 0 0))
  (instance (translate (vec3 0 0 5))
    (solid (face "decoy:1:SURFACE" (tri (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0)))))
  (instance (translate (vec3 10 0 0))
    (instance (rotate :axis :z :angle 90)
      (solid (face "family:7:SURFACE" (tri (vec3 1 0 0) (vec3 2 0 0) (vec3 1 1 0)))))))
`)
	e := doc.Get("family")
	require.NotNil(t, e.Transform)
	assertVecNear(t, r3.Vec{X: 100}, e.Transform.OfPoint(r3.Vec{}))

	stack, ok := scene.Locate(e.Geometry, "family:7:SURFACE")
	require.True(t, ok)
	require.Equal(t, 2, stack.Len())
	// Rotate (1,0,0) by 90 degrees about z, then shift by 10 in x.
	assertVecNear(t, r3.Vec{X: 10, Y: 1}, scene.Compose(stack).OfPoint(r3.Vec{X: 1}))
}

func TestLocationKeyword(t *testing.T) {
	doc := evalOK(t, `(element "col" :location (vec3 1 2 3))`)
	e := doc.Get("col")
	require.NotNil(t, e.Location)
	assert.Equal(t, r3.Vec{X: 1, Y: 2, Z: 3}, *e.Location)
}

// ---------------------------------------------------------------------------
// Transform builtins
// ---------------------------------------------------------------------------

func TestTransforms(t *testing.T) {
	tests := []struct {
		name string
		expr string
		in   r3.Vec
		want r3.Vec
	}{
		{"translate", `(translate (vec3 1 2 3))`, r3.Vec{X: 1}, r3.Vec{X: 2, Y: 2, Z: 3}},
		{"rotate z", `(rotate :axis :z :angle 90)`, r3.Vec{X: 1}, r3.Vec{Y: 1}},
		{"rotate x", `(rotate :axis :x :angle 90)`, r3.Vec{Y: 1}, r3.Vec{Z: 1}},
		{"rotate vec axis", `(rotate :axis (vec3 0 0 2) :angle 180)`, r3.Vec{X: 1}, r3.Vec{X: -1}},
		{"rotate default axis", `(rotate :angle 90)`, r3.Vec{X: 1}, r3.Vec{Y: 1}},
		{"scale", `(scale 2.5)`, r3.Vec{X: 1, Y: 2}, r3.Vec{X: 2.5, Y: 5}},
		{"compose outer first", `(compose (translate (vec3 10 0 0)) (rotate :axis :z :angle 90))`,
			r3.Vec{X: 1}, r3.Vec{X: 10, Y: 1}},
		{"compose empty", `(compose)`, r3.Vec{X: 4}, r3.Vec{X: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := evalOK(t, `(element "e" :transform `+tt.expr+`)`)
			xf := doc.Get("e").Transform
			require.NotNil(t, xf)
			assertVecNear(t, tt.want, xf.OfPoint(tt.in))
		})
	}
}

func TestRotateAngleInDegrees(t *testing.T) {
	doc := evalOK(t, `(element "e" :transform (rotate :axis :z :angle 45))`)
	h := math.Sqrt2 / 2
	assertVecNear(t, r3.Vec{X: h, Y: h}, doc.Get("e").Transform.OfPoint(r3.Vec{X: 1}))
}

// ---------------------------------------------------------------------------
// Error reporting
// ---------------------------------------------------------------------------

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"vec3 arity", `(vec3 1 2)`, "vec3 requires exactly 3 arguments"},
		{"vec3 type", `(vec3 1 "a" 2)`, "vec3: y"},
		{"tri arity", `(tri (vec3 0 0 0) (vec3 1 0 0))`, "tri requires exactly 3 points"},
		{"rotate bad axis", `(rotate :axis :w :angle 1)`, "invalid axis"},
		{"rotate no angle", `(rotate :axis :x)`, "rotate requires :angle"},
		{"rotate zero axis", `(rotate :axis (vec3 0 0 0) :angle 1)`, "zero axis"},
		{"face item", `(face "f:1:SURFACE" (vec3 0 0 0))`, "expected tri"},
		{"solid item", `(solid (instance (translate (vec3 0 0 0))))`, "expected face or edge"},
		{"instance transform", `(instance (vec3 0 0 0))`, "expected transform"},
		{"element id", `(element)`, "element requires an id"},
		{"element geometry", `(element "e" (vec3 0 0 0))`, "expected geometry"},
		{"duplicate element", `(element "e") (element "e")`, "duplicate element id"},
		{"edge arity", `(edge "e:1:LINEAR" (vec3 0 0 0))`, "edge requires"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, evalFails(t, tt.source), tt.want)
		})
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	doc := evalOK(t, `
(def w 10)
(element "e" (solid (face "e:1:SURFACE" (tri (vec3 0 0 0) (vec3 (* w 2) 0 0) (vec3 0 (+ w 1) 0)))))
`)
	f, ok := doc.Get("e").FaceByRef("e:1:SURFACE")
	require.True(t, ok)
	assert.Equal(t, 20.0, f.Mesh[0][1].X)
	assert.Equal(t, 11.0, f.Mesh[0][2].Y)
}
