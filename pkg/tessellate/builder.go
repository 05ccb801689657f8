// Package tessellate assembles triangles into connected face sets and
// builds a persistable shape from them: a solid when the faces close up
// into a 2-manifold, a loose mesh otherwise.
//
// The builder follows an open/add/close protocol. Triangles are validated
// as they are added; degenerate ones are skipped rather than passed on,
// and the whole face set is only checked for closure in Build.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/chazu/directshape/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrEmptyShape is returned by Build when no triangle was accepted.
	ErrEmptyShape = errors.New("tessellate: empty shape")
	// ErrNotSolid is returned by Build when a solid was required, the faces
	// do not enclose a volume and the fallback is FallbackAbort.
	ErrNotSolid = errors.New("tessellate: faces do not form a solid")
)

// Target is the kind of shape Build tries to produce.
type Target int

const (
	TargetAnyGeometry Target = iota // solid if possible, else mesh
	TargetSolid
	TargetMesh
)

func (t Target) String() string {
	switch t {
	case TargetAnyGeometry:
		return "any"
	case TargetSolid:
		return "solid"
	case TargetMesh:
		return "mesh"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// ParseTarget parses "any", "solid" or "mesh".
func ParseTarget(s string) (Target, error) {
	switch s {
	case "", "any":
		return TargetAnyGeometry, nil
	case "solid":
		return TargetSolid, nil
	case "mesh":
		return TargetMesh, nil
	}
	return 0, fmt.Errorf("tessellate: unknown target %q", s)
}

// Fallback decides what Build does when a solid cannot be made.
type Fallback int

const (
	FallbackMesh Fallback = iota
	FallbackAbort
)

func (f Fallback) String() string {
	switch f {
	case FallbackMesh:
		return "mesh"
	case FallbackAbort:
		return "abort"
	default:
		return fmt.Sprintf("Fallback(%d)", int(f))
	}
}

// ParseFallback parses "mesh" or "abort".
func ParseFallback(s string) (Fallback, error) {
	switch s {
	case "", "mesh":
		return FallbackMesh, nil
	case "abort":
		return FallbackAbort, nil
	}
	return 0, fmt.Errorf("tessellate: unknown fallback %q", s)
}

// Face is one accepted triangular face with a single loop.
type Face struct {
	Vertices [3]r3.Vec
	Normal   r3.Vec
	Set      int // index of the connected face set it was added to
}

// Builder accumulates faces. The zero value is not usable; use NewBuilder.
// A Builder is not safe for concurrent use.
type Builder struct {
	tol geom.Tolerance

	faces    []Face
	sets     int
	open     bool
	rejected int
}

// NewBuilder returns an empty builder using tol for degeneracy and vertex
// distinctness checks.
func NewBuilder(tol geom.Tolerance) *Builder {
	return &Builder{tol: tol}
}

// OpenConnectedFaceSet starts a new connected face set. An already open set
// is closed first.
func (b *Builder) OpenConnectedFaceSet() {
	if b.open {
		b.CloseConnectedFaceSet()
	}
	b.open = true
	b.sets++
}

// CloseConnectedFaceSet ends the current face set. It is a no-op when no
// set is open.
func (b *Builder) CloseConnectedFaceSet() {
	b.open = false
}

// IsOpen reports whether a face set is currently open.
func (b *Builder) IsOpen() bool {
	return b.open
}

// AddTriangle adds the triangle (p0, p1, p2) to the open face set and
// reports whether it was accepted. Triangles without a usable normal or
// whose corners are not pairwise distinct are skipped. A set is opened
// implicitly when none is open.
func (b *Builder) AddTriangle(p0, p1, p2 r3.Vec) bool {
	return b.AddFace(geom.Triangle{p0, p1, p2})
}

// AddFace is AddTriangle for a geom.Triangle.
func (b *Builder) AddFace(t geom.Triangle) bool {
	n, ok := t.Normal(b.tol)
	if !ok || !b.HasEnoughLoopsAndVertices(t[:]) {
		b.rejected++
		return false
	}
	if !b.open {
		b.OpenConnectedFaceSet()
	}
	b.faces = append(b.faces, Face{Vertices: t, Normal: n, Set: b.sets - 1})
	return true
}

// HasEnoughLoopsAndVertices reports whether a single loop through loop
// describes a face: at least three finite vertices, pairwise distinct
// within the builder tolerance.
func (b *Builder) HasEnoughLoopsAndVertices(loop []r3.Vec) bool {
	if len(loop) < 3 {
		return false
	}
	for i := range loop {
		if !geom.IsFinite(loop[i]) {
			return false
		}
		for j := i + 1; j < len(loop); j++ {
			if b.tol.VecEqual(loop[i], loop[j]) {
				return false
			}
		}
	}
	return true
}

// Accepted returns the number of faces added so far.
func (b *Builder) Accepted() int {
	return len(b.faces)
}

// Rejected returns the number of triangles skipped so far.
func (b *Builder) Rejected() int {
	return b.rejected
}

// Sets returns the number of face sets opened so far.
func (b *Builder) Sets() int {
	return b.sets
}

// Build closes any open face set and produces the shape. With TargetMesh
// no solid is attempted. Otherwise the faces become a solid when they form
// a closed 2-manifold; when they do not, fallback decides between a mesh
// and ErrNotSolid (FallbackAbort only applies to TargetSolid).
func (b *Builder) Build(target Target, fallback Fallback) (*Shape, error) {
	b.CloseConnectedFaceSet()
	if len(b.faces) == 0 {
		return nil, ErrEmptyShape
	}

	faces := make([]Face, len(b.faces))
	copy(faces, b.faces)
	shape := &Shape{Kind: ShapeMesh, Faces: faces, Sets: b.sets}

	if target == TargetMesh {
		return shape, nil
	}

	issue := closedManifold(faces, b.tol)
	if issue == "" {
		shape.Kind = ShapeSolid
		return shape, nil
	}
	if target == TargetSolid && fallback == FallbackAbort {
		return nil, fmt.Errorf("%w: %s", ErrNotSolid, issue)
	}
	shape.Issues = append(shape.Issues, issue)
	return shape, nil
}
