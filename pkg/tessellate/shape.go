package tessellate

import (
	"fmt"

	"github.com/chazu/directshape/pkg/geom"
	"github.com/chazu/directshape/pkg/kernel"
	"github.com/samber/lo"
)

// ShapeKind tells whether a built shape encloses a volume.
type ShapeKind int

const (
	ShapeSolid ShapeKind = iota
	ShapeMesh
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSolid:
		return "solid"
	case ShapeMesh:
		return "mesh"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// Shape is the immutable result of Builder.Build.
type Shape struct {
	Kind   ShapeKind
	Faces  []Face
	Sets   int
	Issues []string // why solid construction was not possible
}

// FaceCount returns the number of faces in the shape.
func (s *Shape) FaceCount() int {
	return len(s.Faces)
}

// Triangles returns the face corners in the order the faces were added.
func (s *Shape) Triangles() []geom.Triangle {
	return lo.Map(s.Faces, func(f Face, _ int) geom.Triangle {
		return geom.Triangle(f.Vertices)
	})
}

// Area returns the total face area.
func (s *Shape) Area() float64 {
	return lo.SumBy(s.Faces, func(f Face) float64 {
		return geom.Triangle(f.Vertices).Area()
	})
}

// Mesh converts the shape into the flat persisted form.
func (s *Shape) Mesh(name string) *kernel.Mesh {
	m := &kernel.Mesh{Name: name}
	for _, f := range s.Faces {
		m.AddTriangle(f.Vertices[0], f.Vertices[1], f.Vertices[2], f.Normal)
	}
	return m
}
