// Package sdfx implements kernel.Exporter using the
// github.com/deadsy/sdfx CAD library's STL renderer.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/directshape/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Exporter = (*STLExporter)(nil)

// STLExporter writes meshes as binary STL files.
type STLExporter struct{}

// New returns a new STLExporter.
func New() *STLExporter {
	return &STLExporter{}
}

// Export writes m to path. Empty meshes are refused since an STL with no
// facets is not a usable shape.
func (e *STLExporter) Export(path string, m *kernel.Mesh) error {
	if m == nil || m.TriangleCount() == 0 {
		return fmt.Errorf("sdfx: export %s: empty mesh", path)
	}
	if err := render.SaveSTL(path, Triangles(m)); err != nil {
		return fmt.Errorf("sdfx: export %s: %w", path, err)
	}
	return nil
}

// Triangles converts a mesh into sdfx triangles, one per index triple.
func Triangles(m *kernel.Mesh) []*sdf.Triangle3 {
	tris := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for i := 0; i < m.TriangleCount(); i++ {
		c := m.Triangle(i)
		tri := sdf.Triangle3{
			{X: c[0].X, Y: c[0].Y, Z: c[0].Z},
			{X: c[1].X, Y: c[1].Y, Z: c[1].Z},
			{X: c[2].X, Y: c[2].Y, Z: c[2].Z},
		}
		tris = append(tris, &tri)
	}
	return tris
}

// Bounds returns the axis-aligned bounding box of m as an sdf.Box3.
func Bounds(m *kernel.Mesh) sdf.Box3 {
	if m == nil || m.IsEmpty() {
		return sdf.Box3{}
	}
	lo := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := v3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		lo.X = math.Min(lo.X, m.Vertices[i])
		lo.Y = math.Min(lo.Y, m.Vertices[i+1])
		lo.Z = math.Min(lo.Z, m.Vertices[i+2])
		hi.X = math.Max(hi.X, m.Vertices[i])
		hi.Y = math.Max(hi.Y, m.Vertices[i+1])
		hi.Z = math.Max(hi.Z, m.Vertices[i+2])
	}
	return sdf.Box3{Min: lo, Max: hi}
}
