package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is a triangle mesh in persisted form.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float64 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float64 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // display name of the persisted shape
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// AddTriangle appends one unshared triangle with the face normal n on each
// of its vertices.
func (m *Mesh) AddTriangle(a, b, c, n r3.Vec) {
	base := uint32(m.VertexCount())
	for _, v := range [3]r3.Vec{a, b, c} {
		m.Vertices = append(m.Vertices, v.X, v.Y, v.Z)
		m.Normals = append(m.Normals, n.X, n.Y, n.Z)
	}
	m.Indices = append(m.Indices, base, base+1, base+2)
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i uint32) r3.Vec {
	return r3.Vec{X: m.Vertices[3*i], Y: m.Vertices[3*i+1], Z: m.Vertices[3*i+2]}
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) [3]r3.Vec {
	return [3]r3.Vec{
		m.Vertex(m.Indices[3*i]),
		m.Vertex(m.Indices[3*i+1]),
		m.Vertex(m.Indices[3*i+2]),
	}
}

// BoundingBox returns the axis-aligned bounding box. An empty mesh has a
// zero box.
func (m *Mesh) BoundingBox() (min, max [3]float64) {
	if m.IsEmpty() {
		return min, max
	}
	for k := 0; k < 3; k++ {
		min[k] = math.Inf(1)
		max[k] = math.Inf(-1)
	}
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		for k := 0; k < 3; k++ {
			min[k] = math.Min(min[k], m.Vertices[i+k])
			max[k] = math.Max(max[k], m.Vertices[i+k])
		}
	}
	return min, max
}
