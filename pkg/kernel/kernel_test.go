package kernel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// --- Mesh helper method tests ---

func TestMeshCounts(t *testing.T) {
	tests := []struct {
		name      string
		vertices  []float64
		indices   []uint32
		wantVerts int
		wantTris  int
	}{
		{"empty", nil, nil, 0, 0},
		{"one vertex", []float64{1, 2, 3}, nil, 1, 0},
		{"quad", []float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, []uint32{0, 1, 2, 2, 3, 0}, 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices, Indices: tt.indices}
			assert.Equal(t, tt.wantVerts, m.VertexCount())
			assert.Equal(t, tt.wantTris, m.TriangleCount())
			assert.Equal(t, tt.vertices == nil, m.IsEmpty())
		})
	}
}

func TestMeshAddTriangle(t *testing.T) {
	m := &Mesh{}
	n := r3.Vec{Z: 1}
	m.AddTriangle(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1}, n)
	m.AddTriangle(r3.Vec{X: 1}, r3.Vec{X: 1, Y: 1}, r3.Vec{Y: 1}, n)

	require.Equal(t, 2, m.TriangleCount())
	require.Equal(t, 6, m.VertexCount())
	require.Len(t, m.Normals, len(m.Vertices))
	assert.Equal(t, r3.Vec{X: 1, Y: 1}, m.Triangle(1)[1])
}

func TestMeshBoundingBox(t *testing.T) {
	m := &Mesh{}
	min, max := m.BoundingBox()
	assert.Zero(t, min)
	assert.Zero(t, max)

	m.AddTriangle(r3.Vec{X: -1, Y: 2, Z: 0}, r3.Vec{X: 3, Y: 0, Z: 5}, r3.Vec{X: 0, Y: -4, Z: 1}, r3.Vec{})
	min, max = m.BoundingBox()
	assert.Equal(t, [3]float64{-1, -4, 0}, min)
	assert.Equal(t, [3]float64{3, 2, 5}, max)
}

// Compile-time check that the adapter implements the interface.
var _ Exporter = ExporterFunc(nil)

func TestExporterFunc(t *testing.T) {
	want := errors.New("disk full")
	var gotPath string
	var e Exporter = ExporterFunc(func(path string, _ *Mesh) error {
		gotPath = path
		return want
	})
	assert.ErrorIs(t, e.Export("out.stl", &Mesh{}), want)
	assert.Equal(t, "out.stl", gotPath)
}
