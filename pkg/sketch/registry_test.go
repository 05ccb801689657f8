package sketch

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"testing"

	"github.com/chazu/directshape/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// countingFactory hands out sequential handles and records every plane.
type countingFactory struct {
	planes []geom.Plane
	err    error
}

func (f *countingFactory) CreatePlane(p geom.Plane) (Handle, error) {
	if f.err != nil {
		return "", f.err
	}
	f.planes = append(f.planes, p)
	return Handle(fmt.Sprintf("plane-%d", len(f.planes))), nil
}

func TestGetOrCreateReusesCoincidentPlane(t *testing.T) {
	f := &countingFactory{}
	r := NewRegistry(f)

	// Two triangles of the z=0 plane, different first corners.
	h1, err := r.GetOrCreate(r3.Vec{}, r3.Vec{Z: 1})
	require.NoError(t, err)
	h2, err := r.GetOrCreate(r3.Vec{X: 1, Y: 1}, r3.Vec{Z: 1})
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, r.Created())
	assert.Equal(t, 1, r.Reused())
	assert.Len(t, f.planes, 1)
}

func TestGetOrCreateNormalizesNormal(t *testing.T) {
	r := NewRegistry(&countingFactory{})
	h1, err := r.GetOrCreate(r3.Vec{}, r3.Vec{Z: 5})
	require.NoError(t, err)
	h2, err := r.GetOrCreate(r3.Vec{}, r3.Vec{Z: 1})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestGetOrCreateDistinctPlanes(t *testing.T) {
	tests := []struct {
		name   string
		origin r3.Vec
		normal r3.Vec
	}{
		{"parallel offset", r3.Vec{Z: 1e-6}, r3.Vec{Z: 1}},
		{"flipped normal", r3.Vec{}, r3.Vec{Z: -1}},
		{"tilted normal", r3.Vec{}, r3.Vec{X: 1e-6, Z: 1}},
		{"perpendicular", r3.Vec{}, r3.Vec{X: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(&countingFactory{})
			h1, err := r.GetOrCreate(r3.Vec{}, r3.Vec{Z: 1})
			require.NoError(t, err)
			h2, err := r.GetOrCreate(tt.origin, tt.normal)
			require.NoError(t, err)
			assert.NotEqual(t, h1, h2)
			assert.Equal(t, 2, r.Len())
		})
	}
}

func TestGetOrCreateWithinTolerance(t *testing.T) {
	r := NewRegistry(&countingFactory{}, WithTolerance(geom.NewTolerance(1e-6)))
	h1, err := r.GetOrCreate(r3.Vec{}, r3.Vec{Z: 1})
	require.NoError(t, err)
	h2, err := r.GetOrCreate(r3.Vec{X: 3, Z: 5e-7}, r3.Vec{Z: 1})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestGetOrCreateOrderIndependent(t *testing.T) {
	planes := []struct{ o, n r3.Vec }{
		{r3.Vec{}, r3.Vec{Z: 1}},
		{r3.Vec{X: 1}, r3.Vec{X: 1}},
		{r3.Vec{Y: 2, Z: 7}, r3.Vec{Z: 1}},
		{r3.Vec{Z: 7}, r3.Vec{Z: 1}},
		{r3.Vec{X: 1, Y: 9}, r3.Vec{X: 1}},
		{r3.Vec{Z: 3}, r3.Vec{Z: 1}},
	}

	forward := NewRegistry(&countingFactory{})
	fwd := make([]Handle, len(planes))
	for i, p := range planes {
		h, err := forward.GetOrCreate(p.o, p.n)
		require.NoError(t, err)
		fwd[i] = h
	}

	backward := NewRegistry(&countingFactory{})
	bwd := make([]Handle, len(planes))
	for i := len(planes) - 1; i >= 0; i-- {
		h, err := backward.GetOrCreate(planes[i].o, planes[i].n)
		require.NoError(t, err)
		bwd[i] = h
	}

	assert.Equal(t, 4, forward.Len())
	assert.Equal(t, 4, backward.Len())
	// Same grouping regardless of call order.
	for i := range planes {
		for j := range planes {
			assert.Equal(t, fwd[i] == fwd[j], bwd[i] == bwd[j], "planes %d and %d", i, j)
		}
	}
}

func TestGetOrCreateDegenerateNormal(t *testing.T) {
	f := &countingFactory{}
	r := NewRegistry(f)
	_, err := r.GetOrCreate(r3.Vec{}, r3.Vec{})
	assert.ErrorIs(t, err, ErrDegenerateNormal)
	assert.Empty(t, f.planes)
	assert.Zero(t, r.Len())
}

func TestGetOrCreateFactoryError(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry(&countingFactory{err: boom})
	_, err := r.GetOrCreate(r3.Vec{}, r3.Vec{Z: 1})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, r.Len(), "failed creation must not register anything")
}

func TestLookupHasNoSideEffects(t *testing.T) {
	f := &countingFactory{}
	r := NewRegistry(f)
	_, ok := r.Lookup(r3.Vec{}, r3.Vec{Z: 1})
	assert.False(t, ok)
	assert.Empty(t, f.planes)

	h, err := r.GetOrCreate(r3.Vec{}, r3.Vec{Z: 1})
	require.NoError(t, err)
	got, ok := r.Lookup(r3.Vec{X: 4}, r3.Vec{Z: 1})
	require.True(t, ok)
	assert.Equal(t, h, got)
	assert.Zero(t, r.Reused())
}

func TestSeedIsReusedButNotCreated(t *testing.T) {
	f := &countingFactory{}
	r := NewRegistry(f)
	require.NoError(t, r.Seed(geom.Plane{Normal: r3.Vec{Y: 1}}, "existing"))
	require.NoError(t, r.Seed(geom.Plane{Origin: r3.Vec{X: 2}, Normal: r3.Vec{Y: 1}}, "same-plane"))

	h, err := r.GetOrCreate(r3.Vec{X: 5}, r3.Vec{Y: 1})
	require.NoError(t, err)
	assert.Equal(t, Handle("existing"), h)
	assert.Empty(t, f.planes)
	assert.Equal(t, 1, r.Len())
	assert.Empty(t, r.CreatedHandles())

	h2, err := r.GetOrCreate(r3.Vec{}, r3.Vec{Z: 1})
	require.NoError(t, err)
	assert.Equal(t, []Handle{h2}, r.CreatedHandles())

	assert.ErrorIs(t, r.Seed(geom.Plane{}, "bad"), ErrDegenerateNormal)
}

func TestEntriesKeepCreationOrder(t *testing.T) {
	r := NewRegistry(&countingFactory{})
	for i := 0; i < 5; i++ {
		_, err := r.GetOrCreate(r3.Vec{Z: float64(i)}, r3.Vec{Z: 1})
		require.NoError(t, err)
	}
	for i, e := range r.Entries() {
		assert.Equal(t, i, e.Order)
		assert.Equal(t, Handle(fmt.Sprintf("plane-%d", i+1)), e.Handle)
	}
}

func TestRegistryLogs(t *testing.T) {
	var buf bytes.Buffer
	r := NewRegistry(&countingFactory{}, WithLogger(log.New(&buf, "", 0)))
	_, _ = r.GetOrCreate(r3.Vec{}, r3.Vec{Z: 1})
	_, _ = r.GetOrCreate(r3.Vec{}, r3.Vec{Z: 1})
	assert.Contains(t, buf.String(), `created "plane-1"`)
	assert.Contains(t, buf.String(), `reusing "plane-1"`)
}

func TestFactoryFunc(t *testing.T) {
	var got geom.Plane
	r := NewRegistry(FactoryFunc(func(p geom.Plane) (Handle, error) {
		got = p
		return "fn", nil
	}))
	h, err := r.GetOrCreate(r3.Vec{X: 1}, r3.Vec{X: 2})
	require.NoError(t, err)
	assert.Equal(t, Handle("fn"), h)
	assert.Equal(t, r3.Vec{X: 1}, got.Normal)
}
