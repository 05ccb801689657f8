// Package sketch caches construction planes so that triangles lying in the
// same geometric plane share one plane object in the host document instead
// of creating one each.
package sketch

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/chazu/directshape/pkg/geom"
	"github.com/dhconnelly/rtreego"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateNormal is returned when a plane is requested with a normal
// that has no usable length.
var ErrDegenerateNormal = errors.New("sketch: degenerate plane normal")

// Handle is an opaque reference to a construction plane in the host.
type Handle string

// Factory creates construction planes on a registry miss.
type Factory interface {
	CreatePlane(p geom.Plane) (Handle, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(p geom.Plane) (Handle, error)

// CreatePlane calls f.
func (f FactoryFunc) CreatePlane(p geom.Plane) (Handle, error) { return f(p) }

// Entry is one registered plane. Order is the registration counter, kept
// for diagnostics and to break ties between overlapping matches.
type Entry struct {
	Plane  geom.Plane
	Handle Handle
	Order  int
	Seeded bool // known before this registry created anything
}

// Option configures a Registry.
type Option func(*Registry)

// WithTolerance sets the plane equality tolerance.
func WithTolerance(tol geom.Tolerance) Option {
	return func(r *Registry) { r.tol = tol }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}

// Registry maps planes to construction plane handles. Entries are only ever
// appended. A Registry belongs to one operation and is not safe for
// concurrent use.
type Registry struct {
	factory Factory
	tol     geom.Tolerance
	log     *log.Logger

	entries []Entry
	index   *rtreego.Rtree

	created int
	reused  int
}

// NewRegistry returns an empty registry that creates planes through f.
func NewRegistry(f Factory, opts ...Option) *Registry {
	r := &Registry{
		factory: f,
		tol:     geom.DefaultTolerance(),
		log:     log.New(io.Discard, "", 0),
		index:   rtreego.NewTree(3, 25, 50),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// indexed places an entry in the R-tree at its normal.
type indexed struct {
	entry int
	at    rtreego.Point
	ext   float64
}

func (x *indexed) Bounds() rtreego.Rect {
	return x.at.ToRect(x.ext)
}

// GetOrCreate returns the handle of a registered plane coincident with the
// plane through origin with the given normal, creating and registering a new
// plane when none matches. The normal is normalized first.
func (r *Registry) GetOrCreate(origin, normal r3.Vec) (Handle, error) {
	p, ok := geom.NewPlane(origin, normal, r.tol)
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrDegenerateNormal, normal)
	}

	if e, ok := r.find(p); ok {
		r.reused++
		r.log.Printf("GetSketchPlane: reusing %q (%d)", e.Handle, len(r.entries))
		return e.Handle, nil
	}

	h, err := r.factory.CreatePlane(p)
	if err != nil {
		return "", fmt.Errorf("sketch: create plane: %w", err)
	}
	r.insert(p, h, false)
	r.created++
	r.log.Printf("GetSketchPlane: created %q (%d)", h, len(r.entries))
	return h, nil
}

// Lookup returns the handle of a registered plane coincident with the given
// one without creating anything.
func (r *Registry) Lookup(origin, normal r3.Vec) (Handle, bool) {
	p, ok := geom.NewPlane(origin, normal, r.tol)
	if !ok {
		return "", false
	}
	e, ok := r.find(p)
	return e.Handle, ok
}

// Seed registers a plane that already exists in the host, so later requests
// reuse it. Seeded planes are not counted as created.
func (r *Registry) Seed(p geom.Plane, h Handle) error {
	np, ok := geom.NewPlane(p.Origin, p.Normal, r.tol)
	if !ok {
		return fmt.Errorf("%w: seed %q", ErrDegenerateNormal, h)
	}
	if _, exists := r.find(np); exists {
		return nil
	}
	r.insert(np, h, true)
	return nil
}

// Len returns the number of registered planes.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns a copy of the registered entries in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Created returns how many planes this registry asked its factory for.
func (r *Registry) Created() int {
	return r.created
}

// Reused returns how many requests were served from the cache.
func (r *Registry) Reused() int {
	return r.reused
}

// CreatedHandles returns the handles of planes this registry created, in
// creation order.
func (r *Registry) CreatedHandles() []Handle {
	var out []Handle
	for _, e := range r.entries {
		if !e.Seeded {
			out = append(out, e.Handle)
		}
	}
	return out
}

func (r *Registry) insert(p geom.Plane, h Handle, seeded bool) {
	r.entries = append(r.entries, Entry{
		Plane:  p,
		Handle: h,
		Order:  len(r.entries),
		Seeded: seeded,
	})
	r.index.Insert(&indexed{
		entry: len(r.entries) - 1,
		at:    rtreego.Point{p.Normal.X, p.Normal.Y, p.Normal.Z},
		ext:   r.tol.Epsilon(),
	})
}

// find returns the earliest registered entry matching p. The R-tree narrows
// candidates to those with a nearby normal; the exact tolerance test is
// applied afterwards.
func (r *Registry) find(p geom.Plane) (Entry, bool) {
	if len(r.entries) == 0 {
		return Entry{}, false
	}
	eps := r.tol.Epsilon()
	q, err := rtreego.NewRect(
		rtreego.Point{p.Normal.X - eps, p.Normal.Y - eps, p.Normal.Z - eps},
		[]float64{2 * eps, 2 * eps, 2 * eps},
	)
	if err != nil {
		return r.scan(p)
	}

	best := -1
	for _, s := range r.index.SearchIntersect(q) {
		i := s.(*indexed).entry
		e := r.entries[i]
		if e.Plane.Matches(p.Origin, p.Normal, r.tol) && (best < 0 || i < best) {
			best = i
		}
	}
	if best < 0 {
		return Entry{}, false
	}
	return r.entries[best], true
}

// scan is the linear fallback used when no query rectangle can be formed.
func (r *Registry) scan(p geom.Plane) (Entry, bool) {
	for _, e := range r.entries {
		if e.Plane.Matches(p.Origin, p.Normal, r.tol) {
			return e, true
		}
	}
	return Entry{}, false
}
