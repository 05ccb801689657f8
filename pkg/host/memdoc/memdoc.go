// Package memdoc is an in-memory host.Document. Every change made inside a
// transaction is undone on RollBack, and any operation can be made to fail
// for testing.
package memdoc

import (
	"fmt"
	"io"
	"log"

	"github.com/chazu/directshape/pkg/geom"
	"github.com/chazu/directshape/pkg/host"
	"github.com/chazu/directshape/pkg/scene"
	"github.com/chazu/directshape/pkg/sketch"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

// Op names a document operation for failure injection.
type Op string

const (
	OpElement           Op = "Element"
	OpStartTransaction  Op = "StartTransaction"
	OpCommit            Op = "Commit"
	OpCreateSketchPlane Op = "CreateSketchPlane"
	OpSketchPlanes      Op = "SketchPlanes"
	OpDrawModelLoop     Op = "DrawModelLoop"
	OpCreateDirectShape Op = "CreateDirectShape"
	OpDelete            Op = "Delete"
)

var (
	// ErrNoTransaction is returned by changes made outside a transaction.
	ErrNoTransaction = errors.New("memdoc: no open transaction")
	// ErrTransactionOpen is returned when a second transaction is started.
	ErrTransactionOpen = errors.New("memdoc: transaction already open")
	// ErrTransactionClosed is returned when an ended transaction is used.
	ErrTransactionClosed = errors.New("memdoc: transaction already ended")
)

// Curve is a model line drawn on a construction plane.
type Curve struct {
	ID    scene.ElementID
	Plane sketch.Handle
	Start r3.Vec
	End   r3.Vec
}

// Shape is a persisted standalone shape.
type Shape struct {
	ID   scene.ElementID
	Spec host.ShapeSpec
}

// state is everything a transaction may change.
type state struct {
	planes []host.SketchPlane
	curves []Curve
	shapes []Shape
	loops  []host.Loop
	nextID int
}

func (s state) clone() state {
	c := s
	c.planes = append([]host.SketchPlane(nil), s.planes...)
	c.curves = append([]Curve(nil), s.curves...)
	c.shapes = append([]Shape(nil), s.shapes...)
	c.loops = append([]host.Loop(nil), s.loops...)
	return c
}

// Doc is an in-memory host document. It is not safe for concurrent use.
type Doc struct {
	scene    *scene.Document
	st       state
	tx       *txn
	failures map[Op]error
	log      *log.Logger

	committed int
	rolled    int
}

// Option configures a Doc.
type Option func(*Doc)

// WithLogger sets the diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Doc) {
		if l != nil {
			d.log = l
		}
	}
}

// New returns a document holding the elements of s. A nil s gives an
// empty document.
func New(s *scene.Document, opts ...Option) *Doc {
	if s == nil {
		s = scene.NewDocument()
	}
	d := &Doc{
		scene:    s,
		failures: make(map[Op]error),
		log:      log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Compile-time interface check.
var _ host.Document = (*Doc)(nil)

// FailOn makes every later call of op fail with err. A nil err installs a
// generic failure.
func (d *Doc) FailOn(op Op, err error) {
	if err == nil {
		err = errors.Errorf("memdoc: injected %s failure", op)
	}
	d.failures[op] = err
}

// ClearFailures removes all injected failures.
func (d *Doc) ClearFailures() {
	d.failures = make(map[Op]error)
}

func (d *Doc) fail(op Op) error {
	if err, ok := d.failures[op]; ok {
		return errors.WithStack(err)
	}
	return nil
}

func (d *Doc) mutate(op Op) error {
	if err := d.fail(op); err != nil {
		return err
	}
	if d.tx == nil {
		return errors.Wrapf(ErrNoTransaction, "%s", op)
	}
	return nil
}

func (d *Doc) newID(prefix string) scene.ElementID {
	d.st.nextID++
	return scene.ElementID(fmt.Sprintf("%s-%d", prefix, d.st.nextID))
}

// Element returns a copy of the element with the given id.
func (d *Doc) Element(id scene.ElementID) (*scene.Element, error) {
	if err := d.fail(OpElement); err != nil {
		return nil, err
	}
	e := d.scene.Get(id)
	if e == nil {
		return nil, errors.Wrapf(host.ErrNotFound, "element %q", id)
	}
	return e.Clone(), nil
}

// Scene returns the scene snapshot backing the document.
func (d *Doc) Scene() *scene.Document {
	return d.scene
}

// Picker returns a picker that picks ref, resolving its owning element.
func (d *Doc) Picker(ref scene.StableRef) host.Picker {
	return host.PickerFunc(func(string) (host.Pick, error) {
		e, ok := d.scene.ResolveRef(ref)
		if !ok {
			return host.Pick{}, errors.Wrapf(host.ErrNotFound, "reference %q", ref)
		}
		return host.Pick{Element: e.ID, Ref: ref}, nil
	})
}

// StartTransaction opens a transaction. Only one may be open at a time.
func (d *Doc) StartTransaction(name string) (host.Transaction, error) {
	if err := d.fail(OpStartTransaction); err != nil {
		return nil, err
	}
	if d.tx != nil {
		return nil, errors.Wrapf(ErrTransactionOpen, "%q while %q", name, d.tx.name)
	}
	d.tx = &txn{doc: d, name: name, snapshot: d.st.clone()}
	d.log.Printf("transaction %q started", name)
	return d.tx, nil
}

// InTransaction reports whether a transaction is open.
func (d *Doc) InTransaction() bool {
	return d.tx != nil
}

// Committed returns how many transactions were committed.
func (d *Doc) Committed() int { return d.committed }

// RolledBack returns how many transactions were rolled back.
func (d *Doc) RolledBack() int { return d.rolled }

// CreateSketchPlane stores a new construction plane named
// host.UnassociatedPlaneName.
func (d *Doc) CreateSketchPlane(p geom.Plane) (sketch.Handle, error) {
	if err := d.mutate(OpCreateSketchPlane); err != nil {
		return "", err
	}
	id := sketch.Handle(d.newID("sketchplane"))
	d.st.planes = append(d.st.planes, host.SketchPlane{ID: id, Plane: p, Name: host.UnassociatedPlaneName})
	return id, nil
}

// AddSketchPlane stores a named plane outside any transaction, the way
// levels and reference planes already exist in a document.
func (d *Doc) AddSketchPlane(name string, p geom.Plane) sketch.Handle {
	id := sketch.Handle(d.newID("sketchplane"))
	d.st.planes = append(d.st.planes, host.SketchPlane{ID: id, Plane: p, Name: name})
	return id
}

// SketchPlanes returns every construction plane in the document.
func (d *Doc) SketchPlanes() ([]host.SketchPlane, error) {
	if err := d.fail(OpSketchPlanes); err != nil {
		return nil, err
	}
	return append([]host.SketchPlane(nil), d.st.planes...), nil
}

func (d *Doc) hasPlane(h sketch.Handle) bool {
	for _, p := range d.st.planes {
		if p.ID == h {
			return true
		}
	}
	return false
}

// DrawModelLoop draws the closed loop through corners as model lines on
// plane. Line i joins corner (i-1 mod n) to corner i.
func (d *Doc) DrawModelLoop(plane sketch.Handle, corners []r3.Vec) ([]scene.ElementID, error) {
	if err := d.mutate(OpDrawModelLoop); err != nil {
		return nil, err
	}
	if !d.hasPlane(plane) {
		return nil, errors.Wrapf(host.ErrNotFound, "sketch plane %q", plane)
	}
	if len(corners) < 3 {
		return nil, errors.Errorf("memdoc: loop needs at least 3 corners, got %d", len(corners))
	}
	segs := host.LoopSegments(corners)
	ids := make([]scene.ElementID, 0, len(segs))
	for _, s := range segs {
		id := d.newID("curve")
		d.st.curves = append(d.st.curves, Curve{ID: id, Plane: plane, Start: s[0], End: s[1]})
		ids = append(ids, id)
	}
	d.st.loops = append(d.st.loops, host.Loop{
		Plane:   plane,
		Corners: append([]r3.Vec(nil), corners...),
		Curves:  ids,
	})
	return append([]scene.ElementID(nil), ids...), nil
}

// CreateDirectShape persists spec as a standalone shape element.
func (d *Doc) CreateDirectShape(spec host.ShapeSpec) (scene.ElementID, error) {
	if err := d.mutate(OpCreateDirectShape); err != nil {
		return "", err
	}
	if spec.Shape == nil || spec.Shape.FaceCount() == 0 {
		return "", errors.New("memdoc: direct shape has no geometry")
	}
	id := d.newID("directshape")
	d.st.shapes = append(d.st.shapes, Shape{ID: id, Spec: spec})
	d.log.Printf("direct shape %s %q created with %d faces", id, spec.Name, spec.Shape.FaceCount())
	return id, nil
}

// Delete removes planes, curves and shapes. Deleting a plane also deletes
// the curves drawn on it. Every id must exist.
func (d *Doc) Delete(ids ...scene.ElementID) error {
	if err := d.mutate(OpDelete); err != nil {
		return err
	}
	drop := make(map[scene.ElementID]bool, len(ids))
	for _, id := range ids {
		if !d.exists(id) {
			return errors.Wrapf(host.ErrNotFound, "delete %q", id)
		}
		drop[id] = true
	}

	planes := d.st.planes[:0:0]
	for _, p := range d.st.planes {
		if !drop[scene.ElementID(p.ID)] {
			planes = append(planes, p)
		}
	}
	curves := d.st.curves[:0:0]
	for _, c := range d.st.curves {
		if !drop[c.ID] && !drop[scene.ElementID(c.Plane)] {
			curves = append(curves, c)
		}
	}
	shapes := d.st.shapes[:0:0]
	for _, s := range d.st.shapes {
		if !drop[s.ID] {
			shapes = append(shapes, s)
		}
	}
	loops := d.st.loops[:0:0]
	for _, l := range d.st.loops {
		if !drop[scene.ElementID(l.Plane)] && !anyDropped(l.Curves, drop) {
			loops = append(loops, l)
		}
	}
	d.st.planes, d.st.curves, d.st.shapes, d.st.loops = planes, curves, shapes, loops
	return nil
}

func anyDropped(ids []scene.ElementID, drop map[scene.ElementID]bool) bool {
	for _, id := range ids {
		if drop[id] {
			return true
		}
	}
	return false
}

func (d *Doc) exists(id scene.ElementID) bool {
	if d.hasPlane(sketch.Handle(id)) {
		return true
	}
	for _, c := range d.st.curves {
		if c.ID == id {
			return true
		}
	}
	for _, s := range d.st.shapes {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Planes returns the stored construction planes.
func (d *Doc) Planes() []host.SketchPlane {
	return append([]host.SketchPlane(nil), d.st.planes...)
}

// Curves returns the stored model lines.
func (d *Doc) Curves() []Curve {
	return append([]Curve(nil), d.st.curves...)
}

// Shapes returns the stored direct shapes.
func (d *Doc) Shapes() []Shape {
	return append([]Shape(nil), d.st.shapes...)
}

// Loops returns the drawn loops whose curves still exist.
func (d *Doc) Loops() []host.Loop {
	return append([]host.Loop(nil), d.st.loops...)
}

// txn is a memdoc transaction.
type txn struct {
	doc      *Doc
	name     string
	snapshot state
	done     bool
}

func (t *txn) end() error {
	if t.done {
		return errors.Wrapf(ErrTransactionClosed, "%q", t.name)
	}
	t.done = true
	t.doc.tx = nil
	return nil
}

// Commit keeps the changes made in the transaction. A failed commit rolls
// the changes back.
func (t *txn) Commit() error {
	if t.done {
		return errors.Wrapf(ErrTransactionClosed, "%q", t.name)
	}
	if err := t.doc.fail(OpCommit); err != nil {
		t.doc.st = t.snapshot
		t.doc.rolled++
		_ = t.end()
		return err
	}
	if err := t.end(); err != nil {
		return err
	}
	t.doc.committed++
	t.doc.log.Printf("transaction %q committed", t.name)
	return nil
}

// RollBack discards the changes made in the transaction.
func (t *txn) RollBack() error {
	if t.done {
		return errors.Wrapf(ErrTransactionClosed, "%q", t.name)
	}
	t.doc.st = t.snapshot
	t.doc.rolled++
	t.doc.log.Printf("transaction %q rolled back", t.name)
	return t.end()
}
