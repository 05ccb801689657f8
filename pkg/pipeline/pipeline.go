// Package pipeline turns a picked face into a persisted standalone shape.
//
// A run locates the face inside its element's geometry, resolves the
// transform that places the face's definition-frame mesh into the
// document, draws a debug loop per triangle on shared construction planes,
// assembles the triangles into a shape and persists it. All document
// changes happen inside one transaction that is rolled back on failure.
package pipeline

import (
	"io"
	"log"

	"github.com/chazu/directshape/pkg/geom"
	"github.com/chazu/directshape/pkg/host"
	"github.com/chazu/directshape/pkg/scene"
	"github.com/chazu/directshape/pkg/sketch"
	"github.com/chazu/directshape/pkg/tessellate"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// TransactionName is the name of the transaction a run opens.
const TransactionName = "Create elements"

// PickPrompt is shown when Execute asks for a face.
const PickPrompt = "Select a face to convert to a DirectShape"

// Result describes one run. It is returned even when the run aborts.
type Result struct {
	State    State
	Trace    []State
	Strategy Strategy

	Located    bool
	StackDepth int
	Transform  geom.Transform

	Accepted int
	Skipped  int

	PlanesCreated int
	PlanesReused  int
	LoopsDrawn    int
	Loops         []host.Loop

	Shape     *tessellate.Shape
	ShapeKind tessellate.ShapeKind
	FaceCount int
	ShapeID   scene.ElementID

	ApplicationID string
	DataID        string
}

// Pipeline runs face-to-shape conversions against one document. Runs must
// not overlap; each uses its own plane registry.
type Pipeline struct {
	doc  host.Document
	opts Options
	log  *log.Logger
}

// New returns a pipeline over doc.
func New(doc host.Document, opts Options) *Pipeline {
	l := opts.Logger
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	if opts.NewDataID == nil {
		opts.NewDataID = newDataID
	}
	if opts.ApplicationID == "" {
		opts.ApplicationID = DefaultApplicationID()
	}
	return &Pipeline{doc: doc, opts: opts, log: l}
}

// Execute asks picker for a face and runs the pipeline on it. A canceled
// pick aborts with ErrCanceled before anything in the document changes.
func (p *Pipeline) Execute(picker host.Picker) (res *Result, err error) {
	r := p.newRun()
	defer r.recoverHost(&res, &err)

	r.op = "PickObject"
	pick, err := picker.PickFace(PickPrompt)
	if err != nil {
		if errors.Is(err, host.ErrPickCanceled) {
			p.log.Printf("pick canceled")
			return r.res.abort(p.log), ErrCanceled
		}
		return r.res.abort(p.log), newHostError("PickObject", err)
	}
	return p.Run(pick)
}

// run is the per-call state of Run. op names the host call in progress.
type run struct {
	*Pipeline
	res *Result
	tx  host.Transaction
	op  string
}

func (p *Pipeline) newRun() *run {
	return &run{Pipeline: p, res: p.newResult()}
}

// Run converts the picked face into a direct shape. A panic raised by the
// host is reported as a *HostError and aborts the run like any other host
// failure.
func (p *Pipeline) Run(pick host.Pick) (res *Result, err error) {
	r := p.newRun()
	defer r.recoverHost(&res, &err)

	if err := r.execute(pick); err != nil {
		return r.abort(err), err
	}
	return r.res, nil
}

// recoverHost turns a panic escaping a host call into an aborted result.
func (r *run) recoverHost(res **Result, err *error) {
	v := recover()
	if v == nil {
		return
	}
	op := r.op
	if op == "" {
		op = "unknown"
	}
	*err = newHostError(op, errors.Errorf("panic: %v", v))
	*res = r.abort(*err)
}

// abort rolls back the open transaction, if any, and ends the run.
func (r *run) abort(err error) *Result {
	if tx := r.tx; tx != nil {
		r.tx = nil
		if rbErr := rollBack(tx); rbErr != nil {
			r.log.Printf("rollback: %v", rbErr)
		}
	}
	r.log.Printf("aborted: %v", err)
	return r.res.abort(r.log)
}

func rollBack(tx host.Transaction) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = errors.Errorf("panic: %v", v)
		}
	}()
	return tx.RollBack()
}

func (p *Pipeline) newResult() *Result {
	return &Result{
		State:     StateIdle,
		Trace:     []State{StateIdle},
		Strategy:  p.opts.Strategy,
		Transform: geom.Identity(),
	}
}

func (res *Result) enter(s State, l *log.Logger) {
	if !CanTransition(res.State, s) {
		panic("pipeline: illegal transition " + res.State.String() + " -> " + s.String())
	}
	l.Printf("%s -> %s", res.State, s)
	res.State = s
	res.Trace = append(res.Trace, s)
}

func (res *Result) abort(l *log.Logger) *Result {
	if !res.State.Terminal() {
		res.enter(StateAborted, l)
	}
	return res
}

func (r *run) execute(pick host.Pick) error {
	res := r.res
	opts := r.opts

	res.enter(StateLocating, r.log)
	p := r.Pipeline
	r.op = "GetElement"
	el, err := p.doc.Element(pick.Element)
	if err != nil {
		return newHostError("GetElement", err)
	}
	face, ok := el.FaceByRef(pick.Ref)
	if !ok {
		return newHostError("GetGeometryObjectFromReference",
			errors.Wrapf(host.ErrNotFound, "face %q in element %q", pick.Ref, pick.Element))
	}
	r.log.Printf("face reference picked: %s", pick.Ref)

	rs := opts.Strategy.resolve(el, pick.Ref)
	res.Located, res.StackDepth, res.Transform = rs.located, rs.depth, rs.transform
	r.log.Printf("%s strategy: located=%t depth=%d", opts.Strategy, rs.located, rs.depth)

	res.enter(StateTransforming, r.log)
	tris := lo.Map(face.Triangulate(), func(t geom.Triangle, _ int) geom.Triangle {
		return t.Transformed(rs.transform)
	})

	res.enter(StateAssembling, r.log)
	r.op = "StartTransaction"
	r.tx, err = p.doc.StartTransaction(TransactionName)
	if err != nil {
		return newHostError("StartTransaction", err)
	}
	planes, err := r.registry()
	if err != nil {
		return err
	}

	builder := tessellate.NewBuilder(opts.Tolerance)
	builder.OpenConnectedFaceSet()
	for i, t := range tris {
		if !builder.AddFace(t) {
			r.log.Printf("triangle %d skipped: degenerate", i)
			continue
		}
		if opts.DebugLoops {
			if err := r.drawLoop(planes, t); err != nil {
				return err
			}
		}
	}
	builder.CloseConnectedFaceSet()
	res.Accepted, res.Skipped = builder.Accepted(), builder.Rejected()
	res.PlanesCreated, res.PlanesReused = planes.Created(), planes.Reused()

	shape, err := builder.Build(opts.Target, opts.Fallback)
	if err != nil {
		return errors.Wrap(err, "pipeline: build")
	}
	res.Shape, res.ShapeKind, res.FaceCount = shape, shape.Kind, shape.FaceCount()

	res.enter(StatePersisting, r.log)
	res.ApplicationID = opts.ApplicationID
	res.DataID = opts.NewDataID()
	r.op = "DirectShape.CreateElement"
	res.ShapeID, err = p.doc.CreateDirectShape(host.ShapeSpec{
		Category:      opts.Category,
		ApplicationID: res.ApplicationID,
		DataID:        res.DataID,
		Name:          opts.ShapeName,
		Shape:         shape,
	})
	if err != nil {
		return newHostError("DirectShape.CreateElement", err)
	}

	if opts.PlaneScope == ScopeOperation {
		if created := planes.CreatedHandles(); len(created) > 0 {
			ids := lo.Map(created, func(h sketch.Handle, _ int) scene.ElementID { return scene.ElementID(h) })
			r.op = "Delete"
			if err := p.doc.Delete(ids...); err != nil {
				return newHostError("Delete", err)
			}
		}
	}

	// A failed commit has already rolled back.
	r.op = "Commit"
	err = r.tx.Commit()
	r.tx = nil
	if err != nil {
		return newHostError("Commit", err)
	}
	res.enter(StateDone, r.log)
	return nil
}

// registry builds the run's plane registry, seeded from the document when
// planes are document-scoped.
func (r *run) registry() (*sketch.Registry, error) {
	factory := sketch.FactoryFunc(func(pl geom.Plane) (sketch.Handle, error) {
		r.op = "SketchPlane.Create"
		return r.doc.CreateSketchPlane(pl)
	})
	reg := sketch.NewRegistry(factory, sketch.WithTolerance(r.opts.Tolerance), sketch.WithLogger(r.log))
	if r.opts.PlaneScope != ScopeDocument {
		return reg, nil
	}
	r.op = "SketchPlanes"
	existing, err := r.doc.SketchPlanes()
	if err != nil {
		return nil, newHostError("SketchPlanes", err)
	}
	for _, sp := range existing {
		if sp.Name != host.UnassociatedPlaneName {
			continue
		}
		if err := reg.Seed(sp.Plane, sp.ID); err != nil {
			r.log.Printf("skipping plane %s: %v", sp.ID, err)
		}
	}
	return reg, nil
}

// drawLoop draws t as a closed loop on the registry plane through its
// first corner.
func (r *run) drawLoop(planes *sketch.Registry, t geom.Triangle) error {
	n, _ := t.Normal(r.opts.Tolerance)
	h, err := planes.GetOrCreate(t[0], n)
	if err != nil {
		return newHostError("SketchPlane.Create", err)
	}
	corners := t[:]
	r.op = "NewModelCurve"
	curves, err := r.doc.DrawModelLoop(h, corners)
	if err != nil {
		return newHostError("NewModelCurve", err)
	}
	r.res.LoopsDrawn++
	r.res.Loops = append(r.res.Loops, host.Loop{
		Plane:   h,
		Corners: append(corners[:0:0], corners...),
		Curves:  curves,
	})
	return nil
}
