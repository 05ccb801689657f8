package main

import (
	"io"
	"log"

	"github.com/chazu/directshape/pkg/config"
	"github.com/chazu/directshape/pkg/engine"
	"github.com/chazu/directshape/pkg/export"
	"github.com/chazu/directshape/pkg/host"
	"github.com/chazu/directshape/pkg/host/memdoc"
	"github.com/chazu/directshape/pkg/kernel"
	"github.com/chazu/directshape/pkg/kernel/sdfx"
	"github.com/chazu/directshape/pkg/pipeline"
	"github.com/chazu/directshape/pkg/scene"
	"github.com/chazu/directshape/pkg/sketch"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r3"
)

// colorPalette assigns distinct colors to construction planes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// shapeColor is the color of the persisted shape.
const shapeColor = "#95A5A6"

// App evaluates scene sources and converts picked faces into direct shapes.
type App struct {
	engine   *engine.Engine
	exporter kernel.Exporter
	cfg      config.Config
	log      *log.Logger
}

// MeshData is the JSON-serializable form of a converted shape.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// LoopData is one debug loop drawn on a construction plane.
type LoopData struct {
	Plane   string       `json:"plane"`
	Corners [][3]float64 `json:"corners"`
	Color   string       `json:"color"`
}

// EvalErrorData is a JSON-serializable evaluation error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// ElementData summarizes one evaluated element.
type ElementData struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Refs     []string `json:"refs"`
}

// EvalResult is the result of evaluating a scene source.
type EvalResult struct {
	Elements []ElementData   `json:"elements"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`

	doc *scene.Document
}

// ConvertResult is the result of converting one face.
type ConvertResult struct {
	State    string          `json:"state"`
	Trace    []string        `json:"trace"`
	Mesh     *MeshData       `json:"mesh,omitempty"`
	Loops    []LoopData      `json:"loops"`
	Kind     string          `json:"kind,omitempty"`
	Accepted int             `json:"accepted"`
	Skipped  int             `json:"skipped"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`

	mesh    *kernel.Mesh
	loops   []host.Loop
	summary export.Summary
}

// NewApp creates an App using cfg and the sdfx STL exporter.
func NewApp(cfg config.Config) *App {
	return &App{
		engine:   engine.NewEngine(),
		exporter: sdfx.New(),
		cfg:      cfg,
		log:      log.New(io.Discard, "", 0),
	}
}

// SetLogger routes diagnostics to l.
func (a *App) SetLogger(l *log.Logger) {
	a.log = l
}

// Evaluate takes Lisp source and lists the elements and references it
// defines, with validation findings as warnings.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Elements: []ElementData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	doc, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	for _, v := range scene.ValidateDocument(doc, a.cfg.Tolerance()) {
		entry := EvalErrorData{Message: v.Error()}
		if v.Severity == scene.SeverityError {
			result.Errors = append(result.Errors, entry)
		} else {
			result.Warnings = append(result.Warnings, entry)
		}
	}
	if len(result.Errors) > 0 {
		return result
	}

	for _, id := range doc.Order {
		e := doc.Get(id)
		result.Elements = append(result.Elements, ElementData{
			ID:       string(e.ID),
			Name:     e.Name,
			Category: e.Category,
			Refs:     lo.Map(e.Refs(), func(r scene.StableRef, _ int) string { return string(r) }),
		})
	}
	result.doc = doc
	return result
}

// Convert evaluates source and converts the face named by ref into a direct
// shape in a fresh in-memory document.
func (a *App) Convert(source, ref string) ConvertResult {
	result := ConvertResult{
		Trace:    []string{},
		Loops:    []LoopData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	ev := a.Evaluate(source)
	result.Warnings = append(result.Warnings, ev.Warnings...)
	if len(ev.Errors) > 0 {
		result.Errors = append(result.Errors, ev.Errors...)
		return result
	}

	opts, err := pipeline.FromConfig(a.cfg)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	opts.Logger = a.log

	doc := memdoc.New(ev.doc, memdoc.WithLogger(a.log))
	res, err := pipeline.New(doc, opts).Execute(doc.Picker(scene.StableRef(ref)))
	result.State = res.State.String()
	result.Trace = lo.Map(res.Trace, func(s pipeline.State, _ int) string { return s.String() })
	result.Accepted, result.Skipped = res.Accepted, res.Skipped
	if err != nil {
		a.log.Printf("Convert %s: %v", ref, err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	result.Kind = res.ShapeKind.String()
	for _, issue := range res.Shape.Issues {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: issue})
	}

	m := res.Shape.Mesh(a.cfg.ShapeName)
	result.mesh = m
	result.Mesh = &MeshData{
		Vertices: toFloat32(m.Vertices),
		Normals:  toFloat32(m.Normals),
		Indices:  m.Indices,
		PartName: m.Name,
		Color:    shapeColor,
	}

	result.loops = res.Loops
	result.summary = export.Summary{
		Name:     a.cfg.ShapeName,
		Ref:      ref,
		Kind:     result.Kind,
		Faces:    res.Shape.Triangles(),
		Skipped:  res.Skipped,
		Loops:    res.Loops,
		Issues:   res.Shape.Issues,
		DataID:   res.DataID,
		Category: a.cfg.Category,
	}
	colors := map[sketch.Handle]string{}
	for _, l := range res.Loops {
		c, ok := colors[l.Plane]
		if !ok {
			c = colorPalette[len(colors)%len(colorPalette)]
			colors[l.Plane] = c
		}
		result.Loops = append(result.Loops, LoopData{
			Plane:   string(l.Plane),
			Corners: lo.Map(l.Corners, func(v r3.Vec, _ int) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }),
			Color:   c,
		})
	}
	return result
}

// ExportSTL writes the converted shape of res to path.
func (a *App) ExportSTL(res ConvertResult, path string) error {
	if res.mesh == nil {
		return errNothingConverted
	}
	return a.exporter.Export(path, res.mesh)
}

// ExportDXF writes the debug loops of res to path, one layer per plane.
func (a *App) ExportDXF(res ConvertResult, path string) error {
	if res.mesh == nil {
		return errNothingConverted
	}
	return export.WriteLoops(path, res.loops)
}

// ExportPDF writes a one-page report of res to path.
func (a *App) ExportPDF(res ConvertResult, path string) error {
	if res.mesh == nil {
		return errNothingConverted
	}
	return export.WritePDF(path, res.summary)
}

// ExportXLSX writes the faces and planes of res to an XLSX workbook.
func (a *App) ExportXLSX(res ConvertResult, path string) error {
	if res.mesh == nil {
		return errNothingConverted
	}
	return export.WriteXLSX(path, res.summary)
}

func toFloat32(in []float64) []float32 {
	return lo.Map(in, func(f float64, _ int) float32 { return float32(f) })
}
