package main

import (
	"path/filepath"
	"testing"

	"github.com/chazu/directshape/pkg/config"
	"github.com/chazu/directshape/pkg/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Empty input: no elements, no errors, JSON slices stay non-nil.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	result := NewApp(config.Default()).Evaluate("")

	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.NotNil(t, result.Elements)
	assert.NotNil(t, result.Errors)
	assert.NotNil(t, result.Warnings)
}

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	result := NewApp(config.Default()).Evaluate("(element \"slab\")\n(element \"test\"")

	require.NotEmpty(t, result.Errors, "unmatched parens")
	assert.NotEmpty(t, result.Errors[0].Message)
	assert.Empty(t, result.Elements)
}

// ---------------------------------------------------------------------------
// Unknown references abort before anything is created.
// ---------------------------------------------------------------------------

func TestE2EUnknownReference(t *testing.T) {
	app := NewApp(config.Default())
	result := app.Convert(`(element "wall" (solid (face "wall:1:SURFACE" (tri (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0)))))`,
		"wall:2:SURFACE")

	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "PickObject", "error should name the failing host call")
	assert.Equal(t, "Aborted", result.State)
	assert.Nil(t, result.Mesh)
}

func TestE2EEdgeReference(t *testing.T) {
	source := `(element "beam" (solid (edge "beam:2:LINEAR" (vec3 0 0 0) (vec3 1 0 0))))`
	result := NewApp(config.Default()).Convert(source, "beam:2:LINEAR")
	assert.NotEmpty(t, result.Errors, "an edge reference cannot be converted")
}

// ---------------------------------------------------------------------------
// Validation: errors stop the run, warnings are passed through.
// ---------------------------------------------------------------------------

func TestE2EEmptyReferenceIsError(t *testing.T) {
	result := NewApp(config.Default()).Evaluate(`(element "wall" (solid (face "" (tri (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0)))))`)
	require.NotEmpty(t, result.Errors)
	assert.Empty(t, result.Elements)
}

func TestE2EDuplicateReferenceWarns(t *testing.T) {
	source := `
(def t1 (tri (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0)))
(element "wall" (solid (face "wall:1:SURFACE" t1) (face "wall:1:SURFACE" t1)))`
	result := NewApp(config.Default()).Convert(source, "wall:1:SURFACE")
	require.Empty(t, result.Errors)
	assert.NotEmpty(t, result.Warnings, "duplicate reference")
}

// ---------------------------------------------------------------------------
// Degenerate geometry.
// ---------------------------------------------------------------------------

func TestE2EAllDegenerateFace(t *testing.T) {
	source := `(element "line" (solid (face "line:1:SURFACE" (tri (vec3 0 0 0) (vec3 1 0 0) (vec3 2 0 0)))))`
	result := NewApp(config.Default()).Convert(source, "line:1:SURFACE")
	require.NotEmpty(t, result.Errors, "a face with no usable triangles")
	assert.Equal(t, 1, result.Skipped)
}

func TestE2ESolidTargetOnOpenFace(t *testing.T) {
	cfg := config.Default()
	cfg.Target = "solid"
	result := NewApp(cfg).Convert(readExample(t), "column:7:SURFACE")
	assert.NotEmpty(t, result.Warnings, "mesh fallback")
	assert.Equal(t, "mesh", result.Kind)

	cfg.Fallback = "abort"
	result = NewApp(cfg).Convert(readExample(t), "column:7:SURFACE")
	assert.NotEmpty(t, result.Errors)
}

// ---------------------------------------------------------------------------
// Rapid sequential calls keep the engine consistent.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	app := NewApp(config.Default())

	sources := []string{
		`(element "ok" (solid (face "ok:1:SURFACE" (tri (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0)))))`,
		`(element "broken"`,
		``,
		`(element "family" (instance (vec3 0 0 1)))`,
		`; just a comment`,
		`(element "dup") (element "dup")`,
		`(element "last")`,
	}
	for i, source := range sources {
		assert.NotPanics(t, func() { _ = app.Evaluate(source) }, "iteration %d", i)
	}

	result := app.Evaluate(sources[len(sources)-1])
	require.Empty(t, result.Errors)
	require.Len(t, result.Elements, 1)
	assert.Equal(t, "last", result.Elements[0].ID)
}

// ---------------------------------------------------------------------------
// Export.
// ---------------------------------------------------------------------------

func TestE2EExports(t *testing.T) {
	app := NewApp(config.Default())
	result := app.Convert(readExample(t), "column:7:SURFACE")
	require.Empty(t, result.Errors)

	dir := t.TempDir()
	require.NoError(t, app.ExportSTL(result, filepath.Join(dir, "shape.stl")))

	dxfPath := filepath.Join(dir, "loops.dxf")
	require.NoError(t, app.ExportDXF(result, dxfPath))
	segs, err := export.ReadSegments(dxfPath)
	require.NoError(t, err)
	assert.Len(t, segs, 6)

	xlsxPath := filepath.Join(dir, "faces.xlsx")
	require.NoError(t, app.ExportXLSX(result, xlsxPath))
	rows, err := export.ReadSheet(xlsxPath, export.FacesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3, "header and 2 face rows")

	require.NoError(t, app.ExportPDF(result, filepath.Join(dir, "report.pdf")))
}

func TestE2EExportWithoutShape(t *testing.T) {
	app := NewApp(config.Default())
	result := app.Convert(`(+ 1 2)`, "none:1:SURFACE")
	dir := t.TempDir()
	assert.Equal(t, errNothingConverted, app.ExportSTL(result, filepath.Join(dir, "x.stl")))
	assert.Equal(t, errNothingConverted, app.ExportDXF(result, filepath.Join(dir, "x.dxf")))
	assert.Equal(t, errNothingConverted, app.ExportPDF(result, filepath.Join(dir, "x.pdf")))
}
