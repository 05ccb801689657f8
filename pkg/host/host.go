// Package host describes the host CAD document the pipeline works against:
// element lookup, transactions, construction planes, model curves and
// standalone shape persistence. Implementations live elsewhere (memdoc for
// an in-memory document).
package host

import (
	"errors"

	"github.com/chazu/directshape/pkg/geom"
	"github.com/chazu/directshape/pkg/scene"
	"github.com/chazu/directshape/pkg/sketch"
	"github.com/chazu/directshape/pkg/tessellate"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrNotFound is returned when an element or reference does not exist.
	ErrNotFound = errors.New("host: not found")
	// ErrPickCanceled is returned by a Picker when the user cancels.
	ErrPickCanceled = errors.New("host: pick canceled")
)

// UnassociatedPlaneName is the name hosts give construction planes created
// from raw geometry rather than from a level or reference plane.
const UnassociatedPlaneName = "<not associated>"

// Pick is a picked face: the owning element and the face's stable ref.
type Pick struct {
	Element scene.ElementID
	Ref     scene.StableRef
}

// Picker asks the user to pick a face.
type Picker interface {
	PickFace(prompt string) (Pick, error)
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(prompt string) (Pick, error)

// PickFace calls f.
func (f PickerFunc) PickFace(prompt string) (Pick, error) { return f(prompt) }

// Transaction groups document changes. Exactly one of Commit or RollBack
// ends it.
type Transaction interface {
	Commit() error
	RollBack() error
}

// ShapeSpec describes a standalone shape to persist.
type ShapeSpec struct {
	Category      string
	ApplicationID string
	DataID        string
	Name          string
	Shape         *tessellate.Shape
}

// SketchPlane is a construction plane stored in the document.
type SketchPlane struct {
	ID    sketch.Handle
	Plane geom.Plane
	Name  string
}

// Loop is a closed polyline of model curves drawn on a construction plane.
type Loop struct {
	Plane   sketch.Handle
	Corners []r3.Vec
	Curves  []scene.ElementID
}

// Document is the host document. Methods that change the document require
// an open transaction.
type Document interface {
	Element(id scene.ElementID) (*scene.Element, error)
	StartTransaction(name string) (Transaction, error)
	CreateSketchPlane(p geom.Plane) (sketch.Handle, error)
	SketchPlanes() ([]SketchPlane, error)
	DrawModelLoop(plane sketch.Handle, corners []r3.Vec) ([]scene.ElementID, error)
	CreateDirectShape(spec ShapeSpec) (scene.ElementID, error)
	Delete(ids ...scene.ElementID) error
}

// LoopSegments returns the segments of the closed loop through corners.
// Segment i joins corner (i-1 mod n) to corner i.
func LoopSegments(corners []r3.Vec) [][2]r3.Vec {
	n := len(corners)
	if n < 2 {
		return nil
	}
	segs := make([][2]r3.Vec, n)
	for i := range corners {
		segs[i] = [2]r3.Vec{corners[(i-1+n)%n], corners[i]}
	}
	return segs
}
