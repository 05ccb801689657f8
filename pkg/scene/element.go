package scene

import (
	"fmt"

	"github.com/chazu/directshape/pkg/geom"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ElementID identifies an element within a document.
type ElementID string

// Element is a host document element together with its geometry tree.
// Transform, when set, is the element's own total placement (an instance
// element). Location, when set, is a simple point placement.
type Element struct {
	ID        ElementID       `json:"id"`
	Name      string          `json:"name,omitempty"`
	Category  string          `json:"category,omitempty"`
	Geometry  Geometry        `json:"geometry"`
	Transform *geom.Transform `json:"transform,omitempty"`
	Location  *r3.Vec         `json:"location,omitempty"`
}

// FaceByRef returns the face named by ref in its definition frame. The
// result carries no instance transform; callers that need root-frame
// coordinates must resolve one separately.
func (e *Element) FaceByRef(ref StableRef) (*Face, bool) {
	f, _, ok := FindFace(e.Geometry, ref)
	return f, ok
}

// Refs returns every face and edge reference in depth-first pre-order.
func (e *Element) Refs() []StableRef {
	var nodes []Node
	Walk(e.Geometry, func(n Node, _ int, _ geom.Transform) bool {
		nodes = append(nodes, n)
		return true
	})
	return lo.FilterMap(nodes, func(n Node, _ int) (StableRef, bool) {
		return refOf(n)
	})
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	c := *e
	c.Geometry = e.Geometry.Clone()
	if e.Transform != nil {
		t := *e.Transform
		c.Transform = &t
	}
	if e.Location != nil {
		l := *e.Location
		c.Location = &l
	}
	return &c
}

// Document is a snapshot of the elements of one host document.
type Document struct {
	Elements map[ElementID]*Element `json:"elements"`
	Order    []ElementID            `json:"order"`
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{Elements: make(map[ElementID]*Element)}
}

// Add registers e. IDs must be unique and non-empty.
func (d *Document) Add(e *Element) error {
	if e == nil || e.ID == "" {
		return fmt.Errorf("scene: element has no id")
	}
	if _, exists := d.Elements[e.ID]; exists {
		return fmt.Errorf("scene: duplicate element id %q", e.ID)
	}
	d.Elements[e.ID] = e
	d.Order = append(d.Order, e.ID)
	return nil
}

// Get returns the element with the given ID, or nil.
func (d *Document) Get(id ElementID) *Element {
	return d.Elements[id]
}

// Len returns the number of elements.
func (d *Document) Len() int {
	return len(d.Elements)
}

// ResolveRef returns the element owning ref: first by the reference's
// leading element token, then by scanning elements in insertion order.
func (d *Document) ResolveRef(ref StableRef) (*Element, bool) {
	if e := d.Elements[ref.ElementID()]; e != nil {
		if lo.Contains(e.Refs(), ref) {
			return e, true
		}
	}
	for _, id := range d.Order {
		e := d.Elements[id]
		if lo.Contains(e.Refs(), ref) {
			return e, true
		}
	}
	return nil, false
}
