package scene

import (
	"github.com/chazu/directshape/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// NodeKind enumerates the geometry node variants.
type NodeKind int

const (
	NodeInstance NodeKind = iota // placement of symbol geometry
	NodeSolid                    // owns faces and edges
	NodeFace                     // leaf, carries a StableRef
	NodeEdge                     // leaf, carries a StableRef
)

func (k NodeKind) String() string {
	switch k {
	case NodeInstance:
		return "instance"
	case NodeSolid:
		return "solid"
	case NodeFace:
		return "face"
	case NodeEdge:
		return "edge"
	default:
		return "unknown"
	}
}

// Node is one geometry object. Implementations are restricted to this
// package.
type Node interface {
	Kind() NodeKind
	node()
}

// Geometry is an ordered collection of sibling nodes, as returned by a
// host geometry query.
type Geometry []Node

// Instance places its Symbol geometry into the parent frame with Transform.
type Instance struct {
	Transform geom.Transform `json:"transform"`
	Symbol    Geometry       `json:"symbol"`
}

// Solid owns an unordered set of faces and edges.
type Solid struct {
	Faces []*Face `json:"faces"`
	Edges []*Edge `json:"edges"`
}

// Face is a leaf surface. Mesh holds its triangulation in the face's
// local (definition) frame.
type Face struct {
	Ref  StableRef       `json:"ref"`
	Mesh []geom.Triangle `json:"mesh"`
}

// Edge is a leaf curve, approximated by its end points.
type Edge struct {
	Ref   StableRef `json:"ref"`
	Start r3.Vec    `json:"start"`
	End   r3.Vec    `json:"end"`
}

func (*Instance) Kind() NodeKind { return NodeInstance }
func (*Solid) Kind() NodeKind    { return NodeSolid }
func (*Face) Kind() NodeKind     { return NodeFace }
func (*Edge) Kind() NodeKind     { return NodeEdge }

func (*Instance) node() {}
func (*Solid) node()    {}
func (*Face) node()     {}
func (*Edge) node()     {}

// Triangulate returns a copy of the face's triangles.
func (f *Face) Triangulate() []geom.Triangle {
	out := make([]geom.Triangle, len(f.Mesh))
	copy(out, f.Mesh)
	return out
}

// Clone returns a deep copy with fresh node pointers. Hosts use it to hand
// out geometry views that share nothing with their own state.
func (g Geometry) Clone() Geometry {
	if g == nil {
		return nil
	}
	out := make(Geometry, 0, len(g))
	for _, n := range g {
		out = append(out, cloneNode(n))
	}
	return out
}

func cloneNode(n Node) Node {
	switch n := n.(type) {
	case *Instance:
		if n == nil {
			return n
		}
		return &Instance{Transform: n.Transform, Symbol: n.Symbol.Clone()}
	case *Solid:
		if n == nil {
			return n
		}
		s := &Solid{}
		for _, f := range n.Faces {
			s.Faces = append(s.Faces, f.clone())
		}
		for _, e := range n.Edges {
			s.Edges = append(s.Edges, e.clone())
		}
		return s
	case *Face:
		return n.clone()
	case *Edge:
		return n.clone()
	default:
		return n
	}
}

func (f *Face) clone() *Face {
	if f == nil {
		return nil
	}
	return &Face{Ref: f.Ref, Mesh: f.Triangulate()}
}

func (e *Edge) clone() *Edge {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}
