package scene

import "github.com/chazu/directshape/pkg/geom"

// Visitor is called for every node in depth-first pre-order. xf is the
// cumulative transform from the root frame to the frame the node lives in.
// Returning false stops the walk.
type Visitor func(n Node, depth int, xf geom.Transform) bool

// Walk visits every non-nil node of g in depth-first pre-order. A solid's
// faces are visited before its edges.
func Walk(g Geometry, fn Visitor) {
	walk(g, 0, geom.Identity(), fn)
}

func walk(g Geometry, depth int, xf geom.Transform, fn Visitor) bool {
	for _, n := range g {
		switch n := n.(type) {
		case *Instance:
			if n == nil {
				continue
			}
			if !fn(n, depth, xf) {
				return false
			}
			if !walk(n.Symbol, depth+1, xf.Multiply(n.Transform), fn) {
				return false
			}
		case *Solid:
			if n == nil {
				continue
			}
			if !fn(n, depth, xf) {
				return false
			}
			for _, f := range n.Faces {
				if f != nil && !fn(f, depth+1, xf) {
					return false
				}
			}
			for _, e := range n.Edges {
				if e != nil && !fn(e, depth+1, xf) {
					return false
				}
			}
		case *Face:
			if n != nil && !fn(n, depth, xf) {
				return false
			}
		case *Edge:
			if n != nil && !fn(n, depth, xf) {
				return false
			}
		}
	}
	return true
}

// refOf returns the stable reference of a leaf node.
func refOf(n Node) (StableRef, bool) {
	switch n := n.(type) {
	case *Face:
		return n.Ref, true
	case *Edge:
		return n.Ref, true
	}
	return "", false
}
