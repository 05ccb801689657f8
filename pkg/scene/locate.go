package scene

import "github.com/chazu/directshape/pkg/geom"

// Locate searches root depth-first, pre-order, for the face or edge whose
// stable reference equals target and returns the instance transforms
// crossed on the way, outermost first. Only faces are compared for a face
// reference and only edges for an edge reference; a reference of unknown
// kind is never found. The first match wins.
//
// A miss is reported with ok == false and is not an error: the target may
// simply live under another element.
func Locate(root Geometry, target StableRef) (stack TransformStack, ok bool) {
	kind := target.Kind()
	if kind == RefUnknown {
		return TransformStack{}, false
	}
	return locate(root, target, kind, TransformStack{})
}

func locate(g Geometry, target StableRef, kind RefKind, stack TransformStack) (TransformStack, bool) {
	for _, n := range g {
		switch n := n.(type) {
		case *Instance:
			if n == nil {
				continue
			}
			if found, ok := locate(n.Symbol, target, kind, stack.Push(n.Transform)); ok {
				return found, true
			}
		case *Solid:
			if n != nil && n.holds(target, kind) {
				return stack, true
			}
		case *Face:
			if n != nil && kind == RefFace && n.Ref == target {
				return stack, true
			}
		case *Edge:
			if n != nil && kind == RefEdge && n.Ref == target {
				return stack, true
			}
		}
	}
	return TransformStack{}, false
}

func (s *Solid) holds(target StableRef, kind RefKind) bool {
	switch kind {
	case RefFace:
		for _, f := range s.Faces {
			if f != nil && f.Ref == target {
				return true
			}
		}
	case RefEdge:
		for _, e := range s.Edges {
			if e != nil && e.Ref == target {
				return true
			}
		}
	}
	return false
}

// Compose collapses a stack into the single transform that maps the
// innermost local frame into the root frame. Transforms are popped
// innermost first and each popped transform is applied after the running
// total, so for a stack pushed as [T1, T2] the result is T1∘T2 and a
// local point p lands at T1(T2(p)). An empty stack composes to the
// identity.
func Compose(stack TransformStack) geom.Transform {
	total := geom.Identity()
	for {
		t, rest, ok := stack.Pop()
		if !ok {
			return total
		}
		total = t.Multiply(total)
		stack = rest
	}
}

// FindFace returns the face with the given reference in its definition
// frame, with no instance transform applied, together with the transform
// that would place it in the root frame.
func FindFace(root Geometry, ref StableRef) (*Face, geom.Transform, bool) {
	if ref.Kind() != RefFace {
		return nil, geom.Transform{}, false
	}
	var (
		found *Face
		at    geom.Transform
	)
	Walk(root, func(n Node, _ int, xf geom.Transform) bool {
		if f, ok := n.(*Face); ok && f.Ref == ref {
			found, at = f, xf
			return false
		}
		return true
	})
	return found, at, found != nil
}
