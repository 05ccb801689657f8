package scene

import "github.com/chazu/directshape/pkg/geom"

// TransformStack is the chain of instance transforms from the root of a
// geometry tree down to the node holding a target. It is immutable: Push
// returns a new stack sharing the tail, so a branch that fails during a
// search can never leave anything behind in the caller's stack.
type TransformStack struct {
	top   *stackFrame
	depth int
}

type stackFrame struct {
	t    geom.Transform
	next *stackFrame
}

// StackOf builds a stack by pushing ts in order, outermost first.
func StackOf(ts ...geom.Transform) TransformStack {
	var s TransformStack
	for _, t := range ts {
		s = s.Push(t)
	}
	return s
}

// Push returns s with t on top.
func (s TransformStack) Push(t geom.Transform) TransformStack {
	return TransformStack{top: &stackFrame{t: t, next: s.top}, depth: s.depth + 1}
}

// Pop returns the innermost transform and the remaining stack.
func (s TransformStack) Pop() (geom.Transform, TransformStack, bool) {
	if s.top == nil {
		return geom.Transform{}, s, false
	}
	return s.top.t, TransformStack{top: s.top.next, depth: s.depth - 1}, true
}

// Len returns the number of transforms on the stack.
func (s TransformStack) Len() int {
	return s.depth
}

// IsEmpty reports whether the stack holds no transforms.
func (s TransformStack) IsEmpty() bool {
	return s.top == nil
}

// Transforms returns the transforms in push order, outermost first.
func (s TransformStack) Transforms() []geom.Transform {
	out := make([]geom.Transform, s.depth)
	i := s.depth - 1
	for f := s.top; f != nil; f = f.next {
		out[i] = f.t
		i--
	}
	return out
}
