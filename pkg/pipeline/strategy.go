package pipeline

import (
	"fmt"

	"github.com/chazu/directshape/pkg/geom"
	"github.com/chazu/directshape/pkg/scene"
)

// Strategy selects where the correction transform for a picked face comes
// from.
type Strategy int

const (
	// StrategyNested searches the element's geometry tree for the face and
	// composes the instance transforms on the way down.
	StrategyNested Strategy = iota
	// StrategyInstance uses the element's own total transform.
	StrategyInstance
	// StrategyLocation offsets every vertex by the element's point location.
	StrategyLocation
	// StrategyNone applies no correction.
	StrategyNone
)

func (s Strategy) String() string {
	switch s {
	case StrategyNested:
		return "nested"
	case StrategyInstance:
		return "instance"
	case StrategyLocation:
		return "location"
	case StrategyNone:
		return "none"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy parses a strategy name. The empty string means nested.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "nested":
		return StrategyNested, nil
	case "instance":
		return StrategyInstance, nil
	case "location":
		return StrategyLocation, nil
	case "none":
		return StrategyNone, nil
	}
	return 0, fmt.Errorf("pipeline: unknown strategy %q", s)
}

// resolution is the outcome of resolving a correction transform.
type resolution struct {
	transform geom.Transform
	located   bool
	depth     int
}

// resolve computes the correction transform for ref inside e. A miss is
// not an error: it resolves to the identity.
func (s Strategy) resolve(e *scene.Element, ref scene.StableRef) resolution {
	switch s {
	case StrategyNested:
		stack, ok := scene.Locate(e.Geometry, ref)
		if !ok {
			return resolution{transform: geom.Identity()}
		}
		return resolution{transform: scene.Compose(stack), located: true, depth: stack.Len()}
	case StrategyInstance:
		if e.Transform != nil {
			return resolution{transform: *e.Transform, located: true}
		}
	case StrategyLocation:
		if e.Location != nil {
			return resolution{transform: geom.Translation(*e.Location), located: true}
		}
	}
	return resolution{transform: geom.Identity()}
}
