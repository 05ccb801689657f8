package pipeline

import "fmt"

// State is a step of one pipeline run.
type State int

const (
	StateIdle State = iota
	StateLocating
	StateTransforming
	StateAssembling
	StatePersisting
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLocating:
		return "Locating"
	case StateTransforming:
		return "Transforming"
	case StateAssembling:
		return "Assembling"
	case StatePersisting:
		return "Persisting"
	case StateDone:
		return "Done"
	case StateAborted:
		return "Aborted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted
}

// next lists the forward transitions. Aborted is reachable from every
// non-terminal state.
var next = map[State]State{
	StateIdle:         StateLocating,
	StateLocating:     StateTransforming,
	StateTransforming: StateAssembling,
	StateAssembling:   StatePersisting,
	StatePersisting:   StateDone,
}

// CanTransition reports whether from -> to is a legal transition.
func CanTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateAborted {
		return true
	}
	return next[from] == to
}
