package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/directshape/pkg/scene"
)

// EvalTimeout bounds one scene evaluation. A script that loops forever
// never yields a document.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a scene script runs past its limit.
	ErrTimeout = errors.New("engine: scene evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer Evaluate call started.
	ErrSuperseded = errors.New("engine: scene evaluation superseded")
)

// sceneOutcome is what an evaluation goroutine hands back: the document
// filled by the element builtins, or the user-code errors that stopped it.
type sceneOutcome struct {
	doc      *scene.Document
	evalErrs []EvalError
	err      error
}

// current returns the generation of the newest Evaluate call.
func (e *Engine) current() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// awaitScene waits up to limit for the outcome of evaluation gen. On
// timeout the goroutine keeps running and its document is dropped when it
// arrives; a late outcome for an older generation is never returned.
func (e *Engine) awaitScene(ch <-chan sceneOutcome, gen uint64, limit time.Duration) (*scene.Document, []EvalError, error) {
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case out := <-ch:
		if gen != e.current() {
			return nil, nil, fmt.Errorf("%w: generation %d", ErrSuperseded, gen)
		}
		return out.doc, out.evalErrs, out.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, limit)
	}
}
