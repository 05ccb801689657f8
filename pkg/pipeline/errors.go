package pipeline

import "github.com/pkg/errors"

// ErrCanceled is returned when the user cancels the face pick.
var ErrCanceled = errors.New("pipeline: canceled")

// HostError is a failure reported by the host document. Op names the host
// call that failed.
type HostError struct {
	Op  string
	Err error
}

func newHostError(op string, err error) *HostError {
	return &HostError{Op: op, Err: errors.Wrapf(err, "host %s", op)}
}

func (e *HostError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error.
func (e *HostError) Unwrap() error { return e.Err }

// Cause returns the underlying error for errors.Cause.
func (e *HostError) Cause() error { return e.Err }
