package pipeline

import "github.com/google/uuid"

// applicationName seeds the stable application id.
const applicationName = "github.com/chazu/directshape"

// DefaultApplicationID returns the application id used when none is
// configured. It is the same on every run.
func DefaultApplicationID() string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(applicationName)).String()
}

// newDataID returns a fresh per-shape id.
func newDataID() string {
	return uuid.NewString()
}
