package pipeline

import (
	"fmt"
	"log"

	"github.com/chazu/directshape/pkg/config"
	"github.com/chazu/directshape/pkg/geom"
	"github.com/chazu/directshape/pkg/tessellate"
)

// PlaneScope decides whether construction planes and debug loops outlive
// the run that created them.
type PlaneScope int

const (
	// ScopeOperation deletes the planes (and the loops drawn on them) the
	// run created once the shape is persisted.
	ScopeOperation PlaneScope = iota
	// ScopeDocument keeps them and reuses planes left by earlier runs.
	ScopeDocument
)

func (s PlaneScope) String() string {
	switch s {
	case ScopeOperation:
		return config.ScopeOperation
	case ScopeDocument:
		return config.ScopeDocument
	default:
		return fmt.Sprintf("PlaneScope(%d)", int(s))
	}
}

// ParsePlaneScope parses "operation" or "document".
func ParsePlaneScope(s string) (PlaneScope, error) {
	switch s {
	case "", config.ScopeOperation:
		return ScopeOperation, nil
	case config.ScopeDocument:
		return ScopeDocument, nil
	}
	return 0, fmt.Errorf("pipeline: unknown plane scope %q", s)
}

// Options configures a Pipeline.
type Options struct {
	Tolerance     geom.Tolerance
	Strategy      Strategy
	PlaneScope    PlaneScope
	DebugLoops    bool
	ShapeName     string
	Category      string
	Target        tessellate.Target
	Fallback      tessellate.Fallback
	ApplicationID string // DefaultApplicationID when empty

	// Logger receives diagnostics. Nil discards them.
	Logger *log.Logger
	// NewDataID overrides the per-shape id generator.
	NewDataID func() string
}

// DefaultOptions mirrors config.Default.
func DefaultOptions() Options {
	opts, err := FromConfig(config.Default())
	if err != nil {
		panic(fmt.Sprintf("pipeline: default config: %v", err))
	}
	return opts
}

// FromConfig converts a validated configuration into Options.
func FromConfig(cfg config.Config) (Options, error) {
	if err := cfg.Validate(); err != nil {
		return Options{}, err
	}
	strategy, err := ParseStrategy(cfg.Strategy)
	if err != nil {
		return Options{}, err
	}
	scope, err := ParsePlaneScope(cfg.PlaneScope)
	if err != nil {
		return Options{}, err
	}
	target, err := tessellate.ParseTarget(cfg.Target)
	if err != nil {
		return Options{}, err
	}
	fallback, err := tessellate.ParseFallback(cfg.Fallback)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Tolerance:     cfg.Tolerance(),
		Strategy:      strategy,
		PlaneScope:    scope,
		DebugLoops:    cfg.DebugLoops,
		ShapeName:     cfg.ShapeName,
		Category:      cfg.Category,
		Target:        target,
		Fallback:      fallback,
		ApplicationID: cfg.ApplicationID,
	}, nil
}
