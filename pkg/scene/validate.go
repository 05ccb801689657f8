package scene

import (
	"fmt"

	"github.com/chazu/directshape/pkg/geom"
)

// ValidationSeverity indicates whether a finding makes the element unusable
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // element geometry is unusable
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Element  ElementID
	Ref      StableRef // zero if the finding is not about a leaf
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Ref.IsZero() {
		return fmt.Sprintf("[%s] element %s: %s", e.Severity, e.Element, e.Message)
	}
	return fmt.Sprintf("[%s] element %s, ref %s: %s", e.Severity, e.Element, e.Ref, e.Message)
}

// Validate checks one element's geometry tree:
//   - empty stable references (error)
//   - references that are neither faces nor edges (warning)
//   - duplicate references; lookups return the first (warning)
//   - non-finite instance transforms (error) and singular ones (warning)
//
// It is read-only.
func Validate(e *Element, tol geom.Tolerance) []ValidationError {
	var errs []ValidationError
	seen := make(map[StableRef]bool)

	add := func(ref StableRef, sev ValidationSeverity, format string, args ...any) {
		errs = append(errs, ValidationError{
			Element:  e.ID,
			Ref:      ref,
			Message:  fmt.Sprintf(format, args...),
			Severity: sev,
		})
	}

	Walk(e.Geometry, func(n Node, depth int, _ geom.Transform) bool {
		if in, ok := n.(*Instance); ok {
			switch {
			case !in.Transform.IsFinite():
				add("", SeverityError, "instance at depth %d has a non-finite transform", depth)
			case in.Transform.IsSingular(tol):
				add("", SeverityWarning, "instance at depth %d has a singular transform", depth)
			}
			return true
		}
		ref, ok := refOf(n)
		if !ok {
			return true
		}
		switch {
		case ref.IsZero():
			add("", SeverityError, "%s at depth %d has no stable reference", n.Kind(), depth)
			return true
		case ref.Kind() == RefUnknown:
			add(ref, SeverityWarning, "reference is neither a face nor an edge")
		case n.Kind() == NodeFace && ref.Kind() != RefFace,
			n.Kind() == NodeEdge && ref.Kind() != RefEdge:
			add(ref, SeverityWarning, "%s carries a %s reference", n.Kind(), ref.Kind())
		}
		if seen[ref] {
			add(ref, SeverityWarning, "duplicate reference; only the first occurrence is reachable")
		}
		seen[ref] = true
		return true
	})

	return errs
}

// ValidateDocument validates every element in insertion order.
func ValidateDocument(d *Document, tol geom.Tolerance) []ValidationError {
	var errs []ValidationError
	for _, id := range d.Order {
		errs = append(errs, Validate(d.Elements[id], tol)...)
	}
	return errs
}

// HasErrors reports whether any finding is an error.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}
