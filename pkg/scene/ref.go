package scene

import "strings"

// StableRef is an opaque, document-persistent identifier of a face or edge.
// It stays the same across repeated extraction of the same geometry even
// though the in-memory nodes differ.
type StableRef string

// RefKind classifies what a StableRef points at.
type RefKind int

const (
	RefUnknown RefKind = iota
	RefFace
	RefEdge
)

func (k RefKind) String() string {
	switch k {
	case RefFace:
		return "face"
	case RefEdge:
		return "edge"
	default:
		return "unknown"
	}
}

const (
	faceSuffix = "SURFACE"
	edgeSuffix = "LINEAR"
	refSep     = ":"
)

// Kind classifies the reference by its trailing type token.
func (r StableRef) Kind() RefKind {
	s := string(r)
	switch {
	case strings.HasSuffix(s, faceSuffix):
		return RefFace
	case strings.HasSuffix(s, edgeSuffix):
		return RefEdge
	default:
		return RefUnknown
	}
}

// ElementID returns the leading element token of the reference, or the
// empty ID when the reference has no separator.
func (r StableRef) ElementID() ElementID {
	s := string(r)
	i := strings.Index(s, refSep)
	if i <= 0 {
		return ""
	}
	return ElementID(s[:i])
}

// IsZero reports whether r is empty.
func (r StableRef) IsZero() bool {
	return r == ""
}

func (r StableRef) String() string {
	return string(r)
}
