// Package scene models the host's geometry tree for one element: nested
// instances placing symbol geometry under a transform, solids owning faces
// and edges, and the stable reference identifiers that name those faces
// and edges across repeated geometry queries.
//
// Geometry returned by a host query is an ephemeral view. Lookups are
// always keyed on StableRef, never on pointer identity.
package scene
