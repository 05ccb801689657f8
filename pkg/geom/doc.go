// Package geom holds the small amount of 3D math the face-to-shape
// pipeline needs: a single shared tolerance, affine transforms, planes
// with tolerance-based equality, and triangles. Points and vectors are
// gonum r3.Vec values.
package geom
