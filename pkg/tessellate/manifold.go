package tessellate

import (
	"fmt"

	"github.com/chazu/directshape/pkg/geom"
	"github.com/dhconnelly/rtreego"
	"gonum.org/v1/gonum/spatial/r3"
)

// welder merges vertices that coincide within a tolerance and hands out
// one id per distinct position.
type welder struct {
	tol   geom.Tolerance
	index *rtreego.Rtree
	n     int
}

type weldedVertex struct {
	id  int
	at  r3.Vec
	ext float64
}

func (v *weldedVertex) Bounds() rtreego.Rect {
	return rtreego.Point{v.at.X, v.at.Y, v.at.Z}.ToRect(v.ext)
}

func newWelder(tol geom.Tolerance) *welder {
	return &welder{tol: tol, index: rtreego.NewTree(3, 25, 50)}
}

func (w *welder) id(p r3.Vec) int {
	eps := w.tol.Epsilon()
	q := rtreego.Point{p.X, p.Y, p.Z}.ToRect(eps)
	best := -1
	for _, s := range w.index.SearchIntersect(q) {
		v := s.(*weldedVertex)
		if w.tol.VecEqual(v.at, p) && (best < 0 || v.id < best) {
			best = v.id
		}
	}
	if best >= 0 {
		return best
	}
	id := w.n
	w.n++
	w.index.Insert(&weldedVertex{id: id, at: p, ext: eps})
	return id
}

type edgeKey [2]int

// closedManifold checks that faces form closed oriented 2-manifolds: every
// directed edge is used exactly once and its reverse is used exactly once.
// It returns a description of the first problem found, or "".
func closedManifold(faces []Face, tol geom.Tolerance) string {
	w := newWelder(tol)
	edges := make(map[edgeKey]int, 3*len(faces))
	for i, f := range faces {
		ids := [3]int{w.id(f.Vertices[0]), w.id(f.Vertices[1]), w.id(f.Vertices[2])}
		if ids[0] == ids[1] || ids[1] == ids[2] || ids[0] == ids[2] {
			return fmt.Sprintf("face %d collapses after vertex welding", i)
		}
		for k := 0; k < 3; k++ {
			edges[edgeKey{ids[k], ids[(k+1)%3]}]++
		}
	}

	open, overused := 0, 0
	for e, n := range edges {
		if n > 1 {
			overused++
			continue
		}
		if edges[edgeKey{e[1], e[0]}] != 1 {
			open++
		}
	}
	switch {
	case overused > 0:
		return fmt.Sprintf("non-manifold: %d edges shared by more than two faces or misoriented", overused)
	case open > 0:
		return fmt.Sprintf("open boundary: %d unmatched edges", open)
	}
	return ""
}
