package export

import (
	"math"

	"github.com/chazu/directshape/pkg/geom"
	"github.com/chazu/directshape/pkg/host"
	"github.com/chazu/directshape/pkg/sketch"
	"github.com/samber/lo"
)

// Summary is what the reports show about one converted face.
type Summary struct {
	Name     string
	Ref      string
	Kind     string
	Faces    []geom.Triangle
	Skipped  int
	Loops    []host.Loop
	Issues   []string
	DataID   string
	Category string
}

// Area returns the total area of the faces.
func (s Summary) Area() float64 {
	return lo.SumBy(s.Faces, func(t geom.Triangle) float64 { return t.Area() })
}

// Planes returns the distinct construction planes of the loops in first-use
// order, with the number of loops drawn on each.
func (s Summary) Planes() ([]sketch.Handle, map[sketch.Handle]int) {
	counts := lo.CountValuesBy(s.Loops, func(l host.Loop) sketch.Handle { return l.Plane })
	order := lo.Uniq(lo.Map(s.Loops, func(l host.Loop, _ int) sketch.Handle { return l.Plane }))
	return order, counts
}

// bounds returns the axis-aligned extent of the faces.
func (s Summary) bounds() (lo3, hi3 [3]float64) {
	if len(s.Faces) == 0 {
		return
	}
	lo3 = [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi3 = [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, t := range s.Faces {
		for _, v := range t {
			c := [3]float64{v.X, v.Y, v.Z}
			for i := range c {
				lo3[i] = math.Min(lo3[i], c[i])
				hi3[i] = math.Max(hi3[i], c[i])
			}
		}
	}
	return
}
