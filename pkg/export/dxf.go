// Package export writes the results of a run for inspection outside the
// host: debug wireframe loops as DXF, and a summary of the converted shape
// as a PDF report or an XLSX workbook.
package export

import (
	"fmt"
	"strings"

	"github.com/chazu/directshape/pkg/host"
	"github.com/chazu/directshape/pkg/sketch"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
	"gonum.org/v1/gonum/spatial/r3"
)

// Segment is one 3D line.
type Segment struct {
	Start r3.Vec
	End   r3.Vec
}

// LayerName returns the DXF layer used for loops on plane h.
func LayerName(h sketch.Handle) string {
	r := strings.NewReplacer("<", "", ">", "", "/", "-", "\\", "-", ":", "-",
		";", "-", "?", "", "*", "", "|", "-", "=", "-", "\"", "", "'", "", " ", "_")
	return "PLANE_" + r.Replace(string(h))
}

// WriteLoops writes every loop as LINE entities, one layer per
// construction plane. Line i of a loop joins corner (i-1 mod n) to
// corner i.
func WriteLoops(path string, loops []host.Loop) error {
	d := dxf.NewDrawing()
	layers := make(map[string]bool)
	for _, l := range loops {
		name := LayerName(l.Plane)
		if !layers[name] {
			if _, err := d.AddLayer(name, dxf.DefaultColor, dxf.DefaultLineType, false); err != nil {
				return fmt.Errorf("export: layer %s: %w", name, err)
			}
			layers[name] = true
		}
		if err := d.ChangeLayer(name); err != nil {
			return fmt.Errorf("export: layer %s: %w", name, err)
		}
		for _, s := range host.LoopSegments(l.Corners) {
			if _, err := d.Line(s[0].X, s[0].Y, s[0].Z, s[1].X, s[1].Y, s[1].Z); err != nil {
				return fmt.Errorf("export: line: %w", err)
			}
		}
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

// ReadSegments returns the LINE entities of a DXF file in file order.
// Other entity types are skipped.
func ReadSegments(path string) ([]Segment, error) {
	d, err := dxf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("export: open %s: %w", path, err)
	}
	var segs []Segment
	for _, ent := range d.Entities() {
		l, ok := ent.(*entity.Line)
		if !ok {
			continue
		}
		segs = append(segs, Segment{
			Start: r3.Vec{X: l.Start[0], Y: l.Start[1], Z: l.Start[2]},
			End:   r3.Vec{X: l.End[0], Y: l.End[1], Z: l.End[2]},
		})
	}
	return segs, nil
}
