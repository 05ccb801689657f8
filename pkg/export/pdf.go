package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNoFaces is returned when a report is requested for a summary with no
// faces.
var ErrNoFaces = errors.New("export: no faces to report")

type rgb struct{ R, G, B int }

// planeColors tell the construction planes apart in the plan view.
var planeColors = []rgb{
	{R: 33, G: 150, B: 243},
	{R: 255, G: 152, B: 0},
	{R: 76, G: 175, B: 80},
	{R: 156, G: 39, B: 176},
	{R: 0, G: 188, B: 212},
	{R: 244, G: 67, B: 54},
}

// Page layout (A4 portrait, mm).
const (
	pageWidth   = 210.0
	pageHeight  = 297.0
	margin      = 15.0
	lineHeight  = 6.0
	viewTop     = 90.0
	viewHeight  = 120.0
	tableHeight = 5.0
)

// WritePDF writes a one-page report: run statistics, a plan view (XY
// projection) of the faces with their debug loops, and the list of
// construction planes.
func WritePDF(path string, s Summary) error {
	if len(s.Faces) == 0 {
		return ErrNoFaces
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, margin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(pageWidth-2*margin, 10, s.Name, "", 1, "L", false, 0, "")

	lo3, hi3 := s.bounds()
	planes, counts := s.Planes()
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{
		fmt.Sprintf("Reference: %s", s.Ref),
		fmt.Sprintf("Category: %s | Kind: %s | Data id: %s", s.Category, s.Kind, s.DataID),
		fmt.Sprintf("Faces: %d | Skipped: %d | Area: %.4g", len(s.Faces), s.Skipped, s.Area()),
		fmt.Sprintf("Bounds: (%.4g, %.4g, %.4g) - (%.4g, %.4g, %.4g)", lo3[0], lo3[1], lo3[2], hi3[0], hi3[1], hi3[2]),
		fmt.Sprintf("Debug loops: %d on %d planes", len(s.Loops), len(planes)),
	} {
		pdf.SetX(margin)
		pdf.CellFormat(pageWidth-2*margin, lineHeight, line, "", 1, "L", false, 0, "")
	}
	for _, issue := range s.Issues {
		pdf.SetX(margin)
		pdf.SetTextColor(180, 0, 0)
		pdf.CellFormat(pageWidth-2*margin, lineHeight, "Note: "+issue, "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	drawPlanView(pdf, s, lo3, hi3)

	y := viewTop + viewHeight + 8
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(margin, y)
	pdf.CellFormat(120, tableHeight, "Construction plane", "B", 0, "L", false, 0, "")
	pdf.CellFormat(30, tableHeight, "Loops", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for i, h := range planes {
		y += tableHeight
		if y > pageHeight-margin-tableHeight {
			break
		}
		c := planeColors[i%len(planeColors)]
		pdf.SetTextColor(c.R, c.G, c.B)
		pdf.SetX(margin)
		pdf.CellFormat(120, tableHeight, string(h), "", 0, "L", false, 0, "")
		pdf.CellFormat(30, tableHeight, fmt.Sprintf("%d", counts[h]), "", 1, "R", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

// drawPlanView draws the faces in grey and each loop in its plane's color,
// scaled to fit the view box.
func drawPlanView(pdf *fpdf.Fpdf, s Summary, lo3, hi3 [3]float64) {
	viewWidth := pageWidth - 2*margin
	pdf.SetDrawColor(180, 180, 180)
	pdf.SetLineWidth(0.2)
	pdf.Rect(margin, viewTop, viewWidth, viewHeight, "D")

	w, h := hi3[0]-lo3[0], hi3[1]-lo3[1]
	scale := 1.0
	if w > 0 || h > 0 {
		scale = math.Min(safeDiv(viewWidth-10, w), safeDiv(viewHeight-10, h))
	}
	// Centered, y up.
	ox := margin + (viewWidth-w*scale)/2
	oy := viewTop + (viewHeight+h*scale)/2
	px := func(x, y float64) (float64, float64) {
		return ox + (x-lo3[0])*scale, oy - (y-lo3[1])*scale
	}

	pdf.SetDrawColor(120, 120, 120)
	pdf.SetLineWidth(0.3)
	for _, t := range s.Faces {
		drawClosed(pdf, t[:], px)
	}

	planes, _ := s.Planes()
	color := make(map[string]rgb, len(planes))
	for i, p := range planes {
		color[string(p)] = planeColors[i%len(planeColors)]
	}
	pdf.SetLineWidth(0.5)
	for _, l := range s.Loops {
		c := color[string(l.Plane)]
		pdf.SetDrawColor(c.R, c.G, c.B)
		drawClosed(pdf, l.Corners, px)
	}
	pdf.SetDrawColor(0, 0, 0)
}

func drawClosed(pdf *fpdf.Fpdf, pts []r3.Vec, px func(x, y float64) (float64, float64)) {
	n := len(pts)
	for i := range pts {
		a, b := pts[(i-1+n)%n], pts[i]
		x1, y1 := px(a.X, a.Y)
		x2, y2 := px(b.X, b.Y)
		pdf.Line(x1, y1, x2, y2)
	}
}

func safeDiv(a, b float64) float64 {
	if b <= 0 {
		return math.Inf(1)
	}
	return a / b
}
