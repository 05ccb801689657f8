package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook written by WriteXLSX.
const (
	FacesSheet  = "Faces"
	PlanesSheet = "Planes"
)

var faceHeader = []interface{}{"Face", "X0", "Y0", "Z0", "X1", "Y1", "Z1", "X2", "Y2", "Z2", "Area"}

// WriteXLSX writes a workbook with one row per face (corners and area) and
// one row per construction plane (loop count).
func WriteXLSX(path string, s Summary) error {
	if len(s.Faces) == 0 {
		return ErrNoFaces
	}

	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(0)
	if err := f.SetSheetName(first, FacesSheet); err != nil {
		return fmt.Errorf("export: sheet: %w", err)
	}
	if err := setRow(f, FacesSheet, 1, faceHeader); err != nil {
		return err
	}
	for i, t := range s.Faces {
		row := []interface{}{i + 1}
		for _, v := range t {
			row = append(row, v.X, v.Y, v.Z)
		}
		row = append(row, t.Area())
		if err := setRow(f, FacesSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(PlanesSheet); err != nil {
		return fmt.Errorf("export: sheet: %w", err)
	}
	if err := setRow(f, PlanesSheet, 1, []interface{}{"Plane", "Loops"}); err != nil {
		return err
	}
	planes, counts := s.Planes()
	for i, h := range planes {
		if err := setRow(f, PlanesSheet, i+2, []interface{}{string(h), counts[h]}); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

// ReadSheet returns the rows of one sheet of a workbook as strings.
func ReadSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("export: open %s: %w", path, err)
	}
	defer f.Close()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("export: read %s: %w", sheet, err)
	}
	return rows, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("export: cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("export: row %d: %w", row, err)
	}
	return nil
}
