package sheetio

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/types"
)

const (
	ContentTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	DefaultFilename     = "resource_mandays_output.xlsx"
	DefaultLongSheet    = "Long Format"
	DefaultSummarySheet = "Summary"
)

// WriteWorkbook writes each dataset to its own sheet, in order, header row
// first. Numbers are stored as numeric cells and nulls as empty cells.
func WriteWorkbook(w io.Writer, sheets ...types.NamedDataset) error {
	if len(sheets) == 0 {
		return errors.New("no sheets to write")
	}
	seen := make(map[string]struct{}, len(sheets))
	for _, s := range sheets {
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("duplicate sheet name %q", s.Name)
		}
		seen[s.Name] = struct{}{}
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("sheet %q: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("sheet %q: %w", s.Name, err)
		}
		if err := writeSheet(f, s.Name, s.Dataset); err != nil {
			return fmt.Errorf("sheet %q: %w", s.Name, err)
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, ds types.Dataset) error {
	header := make([]interface{}, len(ds.Columns))
	for i, c := range ds.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range ds.Rows {
		vals := make([]interface{}, len(row))
		for j, c := range row {
			vals[j] = c.Value()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return err
		}
	}
	return nil
}
