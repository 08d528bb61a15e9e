package tabular

import (
	"fmt"

	"refdata-manager/core/schema"
	"refdata-manager/core/utils"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Render writes records as a workbook: a header row of column headers, then
// one row per record with each column's format applied. Missing fields render
// as empty cells.
func Render(records []Record, s schema.ResourceSchema) ([]byte, error) {
	if len(s.Columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingSchema, s.ResourceType)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := defaultSheet
	if s.SheetName != "" {
		sheet = s.SheetName
		if err := xl.SetSheetName(xl.GetSheetName(0), sheet); err != nil {
			return nil, fmt.Errorf("failed to name sheet %q: %w", sheet, err)
		}
	}

	header := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		header[i] = col.Header
	}
	if err := xl.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for ri, rec := range records {
		values := make([]string, len(s.Columns))
		for ci, col := range s.Columns {
			values[ci] = schema.ApplyFormat(col.Format, utils.ToString(rec[col.Field]))
		}
		cell, err := excelize.CoordinatesToCellName(1, ri+2)
		if err != nil {
			return nil, err
		}
		if err := xl.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", ri+2, err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderTemplate writes a header-only workbook for users to fill in.
func RenderTemplate(s schema.ResourceSchema) ([]byte, error) {
	return Render(nil, s)
}
