package tabular

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"refdata-manager/core/schema"

	"github.com/xuri/excelize/v2"
)

// Rows is a lazy, one-shot iterator over the data rows of a sheet.
// Parse the buffer again to iterate twice.
type Rows struct {
	file    *excelize.File
	raw     *excelize.Rows
	schema  schema.ResourceSchema
	columns []int

	rowNum  int
	pending []string
	current ImportRow
	err     error
	done    bool
}

// Parse opens a workbook and positions an iterator after its header row.
// The sheet is schema.SheetName when present, otherwise the first sheet.
func Parse(buf []byte, s schema.ResourceSchema) (*Rows, error) {
	if len(s.Columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingSchema, s.ResourceType)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformedInput)
	}
	sheet := sheets[0]
	if s.SheetName != "" && slices.Contains(sheets, s.SheetName) {
		sheet = s.SheetName
	}

	raw, err := f.Rows(sheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	r := &Rows{file: f, raw: raw, schema: s}

	header, ok, err := r.nextRaw()
	if err == nil && ok {
		r.columns = matchHeaders(s.Columns, header)
		r.pending, ok, err = r.nextRaw()
	}
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if !ok {
		_ = r.Close()
		return nil, fmt.Errorf("%w: %s", ErrEmptySheet, sheet)
	}
	return r, nil
}

func (r *Rows) nextRaw() ([]string, bool, error) {
	if !r.raw.Next() {
		return nil, false, r.raw.Error()
	}
	r.rowNum++
	cols, err := r.raw.Columns()
	if err != nil {
		return nil, false, err
	}
	return cols, true, nil
}

// Next advances to the next non-blank data row.
func (r *Rows) Next() bool {
	if r.done {
		return false
	}
	for {
		cells := r.pending
		r.pending = nil
		if cells == nil {
			var ok bool
			var err error
			cells, ok, err = r.nextRaw()
			if err != nil {
				r.err = fmt.Errorf("%w: row %d: %v", ErrMalformedInput, r.rowNum, err)
				r.done = true
				return false
			}
			if !ok {
				r.done = true
				return false
			}
		}
		if isBlank(cells) {
			continue
		}
		r.current = r.build(cells)
		return true
	}
}

// Row returns the row Next advanced to.
func (r *Rows) Row() ImportRow {
	return r.current
}

// Err returns the error that stopped iteration, if any.
func (r *Rows) Err() error {
	return r.err
}

// Close releases the workbook.
func (r *Rows) Close() error {
	r.done = true
	if err := r.raw.Close(); err != nil {
		_ = r.file.Close()
		return err
	}
	return r.file.Close()
}

func (r *Rows) build(cells []string) ImportRow {
	row := ImportRow{RowNumber: r.rowNum, Fields: make(map[string]string)}

	for ci, col := range r.schema.Columns {
		raw := ""
		if idx := r.columns[ci]; idx >= 0 && idx < len(cells) {
			raw = cells[idx]
		}

		value := ""
		if strings.TrimSpace(raw) != "" {
			v, err := schema.ApplyTransform(col.Transform, raw)
			if err != nil {
				row.Errors = append(row.Errors, FieldError{Field: col.Field, Message: err.Error()})
				continue
			}
			value = v
		}
		if value == "" {
			if col.Required && !r.schema.IsCodeField(col.Field) {
				row.Errors = append(row.Errors, FieldError{
					Field:   col.Field,
					Message: fmt.Sprintf("%s is required", col.Header),
				})
			}
			continue
		}
		row.Fields[col.Field] = value
	}
	return row
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
