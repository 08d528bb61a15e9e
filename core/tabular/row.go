package tabular

import "errors"

var (
	// ErrMalformedInput is returned when the buffer is not a readable workbook.
	ErrMalformedInput = errors.New("malformed workbook")
	// ErrEmptySheet is returned when the sheet has no data row below the header.
	ErrEmptySheet = errors.New("sheet has no data rows")
	// ErrMissingSchema is returned when a schema declares no columns.
	ErrMissingSchema = errors.New("schema has no columns")
)

// FieldError is a row-scoped problem with one field. It does not abort parsing.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportRow is one data row keyed by schema field name. Blank cells are left
// out of Fields.
type ImportRow struct {
	RowNumber int               `json:"rowNumber"`
	Fields    map[string]string `json:"fields"`
	Errors    []FieldError      `json:"errors,omitempty"`
}

// Get returns the value of field, or "" when the row does not carry it.
func (r ImportRow) Get(field string) string {
	return r.Fields[field]
}

// Record is one stored record handed to the renderer, keyed by field name.
type Record map[string]any
