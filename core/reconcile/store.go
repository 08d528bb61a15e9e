package reconcile

import (
	"context"

	"refdata-manager/core/schema"
	"refdata-manager/core/tabular"
)

// RecordStore persists the records of every resource type.
// Lookups return nil, nil when nothing matches.
type RecordStore interface {
	// FindByCode returns the record of resourceType with the given code.
	FindByCode(ctx context.Context, resourceType, code string) (*Record, error)

	// FindByKey returns the record whose rendered unique key of the given kind equals key.
	FindByKey(ctx context.Context, resourceType string, kind KeyKind, key string) (*Record, error)

	// Create inserts rec and fills in its ID. A code held by another record
	// of the resource type yields ErrCodeTaken.
	Create(ctx context.Context, resourceType string, rec *Record) error

	// Update overwrites the stored record identified by rec.ID.
	Update(ctx context.Context, resourceType string, rec *Record) error

	// InTx runs fn as one unit of work. Stores and code sources called with
	// the context passed to fn join it.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CodeSource issues resource codes. *sequence.Allocator implements it.
type CodeSource interface {
	Allocate(ctx context.Context, resourceType string, pattern schema.Pattern, parentCode string) (string, error)
	Preview(ctx context.Context, resourceType string, pattern schema.Pattern, parentCode string, offset int) (string, error)
	Scope(resourceType string, pattern schema.Pattern, parentCode string) (string, error)
}

// RowSource is an ordered, one-shot stream of rows. *tabular.Rows implements it.
type RowSource interface {
	Next() bool
	Row() tabular.ImportRow
	Err() error
}

// SliceSource adapts an in-memory slice to RowSource.
type SliceSource struct {
	rows []tabular.ImportRow
	pos  int
}

// NewSliceSource creates a RowSource over rows.
func NewSliceSource(rows []tabular.ImportRow) *SliceSource {
	return &SliceSource{rows: rows}
}

// Next implements RowSource.
func (s *SliceSource) Next() bool {
	if s.pos >= len(s.rows) {
		return false
	}
	s.pos++
	return true
}

// Row implements RowSource.
func (s *SliceSource) Row() tabular.ImportRow {
	return s.rows[s.pos-1]
}

// Err implements RowSource.
func (s *SliceSource) Err() error {
	return nil
}
