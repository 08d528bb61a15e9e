package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidMode is returned for a write mode other than the three supported ones.
	ErrInvalidMode = errors.New("invalid write mode")
	// ErrCodeTaken is returned by RecordStore.Create when another record of the
	// resource type already holds the code. Stores translate their own
	// duplicate-key errors into it so reports never carry driver messages.
	ErrCodeTaken = errors.New("code already taken")
)

// Mode governs whether a batch row may insert, update, or both.
type Mode string

const (
	// ModeUpsert inserts absent records and updates existing ones.
	ModeUpsert Mode = "upsert"
	// ModeInsertOnly fails rows whose record already exists.
	ModeInsertOnly Mode = "insertOnly"
	// ModeUpdateOnly fails rows whose record does not exist.
	ModeUpdateOnly Mode = "updateOnly"
)

// ParseMode resolves a mode name case-insensitively. An empty name means upsert.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "upsert":
		return ModeUpsert, nil
	case "insertonly", "insert_only", "insert":
		return ModeInsertOnly, nil
	case "updateonly", "update_only", "update":
		return ModeUpdateOnly, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	return m == ModeUpsert || m == ModeInsertOnly || m == ModeUpdateOnly
}

// Options controls one reconciliation batch.
type Options struct {
	// Mode is the write mode applied to every row.
	Mode Mode

	// DryRun classifies every row exactly like a real run but persists nothing
	// and advances no sequence counter.
	DryRun bool
}

// KeyKind selects which unique key of a schema a lookup uses.
type KeyKind string

const (
	// KeyPrimary is the schema's primary unique key.
	KeyPrimary KeyKind = "primary"
	// KeySecondary is the schema's secondary unique key.
	KeySecondary KeyKind = "secondary"
)

// Record is a stored resource as seen by the engine.
type Record struct {
	// ID is the store's identifier. Empty until the record is created.
	ID string

	// Code is the resource code, unique per resource type.
	Code string

	// ParentCode is the code of the parent resource for child-pattern schemas.
	ParentCode string

	// PrimaryKey is the rendered primary unique key, or "" when incomplete.
	PrimaryKey string

	// SecondaryKey is the rendered secondary unique key, or "" when incomplete.
	SecondaryKey string

	// Fields holds every field value keyed by schema field name, code included.
	Fields map[string]string
}

func (r *Record) clone() *Record {
	c := *r
	c.Fields = make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		c.Fields[k] = v
	}
	return &c
}

// RowError is a row-scoped failure.
type RowError struct {
	// Row is the 1-based sheet row number.
	Row int `json:"row"`

	// Field is the offending field, if the failure concerns one.
	Field string `json:"field,omitempty"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// DuplicateRow reports a row whose dedup key repeats an earlier row of the batch.
type DuplicateRow struct {
	Row            int    `json:"row"`
	DuplicateOfRow int    `json:"duplicateOfRow"`
	UniqueKey      string `json:"uniqueKey"`
}

// ImportResult is the per-batch report. It is returned as data even when
// every row failed.
type ImportResult struct {
	// Success counts rows that ended created or updated.
	Success int `json:"success"`

	// Failed counts rows with field errors, duplicates, mode mismatches or write failures.
	Failed int `json:"failed"`

	// Created counts inserted records.
	Created int `json:"created"`

	// Updated counts merged records.
	Updated int `json:"updated"`

	// Skipped is kept for report compatibility. Every row currently ends
	// created, updated or failed, so it stays zero.
	Skipped int `json:"skipped"`

	// Errors lists row failures in file order.
	Errors []RowError `json:"errors"`

	// DuplicateRows lists in-batch duplicates in file order.
	DuplicateRows []DuplicateRow `json:"duplicateRows"`

	// IsDryRun is true when nothing was persisted.
	IsDryRun bool `json:"isDryRun"`
}

func newResult(dryRun bool) *ImportResult {
	return &ImportResult{
		Errors:        []RowError{},
		DuplicateRows: []DuplicateRow{},
		IsDryRun:      dryRun,
	}
}

// Total is the number of rows that reached a terminal state.
func (r *ImportResult) Total() int {
	return r.Success + r.Failed + r.Skipped
}
