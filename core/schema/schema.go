package schema

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

// Pattern selects how codes for a resource are rendered and partitioned.
type Pattern string

const (
	// PatternPrimary renders {prefix}-{yyyyMM}-{seq:06d}, partitioned by month.
	PatternPrimary Pattern = "primary"
	// PatternChild renders {parentCode}-{prefix}-{seq:04d}, partitioned by parent.
	PatternChild Pattern = "child"
)

var (
	// ErrUnknownSchema is returned when no schema is registered for a resource type.
	ErrUnknownSchema = errors.New("unknown resource schema")
	// ErrInvalidSchema wraps every schema validation failure.
	ErrInvalidSchema = errors.New("invalid resource schema")
)

// Column maps one workbook column to one record field.
type Column struct {
	Header    string   `json:"header" validate:"required"`
	Field     string   `json:"field" validate:"required"`
	Required  bool     `json:"required,omitempty"`
	Transform string   `json:"transform,omitempty"`
	Format    string   `json:"format,omitempty"`
	Aliases   []string `json:"aliases,omitempty"`
}

// ResourceSchema is the static import/export configuration of one resource type.
// It is immutable once registered.
type ResourceSchema struct {
	ResourceType       string   `json:"resourceType" validate:"required"`
	CodeField          string   `json:"codeField" validate:"required"`
	Pattern            Pattern  `json:"pattern" validate:"required,oneof=primary child"`
	PrimaryUniqueKey   []string `json:"primaryUniqueKey,omitempty"`
	SecondaryUniqueKey []string `json:"secondaryUniqueKey,omitempty"`
	ParentCodeField    string   `json:"parentCodeField,omitempty"`
	SheetName          string   `json:"sheetName,omitempty"`
	Columns            []Column `json:"columns" validate:"required,min=1,dive"`
}

var validate = validator.New()

// Validate checks field-level constraints and that every referenced field
// is one of the schema's columns.
func (s ResourceSchema) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSchema, s.ResourceType, err)
	}

	seen := make(map[string]struct{}, len(s.Columns))
	for _, col := range s.Columns {
		if _, dup := seen[col.Field]; dup {
			return fmt.Errorf("%w: %s: duplicate column field %q", ErrInvalidSchema, s.ResourceType, col.Field)
		}
		seen[col.Field] = struct{}{}
		if col.Transform != "" && !HasTransform(col.Transform) {
			return fmt.Errorf("%w: %s: unknown transform %q", ErrInvalidSchema, s.ResourceType, col.Transform)
		}
		if col.Format != "" && !HasFormat(col.Format) {
			return fmt.Errorf("%w: %s: unknown format %q", ErrInvalidSchema, s.ResourceType, col.Format)
		}
	}

	referenced := []string{s.CodeField}
	referenced = append(referenced, s.PrimaryUniqueKey...)
	referenced = append(referenced, s.SecondaryUniqueKey...)
	if s.ParentCodeField != "" {
		referenced = append(referenced, s.ParentCodeField)
	}
	for _, field := range referenced {
		if _, ok := seen[field]; !ok {
			return fmt.Errorf("%w: %s: field %q is not a column", ErrInvalidSchema, s.ResourceType, field)
		}
	}

	if s.Pattern == PatternChild && s.ParentCodeField == "" {
		return fmt.Errorf("%w: %s: child pattern requires parentCodeField", ErrInvalidSchema, s.ResourceType)
	}
	return nil
}

// Column returns the column bound to field.
func (s ResourceSchema) Column(field string) (Column, bool) {
	for _, col := range s.Columns {
		if col.Field == field {
			return col, true
		}
	}
	return Column{}, false
}

// IsCodeField reports whether field holds the resource code.
func (s ResourceSchema) IsCodeField(field string) bool {
	return field == s.CodeField
}

// KeyIsCodeOnly reports whether key consists of the code field alone.
func (s ResourceSchema) KeyIsCodeOnly(key []string) bool {
	return slices.Equal(key, []string{s.CodeField})
}
