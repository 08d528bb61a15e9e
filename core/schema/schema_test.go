package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validSchema() ResourceSchema {
	return ResourceSchema{
		ResourceType:     "docType",
		CodeField:        "code",
		Pattern:          PatternPrimary,
		PrimaryUniqueKey: []string{"code"},
		Columns: []Column{
			{Header: "Code", Field: "code"},
			{Header: "Name", Field: "name", Required: true},
		},
	}
}

func TestResourceSchema_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *ResourceSchema)
		wantErr string
	}{
		{"Valid", func(s *ResourceSchema) {}, ""},
		{"No Columns", func(s *ResourceSchema) { s.Columns = nil }, "Columns"},
		{"Bad Pattern", func(s *ResourceSchema) { s.Pattern = "weekly" }, "Pattern"},
		{"Code Not Column", func(s *ResourceSchema) { s.CodeField = "id" }, `field "id" is not a column`},
		{"Key Not Column", func(s *ResourceSchema) { s.SecondaryUniqueKey = []string{"title"} }, `field "title" is not a column`},
		{"Duplicate Field", func(s *ResourceSchema) {
			s.Columns = append(s.Columns, Column{Header: "Other", Field: "name"})
		}, "duplicate column field"},
		{"Unknown Transform", func(s *ResourceSchema) { s.Columns[1].Transform = "rot13" }, "unknown transform"},
		{"Unknown Format", func(s *ResourceSchema) { s.Columns[1].Format = "fancy" }, "unknown format"},
		{"Child Without Parent", func(s *ResourceSchema) { s.Pattern = PatternChild }, "requires parentCodeField"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSchema()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidSchema)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestResourceSchema_Column(t *testing.T) {
	s := validSchema()

	col, ok := s.Column("name")
	assert.True(t, ok)
	assert.True(t, col.Required)

	_, ok = s.Column("missing")
	assert.False(t, ok)

	assert.True(t, s.IsCodeField("code"))
	assert.True(t, s.KeyIsCodeOnly([]string{"code"}))
	assert.False(t, s.KeyIsCodeOnly([]string{"code", "name"}))
}
