package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// File is the on-disk format for additional resource definitions.
type File struct {
	ResourceTypes []FileResourceType `json:"resourceTypes"`
	Schemas       []ResourceSchema   `json:"schemas"`
}

// FileResourceType declares a resource type and its code prefix.
type FileResourceType struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

const fileSchemaURL = "refdata-schema-file.json"

const fileSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "resourceTypes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "prefix"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "prefix": {"type": "string", "pattern": "^[A-Z][A-Z0-9]{0,7}$"}
        },
        "additionalProperties": false
      }
    },
    "schemas": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["resourceType", "codeField", "pattern", "columns"],
        "properties": {
          "resourceType": {"type": "string", "minLength": 1},
          "codeField": {"type": "string", "minLength": 1},
          "pattern": {"enum": ["primary", "child"]},
          "primaryUniqueKey": {"type": "array", "items": {"type": "string"}},
          "secondaryUniqueKey": {"type": "array", "items": {"type": "string"}},
          "parentCodeField": {"type": "string"},
          "sheetName": {"type": "string"},
          "columns": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["header", "field"],
              "properties": {
                "header": {"type": "string", "minLength": 1},
                "field": {"type": "string", "minLength": 1},
                "required": {"type": "boolean"},
                "transform": {"type": "string"},
                "format": {"type": "string"},
                "aliases": {"type": "array", "items": {"type": "string"}}
              },
              "additionalProperties": false
            }
          }
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`

var compileFileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(fileSchemaJSON))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(fileSchemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(fileSchemaURL)
})

// ParseFile validates data against the schema-file JSON Schema and decodes it.
func ParseFile(data []byte) (*File, error) {
	sch, err := compileFileSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema file definition: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", ErrInvalidSchema, err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return &f, nil
}

// Merge registers the file's resource types, then its schemas.
func (r *Registry) Merge(f *File) error {
	for _, rt := range f.ResourceTypes {
		if err := r.RegisterType(rt.Name, rt.Prefix); err != nil {
			return err
		}
	}
	for _, s := range f.Schemas {
		if err := r.RegisterSchema(s); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile reads a schema file from disk and merges it into the registry.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	f, err := ParseFile(data)
	if err != nil {
		return err
	}
	return r.Merge(f)
}

// Load builds the registry for a configuration: the built-ins plus cfg.File, if set.
func Load(cfg Config) (*Registry, error) {
	r := DefaultRegistry()
	if cfg.File == "" {
		return r, nil
	}
	if err := r.LoadFile(cfg.File); err != nil {
		return nil, err
	}
	return r, nil
}
