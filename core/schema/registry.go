package schema

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
)

var prefixPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,7}$`)

// Registry holds the code-prefix table and the schema of every resource type.
// It is populated at startup and read concurrently afterwards.
type Registry struct {
	mu       sync.RWMutex
	prefixes map[string]string
	schemas  map[string]ResourceSchema
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		prefixes: make(map[string]string),
		schemas:  make(map[string]ResourceSchema),
	}
}

// RegisterType binds a resource type to its code prefix.
func (r *Registry) RegisterType(resourceType, prefix string) error {
	if resourceType == "" {
		return fmt.Errorf("%w: empty resource type", ErrInvalidSchema)
	}
	if !prefixPattern.MatchString(prefix) {
		return fmt.Errorf("%w: %s: prefix %q must be upper-case alphanumeric", ErrInvalidSchema, resourceType, prefix)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefixes[resourceType] = prefix
	return nil
}

// RegisterSchema validates and stores a schema. Its resource type must
// already have a prefix.
func (r *Registry) RegisterSchema(s ResourceSchema) error {
	if err := s.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prefixes[s.ResourceType]; !ok {
		return fmt.Errorf("%w: %s: no code prefix registered", ErrInvalidSchema, s.ResourceType)
	}
	r.schemas[s.ResourceType] = s
	return nil
}

// Prefix returns the code prefix of a resource type.
func (r *Registry) Prefix(resourceType string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prefixes[resourceType]
	return p, ok
}

// ResourceTypeForPrefix is the inverse of Prefix.
func (r *Registry) ResourceTypeForPrefix(prefix string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for rt, p := range r.prefixes {
		if p == prefix {
			return rt, true
		}
	}
	return "", false
}

// Schema returns the schema registered for a resource type.
func (r *Registry) Schema(resourceType string) (ResourceSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[resourceType]
	if !ok {
		return ResourceSchema{}, fmt.Errorf("%w: %s", ErrUnknownSchema, resourceType)
	}
	return s, nil
}

// Schemas returns all registered schemas ordered by resource type.
func (r *Registry) Schemas() []ResourceSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ResourceSchema, 0, len(r.schemas))
	for _, s := range r.schemas {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ResourceType < out[j].ResourceType
	})
	return out
}
