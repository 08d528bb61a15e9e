// Package schema declares how each reference-data resource type is imported,
// exported and numbered.
//
// A ResourceSchema lists the workbook columns of a resource, which field holds its
// code, which fields form its primary and secondary unique keys, and whether its
// codes are time-partitioned (PatternPrimary) or derived from a parent record's
// code (PatternChild). Per-column transforms and formats are referenced by name
// and resolved from a fixed registry, so schemas stay plain data that can be
// loaded from JSON and validated in isolation.
//
// The Registry maps resource types to code prefixes and schemas. DefaultRegistry
// carries the built-in types; Load merges an optional schema file on top.
package schema
