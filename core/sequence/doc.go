// Package sequence allocates human-readable resource codes.
//
// Each code draws from a counter identified by a scope string. Primary
// codes are partitioned by resource type and calendar month
// ("docType:202403" yields DT-202403-000001), child codes by resource type and
// parent code ("regulationClause:RG-202403-000001" yields
// RG-202403-000001-RC-0001). Counters live in a Store; GormStore serializes
// allocations with a row lock so that concurrent callers never receive the
// same value.
package sequence
