// Package utils provides common conversion helpers used when moving values
// between workbook cells, JSON record fields and database rows.
package utils
