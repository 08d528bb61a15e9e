// Package tabular reads and writes resource workbooks.
//
// Parse matches the header row of a sheet to the columns of a
// schema.ResourceSchema and yields one ImportRow per non-blank data row,
// with column transforms applied. Render is the reverse: it lays out records
// under the schema's headers with column formats applied.
package tabular
