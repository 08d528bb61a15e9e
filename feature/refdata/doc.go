// Package refdata is the reference data feature: code generation, workbook
// import and export for every registered resource type.
//
// # Routes
//
//	GET  /refdata/schemas                 registered resource schemas
//	POST /refdata/codes/:resourceType     allocate codes (pattern, parentCode, count)
//	GET  /refdata/codes/:code             decompose a code
//	POST /refdata/import/:resourceType    import an uploaded workbook or bucket object
//	GET  /refdata/export/:resourceType    download, or upload with upload=true
//	GET  /refdata/template/:resourceType  empty workbook with the resource's headers
//	GET  /refdata/objects                 workbooks waiting under the import prefix
//	GET  /refdata/integrity               table columns and bucket layout check
//
// Records of every resource type share the reference_records table; codes
// come from the sequence_counters table, and each imported row allocates and
// writes in a single transaction.
//
// A Watcher imports workbooks dropped into a local directory, which is what
// the watch command runs.
package refdata
