// Package reconcile merges a batch of imported rows into stored records.
//
// Rows are processed strictly in file order. Each row goes through:
//
//  1. Field errors: rows the parser already flagged fail as-is.
//  2. Duplicate check: the row's dedup key (code, else primary unique key,
//     else secondary unique key) is compared with the keys of earlier rows.
//     A repeat fails without touching the store.
//  3. Lookup: by explicit code, then primary key, then secondary key.
//  4. Mode gate: insertOnly rejects existing records, updateOnly rejects
//     absent ones, upsert accepts both.
//  5. Write: absent records are created, allocating a code when the row has
//     none; existing records are updated by merging the row's fields.
//
// Steps 3 to 5 run in one unit of work per row, so a failed insert also
// releases the code it allocated. A failing row is reported in the
// ImportResult and the batch moves on.
//
// # Dry runs
//
// With Options.DryRun the engine runs the same steps against a write-buffering
// overlay of the store and previews codes instead of allocating them. Later
// rows observe the buffered writes of earlier rows, so the classification of a
// dry run matches that of a real run from the same starting state.
//
// # Usage Example
//
//	allocator := sequence.NewAllocator(sequence.NewGormStore(db), registry)
//	engine := reconcile.NewEngine(store, allocator, logger)
//
//	rows, err := tabular.Parse(buf, docTypeSchema)
//	if err != nil {
//	    return err
//	}
//	defer rows.Close()
//
//	result, err := engine.Reconcile(ctx, rows, docTypeSchema, reconcile.Options{Mode: reconcile.ModeUpsert})
package reconcile
