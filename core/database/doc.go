// Package database handles database connections, transactions and schema inspection.
//
// It wraps GORM so the rest of the service can stay agnostic of the configured
// driver (MySQL, PostgreSQL or SQLite).
//
// # Transactions
//
// A transaction can be carried in a context.Context with WithTx. Stores obtain
// their handle through Conn, so a sequence allocation and the insert of the
// record it numbers commit or roll back together when run under InTx.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns let the migrate command verify that the
// sequence and record tables carry the columns the engine relies on.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	err = database.InTx(ctx, db, func(ctx context.Context) error {
//	    return store.Create(ctx, record)
//	})
package database
