// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure the connection that backs the
// mapping table. MySQL is the production driver; SQLite is supported for local
// runs and for tests.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table so that the validate command can
// confirm the mapping table matches the columns the engine expects.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "catalog_mappings")
package database
