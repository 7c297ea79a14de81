// Package database handles the connection to the dictionary store and its schema.
//
// The embedded sqlite database is the default store; the same schema can be
// applied to mysql for shared setups. Both are reached through GORM.
//
// # Connect
//
// Connect opens the configured driver. For sqlite it enables foreign key
// enforcement, which the entries table relies on (cascade on game delete,
// restrict on category delete), and pins the pool to a single connection.
//
// # Migrate
//
// Migrate applies the schema and upgrades games tables written before games
// carried a code: the column is added, codes are derived from the game names
// and the unique index is created afterwards.
//
// # Schema Inspection
//
// GetTableColumns and HasColumn read column definitions (PRAGMA table_info on
// sqlite, SHOW COLUMNS on mysql).
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//	if err := database.Migrate(db); err != nil {
//	    log.Fatal("Migration failed", err)
//	}
package database
