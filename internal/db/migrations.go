package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at
// the end.
var migrations = []string{
	// Migration 1: index open quotes per tier; the open-quote listings are
	// the hottest read path once bidders start polling.
	`CREATE INDEX IF NOT EXISTS idx_farmer_quotes_status ON farmer_quotes(status)`,
	`CREATE INDEX IF NOT EXISTS idx_fpo_quotes_status ON fpo_quotes(status)`,
}

// Migrate creates the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
