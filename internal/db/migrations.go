package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
// visits.client_id carries no foreign key on purpose: deleting a client
// profile keeps its visit history, which holds its own snapshot columns.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS orgs (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		address    TEXT NOT NULL DEFAULT '',
		city       TEXT NOT NULL DEFAULT '',
		state      TEXT NOT NULL DEFAULT '',
		zip        TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS locations (
		id         TEXT PRIMARY KEY,
		org_id     TEXT NOT NULL REFERENCES orgs(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id             TEXT PRIMARY KEY,
		org_id         TEXT NOT NULL REFERENCES orgs(id) ON DELETE CASCADE,
		first_name     TEXT NOT NULL DEFAULT '',
		last_name      TEXT NOT NULL DEFAULT '',
		address        TEXT NOT NULL DEFAULT '',
		county         TEXT NOT NULL DEFAULT '',
		zip            TEXT NOT NULL DEFAULT '',
		household_size INTEGER NOT NULL DEFAULT 1 CHECK (household_size >= 1),
		created_at     DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS visits (
		id                TEXT PRIMARY KEY,
		org_id            TEXT NOT NULL,
		location_id       TEXT NOT NULL DEFAULT '',
		client_id         TEXT NOT NULL,
		date_key          TEXT NOT NULL,
		month_key         TEXT NOT NULL,
		visit_at          DATETIME NOT NULL,
		household_size    INTEGER NOT NULL DEFAULT 1 CHECK (household_size >= 0),
		usda_first_time   INTEGER,
		client_first_name TEXT NOT NULL DEFAULT '',
		client_last_name  TEXT NOT NULL DEFAULT '',
		client_address    TEXT NOT NULL DEFAULT '',
		client_county     TEXT NOT NULL DEFAULT '',
		client_zip        TEXT NOT NULL DEFAULT '',
		created_at        DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_scope_date ON visits (org_id, location_id, date_key)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_org_date ON visits (org_id, date_key)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_client ON visits (client_id)`,
	`CREATE TABLE IF NOT EXISTS usda_markers (
		org_id     TEXT NOT NULL,
		client_id  TEXT NOT NULL,
		month_key  TEXT NOT NULL,
		visit_id   TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (org_id, client_id, month_key)
	)`,
	`CREATE TABLE IF NOT EXISTS manual_days (
		scope_key  TEXT PRIMARY KEY,
		days_json  TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS identities (
		id           TEXT PRIMARY KEY,
		email        TEXT NOT NULL DEFAULT '',
		name         TEXT NOT NULL DEFAULT '',
		org_id       TEXT NOT NULL,
		location_id  TEXT NOT NULL DEFAULT '',
		capabilities TEXT NOT NULL DEFAULT '',
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		id           INTEGER  PRIMARY KEY AUTOINCREMENT,
		name         TEXT     NOT NULL,
		key_prefix   TEXT     NOT NULL,
		key_hash     TEXT     NOT NULL UNIQUE,
		identity_id  TEXT     NOT NULL DEFAULT '',
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_used_at DATETIME
	)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	// Column additions (idempotent, checks if column exists first)
	columnMigrations := []struct {
		table, column, definition string
	}{
		{"orgs", "preparer", "TEXT NOT NULL DEFAULT ''"},
		{"visits", "usda_count", "INTEGER"},
		{"visits", "added_by_reports", "INTEGER NOT NULL DEFAULT 0"},
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(db *sql.DB, table, column, definition string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("checking table info: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			return nil // column already exists
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating columns: %w", err)
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}
