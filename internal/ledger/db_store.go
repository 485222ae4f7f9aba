package ledger

import (
	"database/sql"
	"fmt"
)

// DBStore persists ledger payloads in the manual_days table, one row per
// scope key.
type DBStore struct {
	db *sql.DB
}

// NewDBStore creates a database-backed store.
func NewDBStore(db *sql.DB) *DBStore {
	return &DBStore{db: db}
}

// Read returns the payload for a key and whether one exists.
func (s *DBStore) Read(key string) ([]byte, bool, error) {
	var payload string
	err := s.db.QueryRow("SELECT days_json FROM manual_days WHERE scope_key = ?", key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading manual days: %w", err)
	}
	return []byte(payload), true, nil
}

// Write upserts the payload for a key.
func (s *DBStore) Write(key string, payload []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO manual_days (scope_key, days_json) VALUES (?, ?)
		 ON CONFLICT(scope_key) DO UPDATE SET days_json = excluded.days_json, updated_at = CURRENT_TIMESTAMP`,
		key, string(payload),
	)
	if err != nil {
		return fmt.Errorf("writing manual days: %w", err)
	}
	return nil
}

// Delete drops the row for a key. Deleting an absent key is a no-op.
func (s *DBStore) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM manual_days WHERE scope_key = ?", key); err != nil {
		return fmt.Errorf("deleting manual days: %w", err)
	}
	return nil
}
