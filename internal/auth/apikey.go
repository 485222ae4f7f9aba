package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const apiKeyBytes = 32 // 256-bit keys

// APIKey is the stored representation of an API key (no raw key).
type APIKey struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	KeyPrefix  string     `json:"key_prefix"` // first 8 chars for identification
	Identity   Identity   `json:"identity"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// APIKeyStore manages API keys and the identities behind them in SQLite.
// It is the shipped Resolver implementation.
type APIKeyStore struct {
	db *sql.DB
}

// NewAPIKeyStore creates an API key store.
func NewAPIKeyStore(db *sql.DB) *APIKeyStore {
	return &APIKeyStore{db: db}
}

// Create generates a new API key bound to the identity. Keys created for an
// email that already has an identity reuse that identity row, updated to
// the given fields. Returns the raw key, shown once and never stored.
func (s *APIKeyStore) Create(name string, id Identity) (string, *APIKey, error) {
	if id.OrgID == "" {
		return "", nil, fmt.Errorf("key identity needs an org")
	}

	raw, err := generateAPIKey()
	if err != nil {
		return "", nil, fmt.Errorf("generating key: %w", err)
	}
	prefix := raw[:8]
	hash := hashAPIKey(raw)

	identityID, err := s.upsertIdentity(id)
	if err != nil {
		return "", nil, err
	}

	result, err := s.db.Exec(
		"INSERT INTO api_keys (name, key_prefix, key_hash, identity_id) VALUES (?, ?, ?, ?)",
		name, prefix, hash, identityID,
	)
	if err != nil {
		return "", nil, fmt.Errorf("storing key: %w", err)
	}
	keyID, err := result.LastInsertId()
	if err != nil {
		return "", nil, fmt.Errorf("getting key id: %w", err)
	}

	id.UID = identityID
	key := &APIKey{
		ID:        keyID,
		Name:      name,
		KeyPrefix: prefix,
		Identity:  id,
	}
	return raw, key, nil
}

// upsertIdentity stores the identity and returns its id, reusing an
// existing row when the email is already known.
func (s *APIKeyStore) upsertIdentity(id Identity) (string, error) {
	existing := ""
	if id.Email != "" {
		err := s.db.QueryRow("SELECT id FROM identities WHERE email = ?", id.Email).Scan(&existing)
		if err != nil && err != sql.ErrNoRows {
			return "", fmt.Errorf("looking up identity: %w", err)
		}
	}

	caps := strings.Join(id.Capabilities, ",")
	if existing != "" {
		_, err := s.db.Exec(
			"UPDATE identities SET name = ?, org_id = ?, location_id = ?, capabilities = ? WHERE id = ?",
			id.Name, id.OrgID, id.LocationID, caps, existing,
		)
		if err != nil {
			return "", fmt.Errorf("updating identity: %w", err)
		}
		return existing, nil
	}

	newID := uuid.NewString()
	_, err := s.db.Exec(
		"INSERT INTO identities (id, email, name, org_id, location_id, capabilities) VALUES (?, ?, ?, ?, ?, ?)",
		newID, id.Email, id.Name, id.OrgID, id.LocationID, caps,
	)
	if err != nil {
		return "", fmt.Errorf("storing identity: %w", err)
	}
	return newID, nil
}

// List returns an org's API keys, newest first, without the raw keys.
func (s *APIKeyStore) List(orgID string) ([]APIKey, error) {
	rows, err := s.db.Query(
		`SELECT k.id, k.name, k.key_prefix, k.created_at, k.last_used_at,
		        i.id, i.email, i.name, i.org_id, i.location_id, i.capabilities
		 FROM api_keys k JOIN identities i ON i.id = k.identity_id
		 WHERE i.org_id = ?
		 ORDER BY k.created_at DESC, k.id DESC`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying keys: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("closing rows: %v\n", cerr)
		}
	}()

	var keys []APIKey
	for rows.Next() {
		var k APIKey
		var caps string
		err := rows.Scan(
			&k.ID, &k.Name, &k.KeyPrefix, &k.CreatedAt, &k.LastUsedAt,
			&k.Identity.UID, &k.Identity.Email, &k.Identity.Name,
			&k.Identity.OrgID, &k.Identity.LocationID, &caps,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		k.Identity.Capabilities = splitCapabilities(caps)
		keys = append(keys, k)
	}

	return keys, rows.Err()
}

// Delete removes an API key by ID, refusing keys that belong to another
// org's identities.
func (s *APIKeyStore) Delete(id int64, orgID string) error {
	result, err := s.db.Exec(
		`DELETE FROM api_keys WHERE id = ?
		 AND identity_id IN (SELECT id FROM identities WHERE org_id = ?)`,
		id, orgID,
	)
	if err != nil {
		return fmt.Errorf("deleting key: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("key not found")
	}

	return nil
}

// Resolve checks a raw API key against stored hashes and returns the
// identity behind it, updating last_used_at on the way.
func (s *APIKeyStore) Resolve(ctx context.Context, credential string) (Identity, error) {
	hash := hashAPIKey(credential)

	result, err := s.db.ExecContext(ctx,
		"UPDATE api_keys SET last_used_at = ? WHERE key_hash = ?",
		time.Now(), hash,
	)
	if err != nil {
		return Identity{}, fmt.Errorf("validating key: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return Identity{}, fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return Identity{}, ErrInvalidCredential
	}

	var id Identity
	var caps string
	err = s.db.QueryRowContext(ctx,
		`SELECT i.id, i.email, i.name, i.org_id, i.location_id, i.capabilities
		 FROM api_keys k JOIN identities i ON i.id = k.identity_id
		 WHERE k.key_hash = ?`,
		hash,
	).Scan(&id.UID, &id.Email, &id.Name, &id.OrgID, &id.LocationID, &caps)
	if err == sql.ErrNoRows {
		return Identity{}, ErrInvalidCredential
	}
	if err != nil {
		return Identity{}, fmt.Errorf("loading identity: %w", err)
	}

	id.Capabilities = splitCapabilities(caps)
	return id, nil
}

func splitCapabilities(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func generateAPIKey() (string, error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "pc_" + hex.EncodeToString(b), nil
}

func hashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}
