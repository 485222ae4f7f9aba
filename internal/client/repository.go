package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// batchSize is the maximum number of ids fetched per lookup query.
const batchSize = 10

// Repository provides CRUD operations for household clients.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a client repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const clientColumns = `id, org_id, first_name, last_name, address, county, zip, household_size, created_at, updated_at`

// Create adds a new client and returns it with its generated ID. A missing
// household size defaults to 1.
func (r *Repository) Create(c *Client) (*Client, error) {
	if c.OrgID == "" {
		return nil, fmt.Errorf("org id is required")
	}
	if c.FirstName == "" && c.LastName == "" {
		return nil, fmt.Errorf("client name is required")
	}

	size := c.HouseholdSize
	if size < 1 {
		size = 1
	}

	id := uuid.NewString()
	_, err := r.db.Exec(
		`INSERT INTO clients (id, org_id, first_name, last_name, address, county, zip, household_size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, c.OrgID, c.FirstName, c.LastName, c.Address, c.County, c.Zip, size,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting client: %w", err)
	}

	return r.Get(id)
}

// Get returns a client by its ID.
func (r *Repository) Get(id string) (*Client, error) {
	row := r.db.QueryRow(
		fmt.Sprintf("SELECT %s FROM clients WHERE id = ?", clientColumns), id,
	)
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("client %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying client %s: %w", id, err)
	}
	return c, nil
}

// List returns all clients in an organization ordered by last then first name.
func (r *Repository) List(orgID string) ([]*Client, error) {
	rows, err := r.db.Query(
		fmt.Sprintf("SELECT %s FROM clients WHERE org_id = ? ORDER BY last_name, first_name", clientColumns),
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var clients []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clients: %w", err)
	}

	return clients, nil
}

// Update rewrites a client's profile fields.
func (r *Repository) Update(c *Client) (*Client, error) {
	size := c.HouseholdSize
	if size < 1 {
		size = 1
	}

	result, err := r.db.Exec(
		`UPDATE clients SET first_name = ?, last_name = ?, address = ?, county = ?, zip = ?,
		 household_size = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		c.FirstName, c.LastName, c.Address, c.County, c.Zip, size, c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("client %s not found", c.ID)
	}

	return r.Get(c.ID)
}

// Delete removes a client profile. Visit history is untouched: visits carry
// their own snapshot of the client fields.
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("client %s not found", id)
	}

	return nil
}

// GetBatch fetches many clients by id, deduplicated and chunked at
// batchSize per query with the chunks run concurrently. Ids that are not
// found, or whose chunk fails, are simply absent from the result map; the
// first chunk error is returned alongside whatever was fetched so callers
// can degrade instead of failing.
func (r *Repository) GetBatch(ctx context.Context, ids []string) (map[string]*Client, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	found := make(map[string]*Client, len(unique))
	if len(unique) == 0 {
		return found, nil
	}

	var mu sync.Mutex
	var firstErr error

	g := new(errgroup.Group)
	g.SetLimit(4)

	for start := 0; start < len(unique); start += batchSize {
		chunk := unique[start:min(start+batchSize, len(unique))]
		g.Go(func() error {
			clients, err := r.getChunk(ctx, chunk)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return nil
			}
			for _, c := range clients {
				found[c.ID] = c
			}
			return nil
		})
	}

	// Goroutines report through firstErr, never the group.
	_ = g.Wait()

	return found, firstErr
}

// getChunk fetches one IN-clause batch of clients.
func (r *Repository) getChunk(ctx context.Context, ids []string) ([]*Client, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := fmt.Sprintf("SELECT %s FROM clients WHERE id IN (%s)", clientColumns, placeholders)

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("batch querying clients: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var clients []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clients: %w", err)
	}

	return clients, nil
}

// scanClient scans a client from a database row.
func scanClient(row interface{ Scan(...interface{}) error }) (*Client, error) {
	var c Client
	err := row.Scan(
		&c.ID, &c.OrgID, &c.FirstName, &c.LastName,
		&c.Address, &c.County, &c.Zip, &c.HouseholdSize,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
