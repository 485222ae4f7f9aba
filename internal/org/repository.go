package org

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Repository provides CRUD operations for organizations and locations.
type Repository struct {
	db *sql.DB
}

// NewRepository creates an org repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const orgColumns = `id, name, address, city, state, zip, preparer, created_at`

// CreateOrg adds a new organization and returns it with its generated ID.
func (r *Repository) CreateOrg(o *Org) (*Org, error) {
	if o.Name == "" {
		return nil, fmt.Errorf("organization name is required")
	}

	id := uuid.NewString()
	_, err := r.db.Exec(
		`INSERT INTO orgs (id, name, address, city, state, zip, preparer) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, o.Name, o.Address, o.City, o.State, o.Zip, o.Preparer,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting org: %w", err)
	}

	return r.GetOrg(id)
}

// GetOrg returns an organization by its ID.
func (r *Repository) GetOrg(id string) (*Org, error) {
	var o Org
	err := r.db.QueryRow(
		fmt.Sprintf("SELECT %s FROM orgs WHERE id = ?", orgColumns), id,
	).Scan(&o.ID, &o.Name, &o.Address, &o.City, &o.State, &o.Zip, &o.Preparer, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("org %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying org %s: %w", id, err)
	}
	return &o, nil
}

// ListOrgs returns all organizations ordered by name.
func (r *Repository) ListOrgs() ([]*Org, error) {
	rows, err := r.db.Query(fmt.Sprintf("SELECT %s FROM orgs ORDER BY name", orgColumns))
	if err != nil {
		return nil, fmt.Errorf("listing orgs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var orgs []*Org
	for rows.Next() {
		var o Org
		if err := rows.Scan(&o.ID, &o.Name, &o.Address, &o.City, &o.State, &o.Zip, &o.Preparer, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning org: %w", err)
		}
		orgs = append(orgs, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orgs: %w", err)
	}

	return orgs, nil
}

// UpdateOrg updates the branding fields of an organization.
func (r *Repository) UpdateOrg(o *Org) (*Org, error) {
	result, err := r.db.Exec(
		`UPDATE orgs SET name = ?, address = ?, city = ?, state = ?, zip = ?, preparer = ? WHERE id = ?`,
		o.Name, o.Address, o.City, o.State, o.Zip, o.Preparer, o.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating org: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("org %s not found", o.ID)
	}

	return r.GetOrg(o.ID)
}

// CreateLocation adds a distribution site to an organization.
func (r *Repository) CreateLocation(orgID, name string) (*Location, error) {
	if name == "" {
		return nil, fmt.Errorf("location name is required")
	}

	id := uuid.NewString()
	_, err := r.db.Exec(
		`INSERT INTO locations (id, org_id, name) VALUES (?, ?, ?)`,
		id, orgID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting location: %w", err)
	}

	return r.GetLocation(id)
}

// GetLocation returns a location by its ID.
func (r *Repository) GetLocation(id string) (*Location, error) {
	var l Location
	err := r.db.QueryRow(
		"SELECT id, org_id, name, created_at FROM locations WHERE id = ?", id,
	).Scan(&l.ID, &l.OrgID, &l.Name, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("location %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying location %s: %w", id, err)
	}
	return &l, nil
}

// ListLocations returns all locations for an organization ordered by name.
func (r *Repository) ListLocations(orgID string) ([]*Location, error) {
	rows, err := r.db.Query(
		"SELECT id, org_id, name, created_at FROM locations WHERE org_id = ? ORDER BY name",
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var locations []*Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.OrgID, &l.Name, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		locations = append(locations, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating locations: %w", err)
	}

	return locations, nil
}
