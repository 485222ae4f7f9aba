package visit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/shepherdstable/pantry-cloud/internal/datekey"
	"github.com/shepherdstable/pantry-cloud/internal/scope"
)

// deleteBatchSize is the maximum number of visits removed per delete query.
const deleteBatchSize = 20

// Repository provides storage operations for visits and the
// first-USDA-visit-of-month marker table.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a visit repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const visitColumns = `id, org_id, location_id, client_id, date_key, month_key, visit_at, household_size,
	usda_first_time, usda_count, client_first_name, client_last_name, client_address, client_county,
	client_zip, added_by_reports, created_at`

// Insert stores a visit row. The month key is always derived from the date
// key, whatever the caller set. Most callers should go through
// Service.Record, which also snapshots the client profile and maintains
// the marker table.
func (r *Repository) Insert(v *Visit) (*Visit, error) {
	if v.OrgID == "" {
		return nil, fmt.Errorf("org id is required")
	}
	if v.ClientID == "" {
		return nil, fmt.Errorf("client id is required")
	}
	if !datekey.ValidDay(v.DateKey) {
		return nil, fmt.Errorf("invalid date key %q (use YYYY-MM-DD)", v.DateKey)
	}
	monthKey, err := datekey.MonthOf(v.DateKey)
	if err != nil {
		return nil, err
	}

	id := v.ID
	if id == "" {
		id = uuid.NewString()
	}
	visitAt := v.VisitAt
	if visitAt.IsZero() {
		visitAt = time.Now()
	}
	size := v.HouseholdSize
	if size < 0 {
		size = 0
	}

	_, err = r.db.Exec(
		`INSERT INTO visits (id, org_id, location_id, client_id, date_key, month_key, visit_at,
		 household_size, usda_first_time, usda_count, client_first_name, client_last_name,
		 client_address, client_county, client_zip, added_by_reports)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, v.OrgID, v.LocationID, v.ClientID, v.DateKey, monthKey, visitAt,
		size, v.USDAFirstTime, v.USDACount, v.ClientFirstName, v.ClientLastName,
		v.ClientAddress, v.ClientCounty, v.ClientZip, v.AddedByReports,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting visit: %w", err)
	}

	return r.Get(id)
}

// Get returns a visit by its ID.
func (r *Repository) Get(id string) (*Visit, error) {
	row := r.db.QueryRow(
		fmt.Sprintf("SELECT %s FROM visits WHERE id = ?", visitColumns), id,
	)
	v, err := scanVisit(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("visit %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying visit %s: %w", id, err)
	}
	return v, nil
}

// ListMonth returns every visit in the scope for the month, ordered by date
// key ascending. An empty scope location means all locations.
func (r *Repository) ListMonth(s scope.Scope, monthKey string) ([]*Visit, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	startKey, endKey, err := datekey.MonthRange(monthKey)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM visits WHERE org_id = ?", visitColumns)
	args := []interface{}{s.OrgID}
	if s.LocationID != "" {
		query += " AND location_id = ?"
		args = append(args, s.LocationID)
	}
	query += " AND date_key BETWEEN ? AND ? ORDER BY date_key, visit_at, id"
	args = append(args, startKey, endKey)

	return r.queryVisits(query, args...)
}

// ListDay returns the scope's visits for one day, newest instant first.
func (r *Repository) ListDay(s scope.Scope, dateKey string) ([]*Visit, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if !datekey.ValidDay(dateKey) {
		return nil, fmt.Errorf("invalid date key %q (use YYYY-MM-DD)", dateKey)
	}

	query := fmt.Sprintf("SELECT %s FROM visits WHERE org_id = ?", visitColumns)
	args := []interface{}{s.OrgID}
	if s.LocationID != "" {
		query += " AND location_id = ?"
		args = append(args, s.LocationID)
	}
	query += " AND date_key = ? ORDER BY visit_at DESC, id DESC"
	args = append(args, dateKey)

	return r.queryVisits(query, args...)
}

// CountDay returns how many visits the scope has on one day, for
// confirmation prompts ahead of destructive operations.
func (r *Repository) CountDay(s scope.Scope, dateKey string) (int64, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if !datekey.ValidDay(dateKey) {
		return 0, fmt.Errorf("invalid date key %q (use YYYY-MM-DD)", dateKey)
	}

	query := "SELECT COUNT(*) FROM visits WHERE org_id = ?"
	args := []interface{}{s.OrgID}
	if s.LocationID != "" {
		query += " AND location_id = ?"
		args = append(args, s.LocationID)
	}
	query += " AND date_key = ?"
	args = append(args, dateKey)

	var count int64
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting visits: %w", err)
	}
	return count, nil
}

// Delete removes a single visit row by ID. Marker cleanup for flagged
// visits lives in Service.DeleteVisit.
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM visits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting visit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("visit %s not found", id)
	}

	return nil
}

// DeleteDay removes every visit in the scope for one day. Deletes run in
// concurrent batches of deleteBatchSize; the first-time markers carried by
// deleted visits are cleared afterward so a later visit can reclaim
// first-time status for its month. Returns the number of visits removed,
// which is accurate even when a batch fails partway.
func (r *Repository) DeleteDay(ctx context.Context, s scope.Scope, dateKey string) (int, error) {
	visits, err := r.ListDay(s, dateKey)
	if err != nil {
		return 0, err
	}
	if len(visits) == 0 {
		return 0, nil
	}

	var mu sync.Mutex
	var confirmed []*Visit

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for start := 0; start < len(visits); start += deleteBatchSize {
		batch := visits[start:min(start+deleteBatchSize, len(visits))]
		g.Go(func() error {
			if err := r.deleteBatch(gctx, batch); err != nil {
				return err
			}
			mu.Lock()
			confirmed = append(confirmed, batch...)
			mu.Unlock()
			return nil
		})
	}

	err = g.Wait()

	// Markers are cleared for every batch that actually went through, even
	// when a later batch failed.
	cleared := make(map[string]struct{})
	for _, v := range confirmed {
		if !v.FirstTime() {
			continue
		}
		key := v.ClientID + "|" + v.MonthKey
		if _, ok := cleared[key]; ok {
			continue
		}
		cleared[key] = struct{}{}
		if cerr := r.ClearMarker(v.OrgID, v.ClientID, v.MonthKey); cerr != nil && err == nil {
			err = cerr
		}
	}

	return len(confirmed), err
}

// deleteBatch removes one IN-clause batch of visits.
func (r *Repository) deleteBatch(ctx context.Context, visits []*Visit) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(visits)), ", ")
	args := make([]interface{}, len(visits))
	for i, v := range visits {
		args[i] = v.ID
	}

	_, err := r.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM visits WHERE id IN (%s)", placeholders), args...,
	)
	if err != nil {
		return fmt.Errorf("deleting visit batch: %w", err)
	}
	return nil
}

// HasMarker reports whether a first-visit marker exists for the client and
// month.
func (r *Repository) HasMarker(orgID, clientID, monthKey string) (bool, error) {
	var n int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM usda_markers WHERE org_id = ? AND client_id = ? AND month_key = ?",
		orgID, clientID, monthKey,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking first-time marker: %w", err)
	}
	return n > 0, nil
}

// SetMarker records the first-visit marker for a client and month. Setting
// a marker that already exists is a no-op: the earliest claim wins.
func (r *Repository) SetMarker(orgID, clientID, monthKey, visitID string) error {
	_, err := r.db.Exec(
		"INSERT OR IGNORE INTO usda_markers (org_id, client_id, month_key, visit_id) VALUES (?, ?, ?, ?)",
		orgID, clientID, monthKey, visitID,
	)
	if err != nil {
		return fmt.Errorf("setting first-time marker: %w", err)
	}
	return nil
}

// ClearMarker removes the first-visit marker for a client and month.
// Clearing an absent marker is not an error.
func (r *Repository) ClearMarker(orgID, clientID, monthKey string) error {
	_, err := r.db.Exec(
		"DELETE FROM usda_markers WHERE org_id = ? AND client_id = ? AND month_key = ?",
		orgID, clientID, monthKey,
	)
	if err != nil {
		return fmt.Errorf("clearing first-time marker: %w", err)
	}
	return nil
}

// queryVisits runs a visit select and scans the result set.
func (r *Repository) queryVisits(query string, args ...interface{}) ([]*Visit, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing visits: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var visits []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning visit: %w", err)
		}
		visits = append(visits, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visits: %w", err)
	}

	return visits, nil
}

// scanVisit scans a visit from a database row.
func scanVisit(row interface{ Scan(...interface{}) error }) (*Visit, error) {
	var v Visit
	var firstTime sql.NullBool
	var count sql.NullInt64

	err := row.Scan(
		&v.ID, &v.OrgID, &v.LocationID, &v.ClientID, &v.DateKey, &v.MonthKey, &v.VisitAt,
		&v.HouseholdSize, &firstTime, &count, &v.ClientFirstName, &v.ClientLastName,
		&v.ClientAddress, &v.ClientCounty, &v.ClientZip, &v.AddedByReports, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if firstTime.Valid {
		v.USDAFirstTime = &firstTime.Bool
	}
	if count.Valid {
		v.USDACount = &count.Int64
	}

	return &v, nil
}
