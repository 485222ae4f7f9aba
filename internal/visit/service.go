package visit

import (
	"fmt"
	"time"

	"github.com/shepherdstable/pantry-cloud/internal/client"
	"github.com/shepherdstable/pantry-cloud/internal/datekey"
	"github.com/shepherdstable/pantry-cloud/internal/scope"
)

// Service coordinates visit writes: client profile snapshots, month-key
// derivation, and the first-USDA-visit-of-month marker table.
type Service struct {
	repo    *Repository
	clients *client.Repository
}

// NewService creates a visit service.
func NewService(repo *Repository, clients *client.Repository) *Service {
	return &Service{repo: repo, clients: clients}
}

// RecordInput carries the operator-supplied fields for a new visit.
type RecordInput struct {
	Scope          scope.Scope
	ClientID       string
	DateKey        string    // empty records against today
	VisitAt        time.Time // zero derives an instant from DateKey
	HouseholdSize  *int64    // nil copies the client profile size
	USDACount      *int64
	FirstTime      *bool     // nil derives the flag from the marker table
	AddedByReports bool
}

// Record stores a new visit. The first-time flag, unless pinned by the
// caller, is derived at write time: the first USDA visit by a client in a
// month claims the marker, later visits in that month see it and record
// false. Client profile fields are snapshotted onto the visit row.
func (s *Service) Record(in RecordInput) (*Visit, error) {
	if in.Scope.OrgID == "" {
		return nil, fmt.Errorf("no organization selected")
	}
	if in.ClientID == "" {
		return nil, fmt.Errorf("client id is required")
	}

	dateKey := in.DateKey
	if dateKey == "" {
		dateKey = datekey.Today()
	}
	if !datekey.ValidDay(dateKey) {
		return nil, fmt.Errorf("invalid date key %q (use YYYY-MM-DD)", dateKey)
	}
	monthKey, err := datekey.MonthOf(dateKey)
	if err != nil {
		return nil, err
	}

	visitAt := in.VisitAt
	if visitAt.IsZero() {
		visitAt, err = defaultInstant(dateKey)
		if err != nil {
			return nil, err
		}
	} else if datekey.Day(visitAt) != dateKey {
		return nil, fmt.Errorf("visit time %s does not fall on %s", visitAt.Format(time.RFC3339), dateKey)
	}

	c, err := s.clients.Get(in.ClientID)
	if err != nil {
		return nil, fmt.Errorf("looking up client: %w", err)
	}
	if c.OrgID != in.Scope.OrgID {
		return nil, fmt.Errorf("client %s does not belong to org %s", in.ClientID, in.Scope.OrgID)
	}

	firstTime := in.FirstTime
	if firstTime == nil {
		has, err := s.repo.HasMarker(in.Scope.OrgID, in.ClientID, monthKey)
		if err != nil {
			return nil, err
		}
		derived := !has
		firstTime = &derived
	}

	size := c.HouseholdSize
	if in.HouseholdSize != nil {
		size = *in.HouseholdSize
	}

	stored, err := s.repo.Insert(&Visit{
		OrgID:           in.Scope.OrgID,
		LocationID:      in.Scope.LocationID,
		ClientID:        in.ClientID,
		DateKey:         dateKey,
		VisitAt:         visitAt,
		HouseholdSize:   size,
		USDAFirstTime:   firstTime,
		USDACount:       in.USDACount,
		ClientFirstName: c.FirstName,
		ClientLastName:  c.LastName,
		ClientAddress:   c.Address,
		ClientCounty:    c.County,
		ClientZip:       c.Zip,
		AddedByReports:  in.AddedByReports,
	})
	if err != nil {
		return nil, err
	}

	if *firstTime {
		if err := s.repo.SetMarker(in.Scope.OrgID, in.ClientID, monthKey, stored.ID); err != nil {
			return nil, err
		}
	}

	return stored, nil
}

// DeleteVisit removes one visit and, if it carried the first-time flag,
// clears the client's marker for that month so a later visit can reclaim
// first-time status.
func (s *Service) DeleteVisit(id string) error {
	v, err := s.repo.Get(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	if v.FirstTime() {
		if err := s.repo.ClearMarker(v.OrgID, v.ClientID, v.MonthKey); err != nil {
			return err
		}
	}

	return nil
}

// defaultInstant picks the stored timestamp for a visit recorded without
// one: now when the target day is today, otherwise noon local time on the
// target day so the instant stays consistent with the date key.
func defaultInstant(dateKey string) (time.Time, error) {
	if dateKey == datekey.Today() {
		return time.Now(), nil
	}
	day, err := time.ParseInLocation("2006-01-02", dateKey, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q (use YYYY-MM-DD)", dateKey)
	}
	return day.Add(12 * time.Hour), nil
}
