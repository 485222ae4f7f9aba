package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shepherdstable/pantry-cloud/internal/auth"
	"github.com/shepherdstable/pantry-cloud/internal/client"
	"github.com/shepherdstable/pantry-cloud/internal/datekey"
	"github.com/shepherdstable/pantry-cloud/internal/feed"
	"github.com/shepherdstable/pantry-cloud/internal/org"
	"github.com/shepherdstable/pantry-cloud/internal/scope"
	"github.com/shepherdstable/pantry-cloud/internal/visit"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := map[string]string{"error": msg}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// scopeFrom derives the caller's data scope from its resolved identity and
// the optional location query parameter.
func (s *Server) scopeFrom(r *http.Request) (scope.Scope, error) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return scope.Scope{}, fmt.Errorf("no identity on request")
	}
	return id.ScopeFor(r.URL.Query().Get("location"))
}

// storeErrorStatus maps a storage or service error onto an HTTP status.
func storeErrorStatus(err error) int {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		return http.StatusNotFound
	case strings.Contains(msg, "invalid"), strings.Contains(msg, "required"), strings.Contains(msg, "does not"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleAPIOrg serves the caller's organization profile.
func (s *Server) handleAPIOrg(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scopeFrom(r)
	if err != nil {
		apiError(w, err.Error(), http.StatusForbidden)
		return
	}

	switch r.Method {
	case http.MethodGet:
		o, err := s.orgs.GetOrg(sc.OrgID)
		if err != nil {
			apiError(w, err.Error(), storeErrorStatus(err))
			return
		}
		apiJSON(w, o, http.StatusOK)
	case http.MethodPut:
		s.apiUpdateOrg(w, r, sc)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// apiUpdateOrg rewrites the report branding fields of the organization.
func (s *Server) apiUpdateOrg(w http.ResponseWriter, r *http.Request, sc scope.Scope) {
	if !sc.Has(scope.CapManageKeys) {
		apiError(w, "managing the organization requires a manage-keys credential", http.StatusForbidden)
		return
	}

	var req struct {
		Name     string `json:"name"`
		Address  string `json:"address"`
		City     string `json:"city"`
		State    string `json:"state"`
		Zip      string `json:"zip"`
		Preparer string `json:"preparer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		apiError(w, "name is required", http.StatusBadRequest)
		return
	}

	o, err := s.orgs.UpdateOrg(&org.Org{
		ID:       sc.OrgID,
		Name:     strings.TrimSpace(req.Name),
		Address:  req.Address,
		City:     req.City,
		State:    req.State,
		Zip:      req.Zip,
		Preparer: req.Preparer,
	})
	if err != nil {
		apiError(w, err.Error(), storeErrorStatus(err))
		return
	}

	apiJSON(w, o, http.StatusOK)
}

// handleAPILocations lists and adds distribution sites.
func (s *Server) handleAPILocations(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scopeFrom(r)
	if err != nil {
		apiError(w, err.Error(), http.StatusForbidden)
		return
	}

	switch r.Method {
	case http.MethodGet:
		locations, err := s.orgs.ListLocations(sc.OrgID)
		if err != nil {
			apiError(w, err.Error(), storeErrorStatus(err))
			return
		}
		if locations == nil {
			locations = make([]*org.Location, 0)
		}
		apiJSON(w, locations, http.StatusOK)
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apiError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		l, err := s.orgs.CreateLocation(sc.OrgID, strings.TrimSpace(req.Name))
		if err != nil {
			apiError(w, err.Error(), storeErrorStatus(err))
			return
		}
		apiJSON(w, l, http.StatusCreated)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAPIClients routes /api/clients requests.
func (s *Server) handleAPIClients(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scopeFrom(r)
	if err != nil {
		apiError(w, err.Error(), http.StatusForbidden)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/clients")
	path = strings.TrimPrefix(path, "/")

	// /api/clients — list or register
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			s.apiListClients(w, sc)
		case http.MethodPost:
			s.apiAddClient(w, r, sc)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// /api/clients/{id} — show, update, or remove
	switch r.Method {
	case http.MethodGet:
		c, err := s.clientInOrg(path, sc)
		if err != nil {
			apiError(w, err.Error(), storeErrorStatus(err))
			return
		}
		apiJSON(w, c, http.StatusOK)
	case http.MethodPut:
		s.apiUpdateClient(w, r, path, sc)
	case http.MethodDelete:
		if _, err := s.clientInOrg(path, sc); err != nil {
			apiError(w, err.Error(), storeErrorStatus(err))
			return
		}
		if err := s.clients.Delete(path); err != nil {
			apiError(w, err.Error(), storeErrorStatus(err))
			return
		}
		apiJSON(w, map[string]interface{}{"id": path, "removed": true}, http.StatusOK)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// clientInOrg loads a client and hides it from callers in other orgs.
func (s *Server) clientInOrg(id string, sc scope.Scope) (*client.Client, error) {
	c, err := s.clients.Get(id)
	if err != nil {
		return nil, err
	}
	if c.OrgID != sc.OrgID {
		return nil, fmt.Errorf("client %s not found", id)
	}
	return c, nil
}

// apiListClients returns the org's client registry as JSON.
func (s *Server) apiListClients(w http.ResponseWriter, sc scope.Scope) {
	clients, err := s.clients.List(sc.OrgID)
	if err != nil {
		apiError(w, fmt.Sprintf("listing clients: %v", err), http.StatusInternalServerError)
		return
	}
	if clients == nil {
		clients = make([]*client.Client, 0)
	}
	apiJSON(w, clients, http.StatusOK)
}

type clientRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Address       string `json:"address"`
	County        string `json:"county"`
	Zip           string `json:"zip"`
	HouseholdSize int64  `json:"household_size"`
}

// apiAddClient registers a household in the org's client registry.
func (s *Server) apiAddClient(w http.ResponseWriter, r *http.Request, sc scope.Scope) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	c, err := s.clients.Create(&client.Client{
		OrgID:         sc.OrgID,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Address:       req.Address,
		County:        req.County,
		Zip:           req.Zip,
		HouseholdSize: req.HouseholdSize,
	})
	if err != nil {
		apiError(w, err.Error(), storeErrorStatus(err))
		return
	}

	apiJSON(w, c, http.StatusCreated)
}

// apiUpdateClient rewrites a client's profile fields.
func (s *Server) apiUpdateClient(w http.ResponseWriter, r *http.Request, id string, sc scope.Scope) {
	if _, err := s.clientInOrg(id, sc); err != nil {
		apiError(w, err.Error(), storeErrorStatus(err))
		return
	}

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	c, err := s.clients.Update(&client.Client{
		ID:            id,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Address:       req.Address,
		County:        req.County,
		Zip:           req.Zip,
		HouseholdSize: req.HouseholdSize,
	})
	if err != nil {
		apiError(w, err.Error(), storeErrorStatus(err))
		return
	}

	apiJSON(w, c, http.StatusOK)
}

// handleAPIVisits routes /api/visits requests.
func (s *Server) handleAPIVisits(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scopeFrom(r)
	if err != nil {
		apiError(w, err.Error(), http.StatusForbidden)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/visits")
	path = strings.TrimPrefix(path, "/")

	// /api/visits — list or record
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			s.apiListVisits(w, r, sc)
		case http.MethodPost:
			s.apiRecordVisit(w, r, sc)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// /api/visits/{id}
	if r.Method != http.MethodDelete {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.apiDeleteVisit(w, path, sc)
}

// apiListVisits returns one day or one month of visits, newest first.
func (s *Server) apiListVisits(w http.ResponseWriter, r *http.Request, sc scope.Scope) {
	var visits []*visit.Visit
	var err error

	if day := r.URL.Query().Get("day"); day != "" {
		if !datekey.ValidDay(day) {
			apiError(w, "day must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		visits, err = s.visits.ListDay(sc, day)
	} else {
		monthKey := r.URL.Query().Get("month")
		if monthKey == "" {
			monthKey = datekey.ThisMonth()
		}
		if !datekey.ValidMonth(monthKey) {
			apiError(w, "month must be YYYY-MM", http.StatusBadRequest)
			return
		}
		visits, err = s.visits.ListMonth(sc, monthKey)
	}
	if err != nil {
		apiError(w, fmt.Sprintf("listing visits: %v", err), http.StatusInternalServerError)
		return
	}

	if visits == nil {
		visits = make([]*visit.Visit, 0)
	}
	apiJSON(w, visits, http.StatusOK)
}

// apiRecordVisit stores a new visit and nudges open report streams.
func (s *Server) apiRecordVisit(w http.ResponseWriter, r *http.Request, sc scope.Scope) {
	var req struct {
		ClientID      string `json:"client_id"`
		Date          string `json:"date"`
		VisitAt       string `json:"visit_at"`
		HouseholdSize *int64 `json:"household_size"`
		USDACount     *int64 `json:"usda_count"`
		FirstTime     *bool  `json:"first_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	in := visit.RecordInput{
		Scope:         sc,
		ClientID:      req.ClientID,
		DateKey:       req.Date,
		HouseholdSize: req.HouseholdSize,
		USDACount:     req.USDACount,
		FirstTime:     req.FirstTime,
	}
	if req.VisitAt != "" {
		at, err := time.Parse(time.RFC3339, req.VisitAt)
		if err != nil {
			apiError(w, "visit_at must be RFC 3339", http.StatusBadRequest)
			return
		}
		in.VisitAt = at.Local()
	}

	v, err := s.visitSvc.Record(in)
	if err != nil {
		apiError(w, err.Error(), storeErrorStatus(err))
		return
	}

	s.bus.Emit(feed.Event{OrgID: v.OrgID, LocationID: v.LocationID, MonthKey: v.MonthKey})
	apiJSON(w, v, http.StatusCreated)
}

// apiDeleteVisit removes one visit, restoring the month marker if needed.
func (s *Server) apiDeleteVisit(w http.ResponseWriter, id string, sc scope.Scope) {
	v, err := s.visits.Get(id)
	if err != nil || v.OrgID != sc.OrgID {
		apiError(w, fmt.Sprintf("visit %s not found", id), http.StatusNotFound)
		return
	}

	if err := s.visitSvc.DeleteVisit(id); err != nil {
		apiError(w, err.Error(), storeErrorStatus(err))
		return
	}

	s.bus.Emit(feed.Event{OrgID: v.OrgID, LocationID: v.LocationID, MonthKey: v.MonthKey})
	apiJSON(w, map[string]interface{}{"id": id, "removed": true}, http.StatusOK)
}

// handleAPIDays routes /api/days/{date} requests.
func (s *Server) handleAPIDays(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scopeFrom(r)
	if err != nil {
		apiError(w, err.Error(), http.StatusForbidden)
		return
	}

	dateKey := strings.TrimPrefix(r.URL.Path, "/api/days/")
	if !datekey.ValidDay(dateKey) {
		apiError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		n, err := s.visits.CountDay(sc, dateKey)
		if err != nil {
			apiError(w, err.Error(), storeErrorStatus(err))
			return
		}
		apiJSON(w, map[string]interface{}{"date": dateKey, "visits": n}, http.StatusOK)
	case http.MethodDelete:
		n, err := s.reports.DeleteDay(r.Context(), sc, dateKey)
		if err != nil {
			apiError(w, err.Error(), storeErrorStatus(err))
			return
		}
		if monthKey, mErr := datekey.MonthOf(dateKey); mErr == nil {
			s.bus.Emit(feed.Event{OrgID: sc.OrgID, LocationID: sc.LocationID, MonthKey: monthKey})
		}
		apiJSON(w, map[string]interface{}{"date": dateKey, "deleted": n}, http.StatusOK)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAPIManualDays routes /api/manual-days requests. Manual days are
// operator-declared distribution days that show on the month calendar even
// with no visits recorded.
func (s *Server) handleAPIManualDays(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scopeFrom(r)
	if err != nil {
		apiError(w, err.Error(), http.StatusForbidden)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/manual-days")
	path = strings.TrimPrefix(path, "/")

	// /api/manual-days — list or declare
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			monthKey := r.URL.Query().Get("month")
			if monthKey == "" {
				monthKey = datekey.ThisMonth()
			}
			if !datekey.ValidMonth(monthKey) {
				apiError(w, "month must be YYYY-MM", http.StatusBadRequest)
				return
			}
			days := s.manual.Load(sc, monthKey)
			if days == nil {
				days = make([]string, 0)
			}
			apiJSON(w, days, http.StatusOK)
		case http.MethodPost:
			s.apiAddManualDay(w, r, sc)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// /api/manual-days/{date}
	if r.Method != http.MethodDelete {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.apiRemoveManualDay(w, path, sc)
}

// apiAddManualDay declares a distribution day in the manual ledger.
func (s *Server) apiAddManualDay(w http.ResponseWriter, r *http.Request, sc scope.Scope) {
	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	monthKey, err := datekey.MonthOf(req.Date)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.manual.Add(sc, monthKey, req.Date); err != nil {
		apiError(w, err.Error(), storeErrorStatus(err))
		return
	}

	s.bus.Emit(feed.Event{OrgID: sc.OrgID, LocationID: sc.LocationID, MonthKey: monthKey})
	apiJSON(w, map[string]interface{}{"date": req.Date, "added": true}, http.StatusCreated)
}

// apiRemoveManualDay drops a declared day from the manual ledger.
func (s *Server) apiRemoveManualDay(w http.ResponseWriter, dateKey string, sc scope.Scope) {
	monthKey, err := datekey.MonthOf(dateKey)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.manual.Remove(sc, monthKey, dateKey); err != nil {
		apiError(w, err.Error(), storeErrorStatus(err))
		return
	}

	s.bus.Emit(feed.Event{OrgID: sc.OrgID, LocationID: sc.LocationID, MonthKey: monthKey})
	apiJSON(w, map[string]interface{}{"date": dateKey, "removed": true}, http.StatusOK)
}
