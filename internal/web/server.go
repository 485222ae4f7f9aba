// Package web provides the HTTP API server for pantry-cloud.
package web

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/shepherdstable/pantry-cloud/internal/auth"
	"github.com/shepherdstable/pantry-cloud/internal/client"
	"github.com/shepherdstable/pantry-cloud/internal/email"
	"github.com/shepherdstable/pantry-cloud/internal/feed"
	"github.com/shepherdstable/pantry-cloud/internal/ledger"
	"github.com/shepherdstable/pantry-cloud/internal/logging"
	"github.com/shepherdstable/pantry-cloud/internal/org"
	"github.com/shepherdstable/pantry-cloud/internal/report"
	"github.com/shepherdstable/pantry-cloud/internal/visit"
)

// Server is the pantry API HTTP server.
type Server struct {
	orgs     *org.Repository
	clients  *client.Repository
	visits   *visit.Repository
	visitSvc *visit.Service
	reports  *report.Service
	manual   *ledger.Ledger
	apiKeys  *auth.APIKeyStore
	smtpCfg  email.SMTPConfig
	bus      *feed.Bus
	mux      *http.ServeMux
	handler  http.Handler
}

// NewServer creates an API server over the given database.
func NewServer(db *sql.DB, smtpCfg email.SMTPConfig) *Server {
	orgs := org.NewRepository(db)
	clients := client.NewRepository(db)
	visits := visit.NewRepository(db)
	manual := ledger.New(ledger.NewDBStore(db))

	s := &Server{
		orgs:     orgs,
		clients:  clients,
		visits:   visits,
		visitSvc: visit.NewService(visits, clients),
		reports:  report.NewService(visits, clients, orgs, manual),
		manual:   manual,
		apiKeys:  auth.NewAPIKeyStore(db),
		smtpCfg:  smtpCfg,
		bus:      feed.NewBus(),
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/org", s.handleAPIOrg)
	s.mux.HandleFunc("/api/org/locations", s.handleAPILocations)
	s.mux.HandleFunc("/api/clients", s.handleAPIClients)
	s.mux.HandleFunc("/api/clients/", s.handleAPIClients)
	s.mux.HandleFunc("/api/visits", s.handleAPIVisits)
	s.mux.HandleFunc("/api/visits/", s.handleAPIVisits)
	s.mux.HandleFunc("/api/days/", s.handleAPIDays)
	s.mux.HandleFunc("/api/manual-days", s.handleAPIManualDays)
	s.mux.HandleFunc("/api/manual-days/", s.handleAPIManualDays)
	s.mux.HandleFunc("/api/reports/", s.handleAPIReports)
	s.mux.HandleFunc("/api/exports/", s.handleAPIExports)
	s.mux.HandleFunc("/api/keys", s.handleAPIKeysRoute)
	s.mux.HandleFunc("/api/keys/", s.handleAPIKeysRoute)

	s.handler = auth.RequireIdentity(s.apiKeys, s.mux)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(port int) error {
	addr := fmt.Sprintf(":%d", port)
	fmt.Printf("Starting pantry API on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, logging.RequestLogger(s))
}

// Close shuts down the live update bus, ending any open report streams.
func (s *Server) Close() {
	s.bus.Close()
}

// handleHealth reports process liveness. It sits outside the API key check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
