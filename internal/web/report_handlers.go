package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shepherdstable/pantry-cloud/internal/datekey"
	"github.com/shepherdstable/pantry-cloud/internal/email"
	"github.com/shepherdstable/pantry-cloud/internal/feed"
	"github.com/shepherdstable/pantry-cloud/internal/report"
	"github.com/shepherdstable/pantry-cloud/internal/scope"
)

// monthParam reads the month query parameter, defaulting to the current month.
func monthParam(r *http.Request) (string, error) {
	monthKey := r.URL.Query().Get("month")
	if monthKey == "" {
		monthKey = datekey.ThisMonth()
	}
	if !datekey.ValidMonth(monthKey) {
		return "", fmt.Errorf("month must be YYYY-MM")
	}
	return monthKey, nil
}

// dayParam reads the day query parameter, defaulting to today.
func dayParam(r *http.Request) (string, error) {
	dateKey := r.URL.Query().Get("day")
	if dateKey == "" {
		dateKey = datekey.Today()
	}
	if !datekey.ValidDay(dateKey) {
		return "", fmt.Errorf("day must be YYYY-MM-DD")
	}
	return dateKey, nil
}

// handleAPIReports routes /api/reports/* requests.
func (s *Server) handleAPIReports(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scopeFrom(r)
	if err != nil {
		apiError(w, err.Error(), http.StatusForbidden)
		return
	}

	switch strings.TrimPrefix(r.URL.Path, "/api/reports/") {
	case "month":
		if r.Method != http.MethodGet {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiMonthReport(w, r, sc)
	case "day":
		if r.Method != http.MethodGet {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiDayReport(w, r, sc)
	case "share":
		if r.Method != http.MethodPost {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiShareReport(w, r, sc)
	case "stream":
		if r.Method != http.MethodGet {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.apiStreamMonth(w, r, sc)
	default:
		apiError(w, "unknown report", http.StatusNotFound)
	}
}

// apiMonthReport returns the aggregated month dashboard.
func (s *Server) apiMonthReport(w http.ResponseWriter, r *http.Request, sc scope.Scope) {
	monthKey, err := monthParam(r)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := s.reports.Month(sc, monthKey)
	if err != nil {
		apiError(w, fmt.Sprintf("building month report: %v", err), http.StatusInternalServerError)
		return
	}
	apiJSON(w, summary, http.StatusOK)
}

// apiDayReport returns one day of visits projected to display rows.
func (s *Server) apiDayReport(w http.ResponseWriter, r *http.Request, sc scope.Scope) {
	dateKey, err := dayParam(r)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := s.reports.DayRows(r.Context(), sc, dateKey)
	if err != nil {
		apiError(w, fmt.Sprintf("building day report: %v", err), http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = make([]report.Row, 0)
	}
	apiJSON(w, map[string]interface{}{"date": dateKey, "rows": rows}, http.StatusOK)
}

// handleAPIExports routes /api/exports/* requests. Each export downloads as
// an attachment under its canonical filename.
func (s *Server) handleAPIExports(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scopeFrom(r)
	if err != nil {
		apiError(w, err.Error(), http.StatusForbidden)
		return
	}
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	kind := strings.TrimPrefix(r.URL.Path, "/api/exports/")
	exp, _, err := s.buildExport(r.Context(), sc, kind, r.URL.Query().Get("month"), r.URL.Query().Get("day"))
	if err != nil {
		apiError(w, err.Error(), storeErrorStatus(err))
		return
	}
	writeExport(w, exp)
}

// writeExport sends a built export as a file download.
func writeExport(w http.ResponseWriter, exp *report.Export) {
	w.Header().Set("Content-Type", exp.MIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(exp.Content)))
	if _, err := w.Write(exp.Content); err != nil {
		slog.Error("writing export", "err", err)
	}
}

// buildExport builds the named export kind plus a human label for email
// bodies. Empty month and day parameters default to the current period.
func (s *Server) buildExport(ctx context.Context, sc scope.Scope, kind, monthKey, dateKey string) (*report.Export, string, error) {
	if monthKey == "" {
		monthKey = datekey.ThisMonth()
	}
	if dateKey == "" {
		dateKey = datekey.Today()
	}

	switch kind {
	case "month.csv":
		if !datekey.ValidMonth(monthKey) {
			return nil, "", fmt.Errorf("invalid month key %q (use YYYY-MM)", monthKey)
		}
		exp, err := s.reports.MonthCSV(sc, monthKey)
		return exp, "USDA monthly visit data", err
	case "month.pdf":
		if !datekey.ValidMonth(monthKey) {
			return nil, "", fmt.Errorf("invalid month key %q (use YYYY-MM)", monthKey)
		}
		exp, err := s.reports.MonthPDF(sc, monthKey)
		return exp, "USDA monthly report", err
	case "day.csv":
		if !datekey.ValidDay(dateKey) {
			return nil, "", fmt.Errorf("invalid date key %q (use YYYY-MM-DD)", dateKey)
		}
		exp, err := s.reports.DayCSV(ctx, sc, dateKey)
		return exp, "daily visit data", err
	case "day.pdf":
		if !datekey.ValidDay(dateKey) {
			return nil, "", fmt.Errorf("invalid date key %q (use YYYY-MM-DD)", dateKey)
		}
		exp, err := s.reports.DayPDF(ctx, sc, dateKey)
		return exp, "EFAP daily sheet", err
	default:
		return nil, "", fmt.Errorf("invalid export kind %q", kind)
	}
}

type shareRequest struct {
	To     []string `json:"to"`
	Kind   string   `json:"kind"` // month.pdf, month.csv, day.pdf, day.csv
	Month  string   `json:"month"`
	Day    string   `json:"day"`
	DryRun bool     `json:"dry_run"`
}

type shareResponse struct {
	Sent     bool     `json:"sent"`
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	Filename string   `json:"filename"`
}

// apiShareReport builds an export and emails it as an attachment.
func (s *Server) apiShareReport(w http.ResponseWriter, r *http.Request, sc scope.Scope) {
	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if len(req.To) == 0 {
		apiError(w, "at least one recipient is required", http.StatusBadRequest)
		return
	}

	exp, label, err := s.buildExport(r.Context(), sc, req.Kind, req.Month, req.Day)
	if err != nil {
		apiError(w, err.Error(), storeErrorStatus(err))
		return
	}

	o, err := s.orgs.GetOrg(sc.OrgID)
	if err != nil {
		apiError(w, err.Error(), storeErrorStatus(err))
		return
	}

	subject := fmt.Sprintf("%s: %s", o.Name, exp.Filename)
	resp := shareResponse{To: req.To, Subject: subject, Filename: exp.Filename}

	if req.DryRun {
		apiJSON(w, resp, http.StatusOK)
		return
	}

	if !s.smtpCfg.IsConfigured() {
		apiError(w, "SMTP not configured — set STC_SMTP_HOST and STC_SMTP_FROM", http.StatusServiceUnavailable)
		return
	}

	body := email.FormatShareBody(o.Name, label, exp.Filename)
	att := email.Attachment{Filename: exp.Filename, MIME: exp.MIME, Content: exp.Content}
	if err := email.SendReport(s.smtpCfg, req.To, subject, body, att); err != nil {
		apiError(w, fmt.Sprintf("sending report: %v", err), http.StatusInternalServerError)
		return
	}

	resp.Sent = true
	apiJSON(w, resp, http.StatusOK)
}

// streamPayload is one server-sent event on the month report stream.
type streamPayload struct {
	State    feed.State           `json:"state"`
	LastSync time.Time            `json:"last_sync"`
	Summary  *report.MonthSummary `json:"summary"`
}

// apiStreamMonth pushes live month summaries over server-sent events. Each
// write replaces the previous state wholesale; a payload marked degraded
// carries the last data the server could load.
func (s *Server) apiStreamMonth(w http.ResponseWriter, r *http.Request, sc scope.Scope) {
	monthKey, err := monthParam(r)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		apiError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	watcher := feed.NewWatcher(s.bus, s.visits, sc, monthKey)
	for update := range watcher.Watch(r.Context()) {
		payload := streamPayload{
			State:    update.State,
			LastSync: update.LastSync,
			Summary:  report.Summarize(monthKey, update.Visits, s.manual.Load(sc, monthKey)),
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return
		}
		flusher.Flush()
	}
}
