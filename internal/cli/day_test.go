package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDayCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/days/2026-08-01" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]interface{}{"date": "2026-08-01", "visits": 12}); err != nil {
			t.Errorf("encoding stub response: %v", err)
		}
	}))
	defer srv.Close()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("STC_SERVER_URL", srv.URL)
	t.Setenv("STC_API_KEY", "pc_testkey")

	if _, err := executeCommand("day", "count", "2026-08-01"); err != nil {
		t.Fatalf("day count: %v", err)
	}
}

func TestDayDeleteWithYes(t *testing.T) {
	var deleted bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/days/2026-08-01" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			if err := json.NewEncoder(w).Encode(map[string]interface{}{"date": "2026-08-01", "visits": 3}); err != nil {
				t.Errorf("encoding stub response: %v", err)
			}
		case http.MethodDelete:
			deleted = true
			if err := json.NewEncoder(w).Encode(map[string]interface{}{"date": "2026-08-01", "deleted": 3}); err != nil {
				t.Errorf("encoding stub response: %v", err)
			}
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("STC_SERVER_URL", srv.URL)
	t.Setenv("STC_API_KEY", "pc_testkey")

	if _, err := executeCommand("day", "delete", "2026-08-01", "--yes"); err != nil {
		t.Fatalf("day delete: %v", err)
	}
	if !deleted {
		t.Error("expected a DELETE request to reach the server")
	}
}
