package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shepherdstable/pantry-cloud/internal/auth"
	"github.com/shepherdstable/pantry-cloud/internal/db"
	"github.com/shepherdstable/pantry-cloud/internal/email"
	"github.com/shepherdstable/pantry-cloud/internal/org"
	"github.com/shepherdstable/pantry-cloud/internal/scope"
)

// testServer creates a server over a scratch database with one seeded org
// and returns it along with an org-wide manage-keys bearer token.
func testServer(t *testing.T) (*Server, *org.Org, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := d.Close(); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})

	srv := NewServer(d, email.SMTPConfig{})
	t.Cleanup(srv.Close)

	o, err := srv.orgs.CreateOrg(&org.Org{
		Name:     "Zion Food Pantry",
		Address:  "123 Harvest Rd",
		City:     "Springfield",
		State:    "IL",
		Zip:      "62704",
		Preparer: "M. Reyes",
	})
	if err != nil {
		t.Fatalf("create org: %v", err)
	}

	rawKey, _, err := srv.apiKeys.Create("test", auth.Identity{
		Email:        "admin@example.com",
		OrgID:        o.ID,
		Capabilities: []string{scope.CapAllLocations, scope.CapManageKeys},
	})
	if err != nil {
		t.Fatalf("create api key: %v", err)
	}

	return srv, o, rawKey
}

func apiRequest(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	r := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	return w
}

func TestHealth(t *testing.T) {
	srv, _, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAPIRequiresAuth(t *testing.T) {
	srv, _, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/api/clients", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAPIRejectsUnknownKey(t *testing.T) {
	srv, _, _ := testServer(t)

	w := apiRequest(t, srv, "GET", "/api/clients", "pc_bogus", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
