package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shepherdstable/pantry-cloud/internal/auth"
	"github.com/shepherdstable/pantry-cloud/internal/scope"
)

type apiKeyResponse struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	KeyPrefix    string   `json:"key_prefix"`
	Email        string   `json:"email,omitempty"`
	LocationID   string   `json:"location_id,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	CreatedAt    string   `json:"created_at"`
	LastUsedAt   *string  `json:"last_used_at,omitempty"`
}

type apiKeyCreateResponse struct {
	Key            string         `json:"key"` // raw key, shown once
	APIKeyResponse apiKeyResponse `json:"api_key"`
}

func keyResponse(k auth.APIKey) apiKeyResponse {
	resp := apiKeyResponse{
		ID:           k.ID,
		Name:         k.Name,
		KeyPrefix:    k.KeyPrefix,
		Email:        k.Identity.Email,
		LocationID:   k.Identity.LocationID,
		Capabilities: k.Identity.Capabilities,
		CreatedAt:    k.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if k.LastUsedAt != nil {
		s := k.LastUsedAt.Format("2006-01-02T15:04:05Z")
		resp.LastUsedAt = &s
	}
	return resp
}

// handleAPIKeysRoute routes /api/keys and /api/keys/{id}. Every operation
// requires a manage-keys credential.
func (s *Server) handleAPIKeysRoute(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.IdentityFrom(r.Context())
	if !ok || !caller.Has(scope.CapManageKeys) {
		http.Error(w, "Managing keys requires a manage-keys credential", http.StatusForbidden)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/keys")

	// /api/keys (no trailing path)
	if path == "" || path == "/" {
		switch r.Method {
		case http.MethodGet:
			s.handleListKeys(w, caller)
		case http.MethodPost:
			s.handleCreateKey(w, r, caller)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// /api/keys/{id}
	if r.Method == http.MethodDelete {
		s.handleDeleteKey(w, r, caller)
		return
	}

	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// handleCreateKey mints a new API key in the caller's organization. A key
// with no location is org-wide; manage-keys is granted only when asked for.
func (s *Server) handleCreateKey(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	var body struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Location   string `json:"location"`
		ManageKeys bool   `json:"manage_keys"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		name = "API Key"
	}

	var caps []string
	if body.Location == "" {
		caps = append(caps, scope.CapAllLocations)
	}
	if body.ManageKeys {
		caps = append(caps, scope.CapManageKeys)
	}

	rawKey, key, err := s.apiKeys.Create(name, auth.Identity{
		Email:        strings.TrimSpace(body.Email),
		Name:         name,
		OrgID:        caller.OrgID,
		LocationID:   body.Location,
		Capabilities: caps,
	})
	if err != nil {
		slog.Error("creating api key", "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	resp := apiKeyCreateResponse{Key: rawKey, APIKeyResponse: keyResponse(*key)}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("encoding response", "err", err)
	}
}

// handleListKeys returns the org's API keys (without raw keys).
func (s *Server) handleListKeys(w http.ResponseWriter, caller auth.Identity) {
	keys, err := s.apiKeys.List(caller.OrgID)
	if err != nil {
		slog.Error("listing api keys", "err", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]apiKeyResponse, len(keys))
	for i, k := range keys {
		resp[i] = keyResponse(k)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("encoding response", "err", err)
	}
}

// handleDeleteKey revokes an API key in the caller's organization.
func (s *Server) handleDeleteKey(w http.ResponseWriter, r *http.Request, caller auth.Identity) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/keys/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid key ID", http.StatusBadRequest)
		return
	}

	if err := s.apiKeys.Delete(id, caller.OrgID); err != nil {
		slog.Error("deleting api key", "err", err)
		http.Error(w, "Key not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
