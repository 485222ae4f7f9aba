// Package apiclient provides an HTTP client for the pantry-cloud REST API.
package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/shepherdstable/pantry-cloud/internal/client"
	"github.com/shepherdstable/pantry-cloud/internal/org"
	"github.com/shepherdstable/pantry-cloud/internal/report"
	"github.com/shepherdstable/pantry-cloud/internal/visit"
)

// Client is an HTTP client for the pantry-cloud API.
type Client struct {
	baseURL      string
	apiKey       string
	locationID   string
	httpClient   *http.Client
	streamClient *http.Client // no timeout, report streams stay open
}

// New creates a new API client. A non-empty locationID narrows every call
// to that distribution site.
func New(baseURL, apiKey, locationID string) *Client {
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		locationID:   locationID,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		streamClient: &http.Client{},
	}
}

// query starts a parameter set carrying the client's location, if any.
func (c *Client) query() url.Values {
	q := url.Values{}
	if c.locationID != "" {
		q.Set("location", c.locationID)
	}
	return q
}

// pathWithQuery joins a path with encoded query parameters, if any.
func pathWithQuery(path string, q url.Values) string {
	if encoded := q.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}

// Org returns the caller's organization profile.
func (c *Client) Org() (*org.Org, error) {
	var o org.Org
	if err := c.get(pathWithQuery("/api/org", c.query()), &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// OrgUpdate carries the report branding fields for UpdateOrg.
type OrgUpdate struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Preparer string `json:"preparer"`
}

// UpdateOrg rewrites the organization's report branding fields.
func (c *Client) UpdateOrg(in OrgUpdate) (*org.Org, error) {
	var o org.Org
	if err := c.put(pathWithQuery("/api/org", c.query()), in, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListLocations returns the org's distribution sites.
func (c *Client) ListLocations() ([]*org.Location, error) {
	var locations []*org.Location
	if err := c.get(pathWithQuery("/api/org/locations", c.query()), &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// AddLocation registers a new distribution site.
func (c *Client) AddLocation(name string) (*org.Location, error) {
	body := map[string]string{"name": name}
	var l org.Location
	if err := c.post(pathWithQuery("/api/org/locations", c.query()), body, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// ClientInput carries the profile fields for adding or updating a client.
type ClientInput struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Address       string `json:"address"`
	County        string `json:"county"`
	Zip           string `json:"zip"`
	HouseholdSize int64  `json:"household_size"`
}

// ListClients returns the org's client registry.
func (c *Client) ListClients() ([]*client.Client, error) {
	var clients []*client.Client
	if err := c.get(pathWithQuery("/api/clients", c.query()), &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// AddClient registers a household.
func (c *Client) AddClient(in ClientInput) (*client.Client, error) {
	var cl client.Client
	if err := c.post(pathWithQuery("/api/clients", c.query()), in, &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

// GetClient returns one client profile.
func (c *Client) GetClient(id string) (*client.Client, error) {
	var cl client.Client
	if err := c.get(pathWithQuery("/api/clients/"+id, c.query()), &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

// UpdateClient rewrites a client's profile fields.
func (c *Client) UpdateClient(id string, in ClientInput) (*client.Client, error) {
	var cl client.Client
	if err := c.put(pathWithQuery("/api/clients/"+id, c.query()), in, &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

// RemoveClient deletes a client profile. Recorded visits keep their
// snapshot of the profile.
func (c *Client) RemoveClient(id string) error {
	return c.doDelete(pathWithQuery("/api/clients/"+id, c.query()), nil)
}

// VisitInput carries the fields for recording a visit.
type VisitInput struct {
	ClientID      string `json:"client_id"`
	Date          string `json:"date,omitempty"`
	VisitAt       string `json:"visit_at,omitempty"`
	HouseholdSize *int64 `json:"household_size,omitempty"`
	USDACount     *int64 `json:"usda_count,omitempty"`
	FirstTime     *bool  `json:"first_time,omitempty"`
}

// RecordVisit stores a new visit.
func (c *Client) RecordVisit(in VisitInput) (*visit.Visit, error) {
	var v visit.Visit
	if err := c.post(pathWithQuery("/api/visits", c.query()), in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListMonthVisits returns one month of visits.
func (c *Client) ListMonthVisits(monthKey string) ([]*visit.Visit, error) {
	q := c.query()
	if monthKey != "" {
		q.Set("month", monthKey)
	}
	var visits []*visit.Visit
	if err := c.get(pathWithQuery("/api/visits", q), &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// ListDayVisits returns one day of visits.
func (c *Client) ListDayVisits(dateKey string) ([]*visit.Visit, error) {
	q := c.query()
	q.Set("day", dateKey)
	var visits []*visit.Visit
	if err := c.get(pathWithQuery("/api/visits", q), &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// RemoveVisit deletes one visit.
func (c *Client) RemoveVisit(id string) error {
	return c.doDelete(pathWithQuery("/api/visits/"+id, c.query()), nil)
}

// CountDay returns how many visits the server holds for one day.
func (c *Client) CountDay(dateKey string) (int64, error) {
	var resp struct {
		Date   string `json:"date"`
		Visits int64  `json:"visits"`
	}
	if err := c.get(pathWithQuery("/api/days/"+dateKey, c.query()), &resp); err != nil {
		return 0, err
	}
	return resp.Visits, nil
}

// DeleteDay removes every visit on a day and returns the deletion count.
func (c *Client) DeleteDay(dateKey string) (int, error) {
	var resp struct {
		Date    string `json:"date"`
		Deleted int    `json:"deleted"`
	}
	if err := c.doDelete(pathWithQuery("/api/days/"+dateKey, c.query()), &resp); err != nil {
		return 0, err
	}
	return resp.Deleted, nil
}

// ManualDays returns the operator-declared distribution days for a month.
func (c *Client) ManualDays(monthKey string) ([]string, error) {
	q := c.query()
	if monthKey != "" {
		q.Set("month", monthKey)
	}
	var days []string
	if err := c.get(pathWithQuery("/api/manual-days", q), &days); err != nil {
		return nil, err
	}
	return days, nil
}

// AddManualDay declares a distribution day.
func (c *Client) AddManualDay(dateKey string) error {
	body := map[string]string{"date": dateKey}
	return c.post(pathWithQuery("/api/manual-days", c.query()), body, nil)
}

// RemoveManualDay withdraws a declared distribution day.
func (c *Client) RemoveManualDay(dateKey string) error {
	return c.doDelete(pathWithQuery("/api/manual-days/"+dateKey, c.query()), nil)
}

// MonthReport returns the aggregated month dashboard.
func (c *Client) MonthReport(monthKey string) (*report.MonthSummary, error) {
	q := c.query()
	if monthKey != "" {
		q.Set("month", monthKey)
	}
	var summary report.MonthSummary
	if err := c.get(pathWithQuery("/api/reports/month", q), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// DayReport is the response from GET /api/reports/day.
type DayReport struct {
	Date string       `json:"date"`
	Rows []report.Row `json:"rows"`
}

// GetDayReport returns one day of visits projected to display rows.
func (c *Client) GetDayReport(dateKey string) (*DayReport, error) {
	q := c.query()
	if dateKey != "" {
		q.Set("day", dateKey)
	}
	var resp DayReport
	if err := c.get(pathWithQuery("/api/reports/day", q), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export downloads one report artifact, preserving the server's filename
// and content type.
func (c *Client) Export(kind, monthKey, dateKey string) (*report.Export, error) {
	q := c.query()
	if monthKey != "" {
		q.Set("month", monthKey)
	}
	if dateKey != "" {
		q.Set("day", dateKey)
	}

	req, err := http.NewRequest("GET", c.baseURL+pathWithQuery("/api/exports/"+kind, q), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, decodeError(body, resp.StatusCode)
	}

	filename := ""
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			filename = params["filename"]
		}
	}

	return &report.Export{
		Filename: filename,
		MIME:     resp.Header.Get("Content-Type"),
		Content:  body,
	}, nil
}

// ShareRequest selects a report export to email.
type ShareRequest struct {
	To     []string `json:"to"`
	Kind   string   `json:"kind"`
	Month  string   `json:"month,omitempty"`
	Day    string   `json:"day,omitempty"`
	DryRun bool     `json:"dry_run"`
}

// ShareResponse is the response from POST /api/reports/share.
type ShareResponse struct {
	Sent     bool     `json:"sent"`
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	Filename string   `json:"filename"`
}

// Share emails a report export to the given recipients.
func (c *Client) Share(in ShareRequest) (*ShareResponse, error) {
	var resp ShareResponse
	if err := c.post(pathWithQuery("/api/reports/share", c.query()), in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// KeyInput describes an API key to mint.
type KeyInput struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Location   string `json:"location,omitempty"`
	ManageKeys bool   `json:"manage_keys,omitempty"`
}

// KeyInfo is one API key as reported by the server, without the raw key.
type KeyInfo struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	KeyPrefix    string   `json:"key_prefix"`
	Email        string   `json:"email,omitempty"`
	LocationID   string   `json:"location_id,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	CreatedAt    string   `json:"created_at"`
	LastUsedAt   *string  `json:"last_used_at,omitempty"`
}

// CreateKey mints a new API key. The raw key is only ever returned here.
func (c *Client) CreateKey(in KeyInput) (string, *KeyInfo, error) {
	var resp struct {
		Key    string  `json:"key"`
		APIKey KeyInfo `json:"api_key"`
	}
	if err := c.post("/api/keys", in, &resp); err != nil {
		return "", nil, err
	}
	return resp.Key, &resp.APIKey, nil
}

// ListKeys returns the org's API keys.
func (c *Client) ListKeys() ([]KeyInfo, error) {
	var keys []KeyInfo
	if err := c.get("/api/keys", &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// RemoveKey revokes an API key.
func (c *Client) RemoveKey(id int64) error {
	return c.doDelete(fmt.Sprintf("/api/keys/%d", id), nil)
}

// get performs a GET request and decodes the response.
func (c *Client) get(path string, result interface{}) error {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

// post performs a POST request with a JSON body and decodes the response.
func (c *Client) post(path string, body interface{}, result interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

// put performs a PUT request with a JSON body and decodes the response.
func (c *Client) put(path string, body interface{}, result interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequest("PUT", c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

// doDelete performs a DELETE request and decodes any response body.
func (c *Client) doDelete(path string, result interface{}) error {
	req, err := http.NewRequest("DELETE", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

// do executes an HTTP request with auth header and handles errors.
func (c *Client) do(req *http.Request, result interface{}) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeError(respBody, resp.StatusCode)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

// decodeError surfaces the server's error message when it sent one.
func decodeError(body []byte, status int) error {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return fmt.Errorf("%s", errResp.Error)
	}
	return fmt.Errorf("server error: %s", http.StatusText(status))
}
