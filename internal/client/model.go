// Package client provides the household client domain model and data access.
package client

import (
	"strings"
	"time"
)

// Client represents a household served by an organization. Visits capture a
// snapshot of these fields at record time, so a profile can change or be
// deleted without rewriting history.
type Client struct {
	ID            string    `json:"id"`
	OrgID         string    `json:"org_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Address       string    `json:"address,omitempty"`
	County        string    `json:"county,omitempty"`
	Zip           string    `json:"zip,omitempty"`
	HouseholdSize int64     `json:"household_size"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FullName joins the first and last names, tolerating either being empty.
func (c *Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
