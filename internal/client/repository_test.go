package client

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/shepherdstable/pantry-cloud/internal/db"
)

func TestCreateAndGet(t *testing.T) {
	repo, orgID := testSetup(t)

	c, err := repo.Create(&Client{
		OrgID:         orgID,
		FirstName:     "Ada",
		LastName:      "Okafor",
		Address:       "45 Mill Ln",
		County:        "Sangamon",
		Zip:           "62704",
		HouseholdSize: 4,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == "" {
		t.Error("expected non-empty ID")
	}
	if c.HouseholdSize != 4 {
		t.Errorf("household_size = %d, want 4", c.HouseholdSize)
	}

	got, err := repo.Get(c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FullName() != "Ada Okafor" {
		t.Errorf("full name = %q, want %q", got.FullName(), "Ada Okafor")
	}
}

func TestCreateDefaultsHouseholdSize(t *testing.T) {
	repo, orgID := testSetup(t)

	c, err := repo.Create(&Client{OrgID: orgID, FirstName: "Ada"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.HouseholdSize != 1 {
		t.Errorf("household_size = %d, want 1", c.HouseholdSize)
	}
}

func TestCreateValidation(t *testing.T) {
	repo, orgID := testSetup(t)

	if _, err := repo.Create(&Client{FirstName: "Ada"}); err == nil {
		t.Error("expected error for missing org id")
	}
	if _, err := repo.Create(&Client{OrgID: orgID}); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestListOrdered(t *testing.T) {
	repo, orgID := testSetup(t)

	names := [][2]string{{"Maya", "Zhou"}, {"Ada", "Okafor"}, {"Leo", "Abbott"}}
	for _, n := range names {
		if _, err := repo.Create(&Client{OrgID: orgID, FirstName: n[0], LastName: n[1]}); err != nil {
			t.Fatalf("create %s: %v", n[1], err)
		}
	}

	clients, err := repo.List(orgID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(clients) != 3 {
		t.Fatalf("got %d clients, want 3", len(clients))
	}
	if clients[0].LastName != "Abbott" || clients[2].LastName != "Zhou" {
		t.Errorf("clients not ordered by last name: %q, %q, %q",
			clients[0].LastName, clients[1].LastName, clients[2].LastName)
	}
}

func TestUpdate(t *testing.T) {
	repo, orgID := testSetup(t)

	c, err := repo.Create(&Client{OrgID: orgID, FirstName: "Ada", LastName: "Okafor"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	c.Address = "99 New Rd"
	c.HouseholdSize = 6
	updated, err := repo.Update(c)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Address != "99 New Rd" {
		t.Errorf("address = %q, want %q", updated.Address, "99 New Rd")
	}
	if updated.HouseholdSize != 6 {
		t.Errorf("household_size = %d, want 6", updated.HouseholdSize)
	}
}

func TestDelete(t *testing.T) {
	repo, orgID := testSetup(t)

	c, err := repo.Create(&Client{OrgID: orgID, FirstName: "Ada"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete(c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(c.ID); err == nil {
		t.Error("expected error after delete")
	}

	if err := repo.Delete("missing"); err == nil {
		t.Error("expected error for missing client")
	}
}

func TestGetBatch(t *testing.T) {
	repo, orgID := testSetup(t)

	var ids []string
	for i := 0; i < 25; i++ {
		c, err := repo.Create(&Client{OrgID: orgID, FirstName: fmt.Sprintf("Client%02d", i)})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids = append(ids, c.ID)
	}

	// Duplicates and unknown ids must not break the batch.
	lookup := append([]string{}, ids...)
	lookup = append(lookup, ids[0], "missing-id", "")

	found, err := repo.GetBatch(context.Background(), lookup)
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if len(found) != 25 {
		t.Errorf("got %d clients, want 25", len(found))
	}
	if _, ok := found["missing-id"]; ok {
		t.Error("unexpected entry for unknown id")
	}
	if found[ids[3]].FirstName != "Client03" {
		t.Errorf("first_name = %q, want %q", found[ids[3]].FirstName, "Client03")
	}
}

func TestGetBatchEmpty(t *testing.T) {
	repo, _ := testSetup(t)

	found, err := repo.GetBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("got %d clients, want 0", len(found))
	}
}

func TestFullName(t *testing.T) {
	tests := []struct {
		name     string
		client   Client
		expected string
	}{
		{"both names", Client{FirstName: "Ada", LastName: "Okafor"}, "Ada Okafor"},
		{"first only", Client{FirstName: "Ada"}, "Ada"},
		{"last only", Client{LastName: "Okafor"}, "Okafor"},
		{"empty", Client{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.client.FullName(); got != tt.expected {
				t.Errorf("FullName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func testSetup(t *testing.T) (*Repository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})

	if _, err := d.Exec(`INSERT INTO orgs (id, name) VALUES ('org-1', 'Test Pantry')`); err != nil {
		t.Fatalf("insert org: %v", err)
	}

	return NewRepository(d), "org-1"
}
