package visit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shepherdstable/pantry-cloud/internal/client"
	"github.com/shepherdstable/pantry-cloud/internal/db"
	"github.com/shepherdstable/pantry-cloud/internal/scope"
)

func TestRecordDerivesFirstTime(t *testing.T) {
	svc, repo, ids := serviceSetup(t)
	s := scope.Scope{OrgID: "org-1", LocationID: "loc-1"}

	first, err := svc.Record(RecordInput{Scope: s, ClientID: ids.ada, DateKey: "2024-06-03"})
	if err != nil {
		t.Fatalf("record first: %v", err)
	}
	if !first.FirstTime() {
		t.Error("first visit of month should be flagged first-time")
	}

	has, err := repo.HasMarker("org-1", ids.ada, "2024-06")
	if err != nil {
		t.Fatalf("has marker: %v", err)
	}
	if !has {
		t.Error("expected marker after first visit")
	}

	second, err := svc.Record(RecordInput{Scope: s, ClientID: ids.ada, DateKey: "2024-06-10"})
	if err != nil {
		t.Fatalf("record second: %v", err)
	}
	if second.FirstTime() {
		t.Error("second visit in same month should not be first-time")
	}

	nextMonth, err := svc.Record(RecordInput{Scope: s, ClientID: ids.ada, DateKey: "2024-07-02"})
	if err != nil {
		t.Fatalf("record next month: %v", err)
	}
	if !nextMonth.FirstTime() {
		t.Error("first visit of a new month should be first-time again")
	}

	other, err := svc.Record(RecordInput{Scope: s, ClientID: ids.bea, DateKey: "2024-06-10"})
	if err != nil {
		t.Fatalf("record other client: %v", err)
	}
	if !other.FirstTime() {
		t.Error("another client's first visit should be first-time")
	}
}

func TestRecordPinnedFlag(t *testing.T) {
	svc, repo, ids := serviceSetup(t)
	s := scope.Scope{OrgID: "org-1", LocationID: "loc-1"}

	no := false
	v, err := svc.Record(RecordInput{Scope: s, ClientID: ids.ada, DateKey: "2024-06-03", FirstTime: &no})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if v.FirstTime() {
		t.Error("pinned false flag should be stored as false")
	}

	has, err := repo.HasMarker("org-1", ids.ada, "2024-06")
	if err != nil {
		t.Fatalf("has marker: %v", err)
	}
	if has {
		t.Error("pinned-false visit must not claim the marker")
	}

	// The month's first-time status stays claimable.
	later, err := svc.Record(RecordInput{Scope: s, ClientID: ids.ada, DateKey: "2024-06-10"})
	if err != nil {
		t.Fatalf("record later: %v", err)
	}
	if !later.FirstTime() {
		t.Error("derived visit should claim first-time after a pinned-false visit")
	}
}

func TestRecordSnapshotsClient(t *testing.T) {
	svc, repo, ids := serviceSetup(t)
	s := scope.Scope{OrgID: "org-1", LocationID: "loc-1"}

	v, err := svc.Record(RecordInput{Scope: s, ClientID: ids.ada, DateKey: "2024-06-03"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if v.ClientFirstName != "Ada" || v.ClientLastName != "Okafor" {
		t.Errorf("snapshot name = %q %q, want Ada Okafor", v.ClientFirstName, v.ClientLastName)
	}
	if v.ClientCounty != "Sangamon" {
		t.Errorf("snapshot county = %q, want Sangamon", v.ClientCounty)
	}
	if v.HouseholdSize != 4 {
		t.Errorf("household_size = %d, want profile default 4", v.HouseholdSize)
	}

	// Profile edits after the fact must not reach the stored snapshot.
	ada, err := svc.clients.Get(ids.ada)
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	ada.County = "Cook"
	if _, err := svc.clients.Update(ada); err != nil {
		t.Fatalf("update client: %v", err)
	}

	stored, err := repo.Get(v.ID)
	if err != nil {
		t.Fatalf("get visit: %v", err)
	}
	if stored.ClientCounty != "Sangamon" {
		t.Errorf("snapshot county after profile edit = %q, want Sangamon", stored.ClientCounty)
	}
}

func TestRecordHouseholdOverride(t *testing.T) {
	svc, _, ids := serviceSetup(t)
	s := scope.Scope{OrgID: "org-1", LocationID: "loc-1"}

	two := int64(2)
	v, err := svc.Record(RecordInput{Scope: s, ClientID: ids.ada, DateKey: "2024-06-03", HouseholdSize: &two})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if v.HouseholdSize != 2 {
		t.Errorf("household_size = %d, want 2", v.HouseholdSize)
	}

	zero := int64(0)
	v, err = svc.Record(RecordInput{Scope: s, ClientID: ids.ada, DateKey: "2024-06-04", HouseholdSize: &zero})
	if err != nil {
		t.Fatalf("record zero: %v", err)
	}
	if v.HouseholdSize != 0 {
		t.Errorf("household_size = %d, want 0", v.HouseholdSize)
	}
}

func TestRecordUSDACount(t *testing.T) {
	svc, _, ids := serviceSetup(t)
	s := scope.Scope{OrgID: "org-1", LocationID: "loc-1"}

	three := int64(3)
	v, err := svc.Record(RecordInput{Scope: s, ClientID: ids.ada, DateKey: "2024-06-03", USDACount: &three})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if v.USDACount == nil || *v.USDACount != 3 {
		t.Errorf("usda_count = %v, want 3", v.USDACount)
	}
	if v.USDAUnits() != 3 {
		t.Errorf("USDAUnits() = %d, want 3", v.USDAUnits())
	}
}

func TestRecordClientOrgMismatch(t *testing.T) {
	svc, _, ids := serviceSetup(t)
	s := scope.Scope{OrgID: "org-1", LocationID: "loc-1"}

	if _, err := svc.Record(RecordInput{Scope: s, ClientID: ids.zoe, DateKey: "2024-06-03"}); err == nil {
		t.Fatal("expected error for client from another org")
	}
}

func TestRecordUnknownClient(t *testing.T) {
	svc, _, _ := serviceSetup(t)
	s := scope.Scope{OrgID: "org-1", LocationID: "loc-1"}

	if _, err := svc.Record(RecordInput{Scope: s, ClientID: "missing", DateKey: "2024-06-03"}); err == nil {
		t.Fatal("expected error for unknown client")
	}
}

func TestRecordRetroactive(t *testing.T) {
	svc, _, ids := serviceSetup(t)
	s := scope.Scope{OrgID: "org-1", LocationID: "loc-1"}

	v, err := svc.Record(RecordInput{Scope: s, ClientID: ids.ada, DateKey: "2023-11-20", AddedByReports: true})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !v.AddedByReports {
		t.Error("expected added_by_reports to be stored")
	}
	if v.EffectiveDay() != "2023-11-20" {
		t.Errorf("effective day = %q, want %q", v.EffectiveDay(), "2023-11-20")
	}
	if v.VisitAt.Hour() != 12 {
		t.Errorf("retroactive instant hour = %d, want noon", v.VisitAt.Hour())
	}
}

func TestRecordVisitAtMismatch(t *testing.T) {
	svc, _, ids := serviceSetup(t)
	s := scope.Scope{OrgID: "org-1", LocationID: "loc-1"}

	_, err := svc.Record(RecordInput{
		Scope:    s,
		ClientID: ids.ada,
		DateKey:  "2024-06-03",
		VisitAt:  time.Date(2024, 6, 4, 10, 0, 0, 0, time.Local),
	})
	if err == nil {
		t.Fatal("expected error for visit time on a different day")
	}
}

func TestDeleteVisitClearsMarker(t *testing.T) {
	svc, repo, ids := serviceSetup(t)
	s := scope.Scope{OrgID: "org-1", LocationID: "loc-1"}

	v, err := svc.Record(RecordInput{Scope: s, ClientID: ids.ada, DateKey: "2024-06-03"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !v.FirstTime() {
		t.Fatal("setup: expected first-time visit")
	}

	if err := svc.DeleteVisit(v.ID); err != nil {
		t.Fatalf("delete visit: %v", err)
	}

	has, err := repo.HasMarker("org-1", ids.ada, "2024-06")
	if err != nil {
		t.Fatalf("has marker: %v", err)
	}
	if has {
		t.Error("marker should be cleared when the flagged visit is deleted")
	}

	// First-time status is reclaimable after the delete.
	again, err := svc.Record(RecordInput{Scope: s, ClientID: ids.ada, DateKey: "2024-06-15"})
	if err != nil {
		t.Fatalf("record again: %v", err)
	}
	if !again.FirstTime() {
		t.Error("expected first-time status to be reclaimed")
	}
}

type clientIDs struct {
	ada string
	bea string
	zoe string
}

func serviceSetup(t *testing.T) (*Service, *Repository, clientIDs) {
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

	for _, stmt := range []string{
		`INSERT INTO orgs (id, name) VALUES ('org-1', 'Test Pantry')`,
		`INSERT INTO orgs (id, name) VALUES ('org-2', 'Other Pantry')`,
		`INSERT INTO locations (id, org_id, name) VALUES ('loc-1', 'org-1', 'Main')`,
	} {
		if _, err := d.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	clients := client.NewRepository(d)
	ada, err := clients.Create(&client.Client{
		OrgID: "org-1", FirstName: "Ada", LastName: "Okafor",
		Address: "45 Mill Ln", County: "Sangamon", Zip: "62704", HouseholdSize: 4,
	})
	if err != nil {
		t.Fatalf("create ada: %v", err)
	}
	bea, err := clients.Create(&client.Client{OrgID: "org-1", FirstName: "Bea", LastName: "Lund", HouseholdSize: 2})
	if err != nil {
		t.Fatalf("create bea: %v", err)
	}
	zoe, err := clients.Create(&client.Client{OrgID: "org-2", FirstName: "Zoe", LastName: "Hart"})
	if err != nil {
		t.Fatalf("create zoe: %v", err)
	}

	repo := NewRepository(d)
	return NewService(repo, clients), repo, clientIDs{ada: ada.ID, bea: bea.ID, zoe: zoe.ID}
}
