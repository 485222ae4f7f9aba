package scope

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		scope   Scope
		wantErr string
	}{
		{"org and location", Scope{OrgID: "org-1", LocationID: "loc-1"}, ""},
		{"missing org", Scope{LocationID: "loc-1"}, "no organization selected"},
		{"missing location", Scope{OrgID: "org-1"}, "no location selected"},
		{"all locations capability", Scope{OrgID: "org-1", Capabilities: []string{CapAllLocations}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scope.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("Validate() = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		scope    Scope
		monthKey string
		expected string
	}{
		{"with location", Scope{OrgID: "org-1", LocationID: "loc-1"}, "2024-06", "org-1|loc-1|2024-06"},
		{"without location", Scope{OrgID: "org-1"}, "2024-06", "org-1|none|2024-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scope.Key(tt.monthKey); got != tt.expected {
				t.Errorf("Key(%q) = %q, want %q", tt.monthKey, got, tt.expected)
			}
		})
	}
}

func TestHas(t *testing.T) {
	s := Scope{Capabilities: []string{CapAllLocations}}
	if !s.Has(CapAllLocations) {
		t.Error("expected capability to be present")
	}
	if s.Has(CapManageKeys) {
		t.Error("unexpected capability")
	}
}
