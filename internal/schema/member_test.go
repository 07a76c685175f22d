package schema

import "testing"

func TestCanonicalMembership(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Full", "Full", true},
		{"full", "Full", true},
		{"  STUDENT  ", "Student", true},
		{"assoc", "Associate", true},
		{"Assoc", "Associate", true},
		{"Associate", "Associate", true},
		{"life", "Honorary", true},
		{"Life Member", "Honorary", true},
		{"Honorary", "Honorary", true},
		{"Platinum", "Platinum", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := CanonicalMembership(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("CanonicalMembership(%q) = (%q, %v), want (%q, %v)",
				tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestByName(t *testing.T) {
	f, ok := ByName(FieldCallSign)
	if !ok {
		t.Fatalf("ByName(%q) not found", FieldCallSign)
	}
	if f.MaxLen != 10 {
		t.Errorf("callSign MaxLen = %d, want 10", f.MaxLen)
	}

	if _, ok := ByName("nonexistent"); ok {
		t.Error("ByName(nonexistent) = ok, want miss")
	}
}

func TestFieldsCoverAllNames(t *testing.T) {
	names := []string{
		FieldNameCombined, FieldFirstName, FieldLastName, FieldEmail,
		FieldCallSign, FieldClass, FieldMembership, FieldJoinDate, FieldMailList,
	}
	for _, n := range names {
		if _, ok := ByName(n); !ok {
			t.Errorf("field %q missing from Fields", n)
		}
	}
}
