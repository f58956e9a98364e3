package normalize

import "testing"

func TestContainsFold(t *testing.T) {
	tests := []struct {
		s      string
		substr string
		want   bool
	}{
		{"The Name of the Wind", "name", true},
		{"The Name of the Wind", "NAME OF", true},
		{"El Quijote", "QUIJOTE", true},
		{"Crónica de una muerte anunciada", "crónica", true},
		{"Straße nach Norden", "STRASSE", true},
		{"The Name of the Wind", "storm", false},
		{"", "x", false},
		{"anything", "", true},
	}

	for _, tt := range tests {
		if got := ContainsFold(tt.s, tt.substr); got != tt.want {
			t.Errorf("ContainsFold(%q, %q): got %v, want %v", tt.s, tt.substr, got, tt.want)
		}
	}
}

func TestEqualFold(t *testing.T) {
	if !EqualFold("Reading", "rEADING") {
		t.Error("expected case-insensitive equality")
	}
	if EqualFold("Reading", "Read") {
		t.Error("distinct strings should not compare equal")
	}
}
