package models

import (
	"testing"
	"time"
)

func TestParsePackageType(t *testing.T) {
	tests := []struct {
		input   string
		want    PackageType
		wantErr bool
	}{
		{"HEALING", TypeHealing, false},
		{"healing", TypeHealing, false},
		{" ship ", TypeShip, false},
		{"GOLMOK", TypeGolmok, false},
		{"HIDDEN", "", true}, // from the retired three-value set
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePackageType(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePackageType(%q) expected error, got %q", tt.input, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParsePackageType(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"3", 3},
		{" 12 ", 12},
		{"0", 0},
		{"-5", 0},
		{"abc", 0},
		{"", 0},
		{"2.5", 0},
	}
	for _, tt := range tests {
		if got := ParseCount(tt.input); got != tt.want {
			t.Errorf("ParseCount(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestPartyCompositionNormalize(t *testing.T) {
	party := PartyComposition{AdultCount: -1, ChildCount: 2, InfantCount: -3}.Normalize()
	if party.AdultCount != 0 || party.ChildCount != 2 || party.InfantCount != 0 {
		t.Errorf("Normalize() = %+v, want non-negative counts", party)
	}
	if got := party.Size(); got != 2 {
		t.Errorf("Size() = %d, want 2", got)
	}
}

func TestFormatDate(t *testing.T) {
	day := time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC)
	if got := FormatDate(day); got != "2026-09-01" {
		t.Errorf("FormatDate() = %q, want 2026-09-01", got)
	}
}
