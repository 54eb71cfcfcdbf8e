package model

import (
	"testing"
	"time"
)

func TestNewReport_Valid(t *testing.T) {
	r, err := NewReport("  checkout fails  ", "2025-01-19T14:30:00Z", " usr_abc123 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Description != "checkout fails" {
		t.Errorf("Description = %q", r.Description)
	}
	if r.CustomerID != "usr_abc123" {
		t.Errorf("CustomerID = %q", r.CustomerID)
	}
	want := time.Date(2025, 1, 19, 14, 30, 0, 0, time.UTC)
	if !r.OccurredAt.Equal(want) {
		t.Errorf("OccurredAt = %v, want %v", r.OccurredAt, want)
	}
}

func TestNewReport_Invalid(t *testing.T) {
	tests := []struct {
		name                     string
		desc, timestamp, custID string
	}{
		{"empty description", "", "2025-01-19T14:30:00Z", "usr_1"},
		{"blank description", "   ", "2025-01-19T14:30:00Z", "usr_1"},
		{"empty customer", "desc", "2025-01-19T14:30:00Z", ""},
		{"bad timestamp", "desc", "yesterday", "usr_1"},
		{"empty timestamp", "desc", "", "usr_1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewReport(tt.desc, tt.timestamp, tt.custID); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseTimestamp_Forms(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-01-19T14:30:00Z", time.Date(2025, 1, 19, 14, 30, 0, 0, time.UTC)},
		{"2025-01-19T14:30:00+02:00", time.Date(2025, 1, 19, 14, 30, 0, 0, time.FixedZone("", 2*3600))},
		{"2025-01-19T14:30:00", time.Date(2025, 1, 19, 14, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
