package services

import (
	"testing"

	"property-scraper/models"
)

func TestMonthPosted(t *testing.T) {
	tests := []struct {
		added string
		want  string
	}{
		{"12 Jan 2024", "2024-01"},
		{"12th January 2024", "2024-01"},
		{"1st Mar, 2023", "2023-03"},
		{"05/01/2024", "2024-01"},
		{"25/12/2023", "2023-12"},
		{"2024-02-29", "2024-02"},
		{"Feb 3, 2024", "2024-02"},
		{"2024-06-01T10:00:00Z", "2024-06"},
		{"yesterday-ish", ""},
		{"", ""},
	}
	for _, tt := range tests {
		got := models.Deref(MonthPosted(models.StringPtr(tt.added)))
		if got != tt.want {
			t.Errorf("MonthPosted(%q) = %q; want %q", tt.added, got, tt.want)
		}
	}
	if MonthPosted(nil) != nil {
		t.Error("MonthPosted(nil) should be nil")
	}
}
