package services

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"property-scraper/models"
)

var (
	ordinalSuffix = regexp.MustCompile(`(\d)(st|nd|rd|th)\b`)

	// Day-first layouts used by the listing sites, tried before dateparse
	// so that "05/01/2024" reads as 5 January.
	dateLayouts = []string{
		"2006-01-02",
		"2 Jan 2006",
		"2 January 2006",
		"2/1/2006",
		"2-1-2006",
		"2.1.2006",
		"Jan 2 2006",
		"January 2 2006",
		time.RFC3339,
	}
)

// ParseListingDate parses the date formats seen on the listing sites.
func ParseListingDate(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, ",", " ")), " ")

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if t, err := dateparse.ParseAny(s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// MonthPosted returns the "YYYY-MM" month of an added date, or nil when the
// date cannot be parsed.
func MonthPosted(added *string) *string {
	if added == nil {
		return nil
	}
	t, ok := ParseListingDate(*added)
	if !ok {
		return nil
	}
	return models.StringPtr(t.Format("2006-01"))
}
