// Package scraper defines the capability shared by the per-site scrapers.
package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"property-scraper/models"
)

// Source scrapes one listing site.
type Source interface {
	// Name identifies the source in logs and run summaries.
	Name() string

	// Scrape walks listing pages 1..maxPages and returns one RawListing per
	// extracted listing. Page and listing failures are skipped, not returned;
	// an error means the source as a whole could not run.
	Scrape(ctx context.Context, maxPages int) ([]models.RawListing, error)
}

// Extractor turns one listing's markup into a RawListing. Missing elements
// yield nil fields; extraction never fails.
type Extractor interface {
	Extract(sel *goquery.Selection) models.RawListing
}

// Text returns the collapsed text of the first element in sel, or nil when
// sel is empty or has no text.
func Text(sel *goquery.Selection) *string {
	if sel == nil || sel.Length() == 0 {
		return nil
	}
	return Clean(sel.First().Text())
}

// Clean collapses whitespace in s, returning nil for blank text.
func Clean(s string) *string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return nil
	}
	return &s
}
