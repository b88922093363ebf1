// Package propertypro scrapes sale listings from propertypro.ng. Listing
// cards on the index pages carry every field, so no detail pages are fetched.
package propertypro

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"property-scraper/config"
	"property-scraper/fetch"
	"property-scraper/models"
	"property-scraper/scraper"
	"property-scraper/utils"
)

const listingPath = "/property-for-sale?page="

var headerPool = fetch.HeaderPool{
	{"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"},
	{"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15"},
	{"User-Agent": "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"},
	{"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Edge/126.0.2592.68"},
}

var (
	bedsRegexp    = regexp.MustCompile(`(\d+)\s*Bed`)
	bathsRegexp   = regexp.MustCompile(`(\d+)\s*Bath`)
	toiletsRegexp = regexp.MustCompile(`(\d+)\s*Toilet`)
	parkingRegexp = regexp.MustCompile(`(\d+)\s*Parking`)

	// Absolute dates, or the relative text shown on fresh listings.
	datePattern = `(\d{1,2}(?:st|nd|rd|th)?\s+[A-Za-z]+,?\s+\d{4}` +
		`|\d{1,4}[/.-]\d{1,2}[/.-]\d{1,4}` +
		`|\d+\s+(?:second|minute|hour|day|week|month|year)s?\s+ago` +
		`|today|yesterday|just now)`
	updatedRegexp = regexp.MustCompile(`(?i)updated\s*:?\s*` + datePattern)
	addedRegexp   = regexp.MustCompile(`(?i)added\s*:?\s*` + datePattern)
	priceStripper = strings.NewReplacer("₦", "", ",", "")
)

// Scraper walks PropertyPro index pages.
type Scraper struct {
	cfg       config.SourceConfig
	logger    *utils.Logger
	client    *fetch.Client
	extractor cardExtractor
	pageDelay utils.Jitter
}

// New creates a PropertyPro scraper fetching through f.
func New(cfg config.SourceConfig, f fetch.Fetcher, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:       cfg,
		logger:    logger,
		client:    fetch.NewClient(f, headerPool, cfg.Timeout, cfg.RetryPolicy(logger), logger),
		pageDelay: utils.Jitter{Min: cfg.PageDelayMin, Max: cfg.PageDelayMax},
	}
}

// Name returns the source name.
func (s *Scraper) Name() string { return config.PropertyPro }

// Scrape extracts every listing card on pages 1..maxPages.
func (s *Scraper) Scrape(ctx context.Context, maxPages int) ([]models.RawListing, error) {
	s.logger.Info("[propertypro] Starting scrape, target: %d pages", maxPages)
	var listings []models.RawListing

	for page := 1; page <= maxPages; page++ {
		pageURL := fmt.Sprintf("%s%s%d", s.cfg.BaseURL, listingPath, page)
		s.logger.Info("[propertypro] Scraping page %d: %s", page, pageURL)

		doc, err := s.client.Document(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return listings, ctx.Err()
			}
			s.logger.Error("[propertypro] Page %d skipped: %v", page, err)
			continue
		}

		cards := doc.Find("div.property-listing")
		s.logger.Debug("[propertypro] Page %d: found %d listings", page, cards.Length())
		cards.Each(func(_ int, card *goquery.Selection) {
			listings = append(listings, s.extractor.Extract(card))
		})

		if page < maxPages {
			if err := s.pageDelay.Wait(ctx); err != nil {
				return listings, err
			}
		}
	}

	s.logger.Info("[propertypro] Scrape complete, total raw listings: %d", len(listings))
	return listings, nil
}

// cardExtractor reads one div.property-listing card.
type cardExtractor struct{}

var _ scraper.Extractor = cardExtractor{}

func (cardExtractor) Extract(card *goquery.Selection) models.RawListing {
	raw := models.RawListing{}
	raw.Set("title", scraper.Text(card.Find(".pl-title h3 a")))
	raw.Set("location", scraper.Text(card.Find(".pl-title p")))
	raw.Set("property_type", scraper.Text(card.Find(".pl-title h6")))

	var price *string
	if p := scraper.Text(card.Find(".pl-price h3")); p != nil {
		price = models.StringPtr(priceStripper.Replace(*p))
	}
	raw.Set("price", price)

	details := models.Deref(scraper.Text(card.Find(".pl-price h6")))
	raw.Set("bedrooms", firstGroup(bedsRegexp, details))
	raw.Set("bathrooms", firstGroup(bathsRegexp, details))
	raw.Set("toilets", firstGroup(toiletsRegexp, details))
	raw.Set("parking_spaces", firstGroup(parkingRegexp, details))

	dates := models.Deref(scraper.Text(card.Find(".date-added")))
	raw.Set("updated_date", firstGroup(updatedRegexp, dates))
	raw.Set("added_date", firstGroup(addedRegexp, dates))
	return raw
}

func firstGroup(re *regexp.Regexp, s string) *string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return nil
	}
	return models.StringPtr(m[1])
}
