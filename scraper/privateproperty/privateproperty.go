// Package privateproperty scrapes sale listings from privateproperty.ng.
package privateproperty

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"property-scraper/config"
	"property-scraper/fetch"
	"property-scraper/models"
	"property-scraper/scraper"
	"property-scraper/utils"
)

const listingPath = "/property-for-sale?page="

var headerPool = fetch.HeaderPool{
	{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
		"Accept-Language": "en-US,en;q=0.9",
	},
	{
		"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 13_5) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Safari/605.1.15",
		"Accept-Language": "en-US,en;q=0.8",
	},
	{
		"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36",
		"Accept-Language": "en-US,en;q=0.7",
	},
}

// Scraper walks index pages until one comes back without listings.
type Scraper struct {
	cfg         config.SourceConfig
	logger      *utils.Logger
	client      *fetch.Client
	extractor   detailExtractor
	visited     *utils.URLSet
	detailDelay utils.Jitter
	pageDelay   utils.Jitter
}

// New creates a PrivateProperty scraper fetching through f.
func New(cfg config.SourceConfig, f fetch.Fetcher, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:         cfg,
		logger:      logger,
		client:      fetch.NewClient(f, headerPool, cfg.Timeout, cfg.RetryPolicy(logger), logger),
		visited:     utils.NewURLSet(),
		detailDelay: utils.Jitter{Min: cfg.DetailDelayMin, Max: cfg.DetailDelayMax},
		pageDelay:   utils.Jitter{Min: cfg.PageDelayMin, Max: cfg.PageDelayMax},
	}
}

// Name returns the source name.
func (s *Scraper) Name() string { return config.PrivateProperty }

// Scrape extracts listings from pages 1..maxPages, stopping early at the
// first page that loads but links to no listings.
func (s *Scraper) Scrape(ctx context.Context, maxPages int) ([]models.RawListing, error) {
	s.logger.Info("[privateproperty] Starting scrape, target: %d pages", maxPages)
	var listings []models.RawListing

	for page := 1; page <= maxPages; page++ {
		links, err := s.listingLinks(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return listings, ctx.Err()
			}
			s.logger.Error("[privateproperty] Page %d skipped: %v", page, err)
			continue
		}
		if len(links) == 0 {
			s.logger.Info("[privateproperty] No more properties found on page %d, stopping", page)
			break
		}

		for _, link := range links {
			if err := s.detailDelay.Wait(ctx); err != nil {
				return listings, err
			}

			s.logger.Debug("[privateproperty] Scraping property %s", link)
			doc, err := s.client.Document(ctx, link)
			if err != nil {
				if ctx.Err() != nil {
					return listings, ctx.Err()
				}
				s.logger.Warn("[privateproperty] Detail page skipped %s: %v", link, err)
				continue
			}
			listings = append(listings, s.extractor.Extract(doc.Selection))
		}

		if page < maxPages {
			if err := s.pageDelay.Wait(ctx); err != nil {
				return listings, err
			}
		}
	}

	s.logger.Info("[privateproperty] Scrape complete, total raw listings: %d", len(listings))
	return listings, nil
}

func (s *Scraper) listingLinks(ctx context.Context, page int) ([]string, error) {
	pageURL := fmt.Sprintf("%s%s%d", s.cfg.BaseURL, listingPath, page)
	s.logger.Info("[privateproperty] Scraping listing page %d: %s", page, pageURL)

	doc, err := s.client.Document(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(s.cfg.BaseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	var links []string
	doc.Find("div.similar-listings-item").Each(func(_ int, item *goquery.Selection) {
		href, ok := item.Find("a[href]").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if s.visited.Add(abs) {
			links = append(links, abs)
		}
	})
	return links, nil
}

// detailExtractor reads a listing detail page.
type detailExtractor struct{}

var _ scraper.Extractor = detailExtractor{}

func (detailExtractor) Extract(doc *goquery.Selection) models.RawListing {
	raw := models.RawListing{}
	raw.Set("title", scraper.Text(doc.Find(".property-info h1")))
	raw.Set("location", scraper.Text(doc.Find(".property-info p")))
	raw.Set("price", scraper.Text(doc.Find(".property-info p.price")))
	raw.Set("proper_type", propertyType(doc))

	benefits := doc.Find(".property-benefit li")
	for i, key := range []string{"bedrooms", "bathrooms", "toilets"} {
		raw.Set(key, scraper.Text(benefits.Eq(i)))
	}

	raw.Set("added_date", labelledValue(doc, "Added"))
	raw.Set("updated_dates", labelledValue(doc, "Updated"))
	return raw
}

// propertyType reads the link next to the "Property Type" label, falling
// back to the link in the first details item.
func propertyType(doc *goquery.Selection) *string {
	items := doc.Find(".property-details ul li")
	label := items.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), "Property Type")
	}).First()
	if label.Length() > 0 {
		return scraper.Text(label.NextAllFiltered("a"))
	}
	return scraper.Text(items.First().Find("a"))
}

// labelledValue returns the text node that follows the first details span
// whose text contains label.
func labelledValue(doc *goquery.Selection, label string) *string {
	span := doc.Find(".property-details li span").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), label)
	}).First()
	if span.Length() == 0 {
		return nil
	}

	next := span.Nodes[0].NextSibling
	if next == nil {
		return nil
	}
	switch next.Type {
	case html.TextNode:
		return scraper.Clean(next.Data)
	case html.ElementNode:
		return scraper.Text(goquery.NewDocumentFromNode(next).Selection)
	}
	return nil
}
