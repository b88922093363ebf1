// Package npc scrapes sale listings from nigeriapropertycentre.com.
package npc

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"property-scraper/config"
	"property-scraper/fetch"
	"property-scraper/models"
	"property-scraper/scraper"
	"property-scraper/utils"
)

const listingPath = "/for-sale?page="

var headerPool = fetch.HeaderPool{
	{"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/124.0.0.0 Safari/537.36"},
	{"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Version/17.3 Safari/605.1.15"},
	{"User-Agent": "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:124.0) Gecko/20100101 Firefox/124.0"},
}

// detailKeys maps labels of the "Property Details" table to raw field names.
var detailKeys = map[string]string{
	"Bedrooms":      "bedrooms",
	"Bathrooms":     "bathrooms",
	"Toilets":       "toilets",
	"Type":          "type",
	"Market Status": "market_status",
	"Added On":      "date_added",
	"Last Updated":  "date_updated",
}

// Scraper walks index pages and fetches every linked detail page.
type Scraper struct {
	cfg         config.SourceConfig
	logger      *utils.Logger
	client      *fetch.Client
	extractor   detailExtractor
	visited     *utils.URLSet
	detailDelay utils.Jitter
	pageDelay   utils.Jitter
}

// New creates a NigeriaPropertyCentre scraper fetching through f.
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
func (s *Scraper) Name() string { return config.NPC }

// Scrape collects detail links from pages 1..maxPages and extracts each listing.
func (s *Scraper) Scrape(ctx context.Context, maxPages int) ([]models.RawListing, error) {
	s.logger.Info("[npc] Starting scrape, target: %d pages", maxPages)
	var listings []models.RawListing

	for page := 1; page <= maxPages; page++ {
		links, err := s.propertyLinks(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return listings, ctx.Err()
			}
			s.logger.Error("[npc] Page %d skipped: %v", page, err)
			continue
		}
		s.logger.Info("[npc] Page %d: found %d property links", page, len(links))

		for _, link := range links {
			if err := s.detailDelay.Wait(ctx); err != nil {
				return listings, err
			}

			doc, err := s.client.Document(ctx, link)
			if err != nil {
				if ctx.Err() != nil {
					return listings, ctx.Err()
				}
				s.logger.Warn("[npc] Detail page skipped %s: %v", link, err)
				continue
			}

			raw := s.extractor.Extract(doc.Selection)
			s.logger.Debug("[npc] Scraped: %s", models.Deref(raw["title"]))
			listings = append(listings, raw)
		}

		if page < maxPages {
			if err := s.pageDelay.Wait(ctx); err != nil {
				return listings, err
			}
		}
	}

	s.logger.Info("[npc] Scrape complete, total raw listings: %d", len(listings))
	return listings, nil
}

// propertyLinks returns the absolute, not yet visited detail URLs on one index page.
func (s *Scraper) propertyLinks(ctx context.Context, page int) ([]string, error) {
	pageURL := fmt.Sprintf("%s%s%d", s.cfg.BaseURL, listingPath, page)
	s.logger.Info("[npc] Scraping listings page %d: %s", page, pageURL)

	doc, err := s.client.Document(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	var links []string
	doc.Find("div.wp-block.property.list div.wp-block-title a[itemprop='url']").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		ref, err := url.Parse(href)
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
	raw.Set("title", scraper.Text(doc.Find("h4.content-title")))
	raw.Set("location", scraper.Text(doc.Find("address")))
	raw.Set("price", scraper.Text(doc.Find("span[itemprop='price']")))

	for _, key := range detailKeys {
		raw.Set(key, nil)
	}
	doc.Find("table.table-bordered").First().Find("tr td").Each(func(_ int, cell *goquery.Selection) {
		text := models.Deref(scraper.Text(cell))
		label, value, ok := strings.Cut(text, ":")
		if !ok {
			return
		}
		if key, known := detailKeys[strings.TrimSpace(label)]; known {
			raw.Set(key, models.StringPtr(value))
		}
	})
	return raw
}
