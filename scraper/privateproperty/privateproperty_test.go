package privateproperty

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"property-scraper/config"
	"property-scraper/fetch"
	"property-scraper/models"
	"property-scraper/utils"
)

const detailHTML = `<html><body>
<div class="property-info">
  <h1>3 Bedroom Terraced Duplex</h1>
  <p>Gwarinpa, Abuja</p>
  <p class="price">₦ 85,000,000</p>
</div>
<ul class="property-benefit"><li>3 Bedrooms</li><li>3 Bathrooms</li><li>4 Toilets</li></ul>
<div class="property-details">
  <ul>
    <li><span>Ref:</span> <a href="#">PP123</a></li>
    <li><span>Property Type:</span> <a href="/t">Terraced Duplex</a></li>
    <li><span>Added:</span> 12th January 2024</li>
    <li><span>Last Updated:</span> 20/02/2024</li>
  </ul>
</div>
</body></html>`

func testConfig(baseURL string) config.SourceConfig {
	return config.SourceConfig{
		Name:        config.PrivateProperty,
		Enabled:     true,
		BaseURL:     baseURL,
		Timeout:     time.Second,
		MaxAttempts: 1,
	}
}

func TestExtractDetail(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(detailHTML))
	if err != nil {
		t.Fatal(err)
	}
	raw := detailExtractor{}.Extract(doc.Selection)

	want := map[string]string{
		"title":         "3 Bedroom Terraced Duplex",
		"location":      "Gwarinpa, Abuja",
		"price":         "₦ 85,000,000",
		"proper_type":   "Terraced Duplex",
		"bedrooms":      "3 Bedrooms",
		"bathrooms":     "3 Bathrooms",
		"toilets":       "4 Toilets",
		"added_date":    "12th January 2024",
		"updated_dates": "20/02/2024",
	}
	for key, v := range want {
		if got := models.Deref(raw[key]); got != v {
			t.Errorf("%s: got %q, want %q", key, got, v)
		}
	}
}

func TestExtractPropertyTypeFallback(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div class="property-details"><ul><li><a>Bungalow</a></li></ul></div>`))
	if err != nil {
		t.Fatal(err)
	}
	raw := detailExtractor{}.Extract(doc.Selection)
	if got := models.Deref(raw["proper_type"]); got != "Bungalow" {
		t.Errorf("proper_type: got %q", got)
	}
	if raw["toilets"] != nil || raw["added_date"] != nil {
		t.Error("absent benefits and dates should be nil")
	}
}

func TestScrapeStopsAtEmptyPage(t *testing.T) {
	var indexHits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/property-for-sale":
			atomic.AddInt32(&indexHits, 1)
			if r.URL.Query().Get("page") == "1" {
				fmt.Fprint(w, `<div class="similar-listings-item"><a href="/listings/1">a</a></div>
					<div class="similar-listings-item"><a href="/listings/2">b</a></div>`)
				return
			}
			fmt.Fprint(w, `<html><body>No results</body></html>`)
		case strings.HasPrefix(r.URL.Path, "/listings/"):
			fmt.Fprint(w, detailHTML)
		}
	}))
	defer srv.Close()

	s := New(testConfig(srv.URL), fetch.NewHTTPFetcher(srv.Client()), utils.NewDiscardLogger())
	listings, err := s.Scrape(context.Background(), 5)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if len(listings) != 2 {
		t.Errorf("listings: got %d, want 2", len(listings))
	}
	if indexHits != 2 {
		t.Errorf("index pages fetched: got %d, want 2", indexHits)
	}
}

func TestScrapeWaitsBeforeDetailRequest(t *testing.T) {
	const delay = 150 * time.Millisecond

	var mu sync.Mutex
	var indexAt, detailAt time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.URL.Path == "/property-for-sale":
			indexAt = time.Now()
			fmt.Fprint(w, `<div class="similar-listings-item"><a href="/listings/1">a</a></div>`)
		case strings.HasPrefix(r.URL.Path, "/listings/"):
			detailAt = time.Now()
			fmt.Fprint(w, detailHTML)
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.DetailDelayMin, cfg.DetailDelayMax = delay, delay
	s := New(cfg, fetch.NewHTTPFetcher(srv.Client()), utils.NewDiscardLogger())
	listings, err := s.Scrape(context.Background(), 1)
	if err != nil || len(listings) != 1 {
		t.Fatalf("Scrape: %d listings, err %v", len(listings), err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gap := detailAt.Sub(indexAt); gap < delay {
		t.Errorf("detail request sent %s after the index page, want at least %s", gap, delay)
	}
}
