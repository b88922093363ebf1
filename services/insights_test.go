package services

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"property-scraper/models"
)

func listing(city, location, category, month string, price float64, bedrooms int) models.CleanedListing {
	l := models.CleanedListing{
		City:             models.StringPtr(city),
		Location:         models.StringPtr(location),
		PropertyCategory: category,
		Price:            models.FloatPtr(price),
	}
	if month != "" {
		l.MonthPosted = models.StringPtr(month)
	}
	if bedrooms >= 0 {
		l.Bedrooms = models.IntPtr(bedrooms)
	}
	return l
}

func sampleListings() []models.CleanedListing {
	return []models.CleanedListing{
		listing("Lagos", "lekki", "detached duplex", "2024-01", 100_000_000, 4),
		listing("Lagos", "lekki", "detached duplex", "2024-02", 120_000_000, 4),
		listing("Lagos", "yaba", "flat/apartment", "2024-02", 30_000_000, 2),
		listing("Abuja", "maitama", "detached duplex", "2024-02", 200_000_000, 5),
		listing("Abuja", "wuse", "flat/apartment", "2023-02", 40_000_000, 2),
		listing("Lagos", "ikoyi", "land", "", 500_000, -1),
		listing("Lagos", "epe", "land", "", 50_000, -1),
		// no month, no bedrooms, no price
		listing("Lagos", "ajah", "bungalow", "", 25_000_000, 3),
		listing("Lagos", "ikeja", "bungalow", "2024-02", 20_000_000, 0),
		{City: models.StringPtr("Lagos"), PropertyCategory: "house"},
	}
}

func TestQuantileLinear(t *testing.T) {
	values := []float64{4, 1, 3, 2}
	if got := quantile(values, 0.5); got != 2.5 {
		t.Errorf("median: got %v, want 2.5", got)
	}
	if got := quantile(values, 0.99); math.Abs(got-3.97) > 1e-9 {
		t.Errorf("p99: got %v, want 3.97", got)
	}
	if values[0] != 4 {
		t.Error("quantile must not reorder its input")
	}
	if !math.IsNaN(quantile(nil, 0.5)) {
		t.Error("quantile of nothing should be NaN")
	}
}

func TestInsightBuildingRules(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(sampleListings(), models.InsightFilter{})

	if r.TotalListings != 10 {
		t.Errorf("TotalListings: got %d, want 10", r.TotalListings)
	}
	// 7 priced buildings; the 200M one sits above p99; two lack month or bedrooms;
	// of the remaining four the highest price per bedroom sits above its p99.
	if r.BuildingListings != 3 {
		t.Errorf("BuildingListings: got %d, want 3", r.BuildingListings)
	}
	if r.FilteredListings != r.BuildingListings {
		t.Errorf("no filter should keep every building row")
	}
	if r.PriceCap <= 120_000_000 || r.PriceCap >= 200_000_000 {
		t.Errorf("PriceCap: got %v", r.PriceCap)
	}
}

func TestInsightMediansAndLand(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(sampleListings(), models.InsightFilter{})

	if len(r.MedianPriceByCity) != 2 || r.MedianPriceByCity[0].Key != "Lagos" {
		t.Fatalf("MedianPriceByCity: %+v", r.MedianPriceByCity)
	}
	lagos := r.MedianPriceByCity[0]
	if lagos.Median != 65_000_000 || lagos.Count != 2 {
		t.Errorf("Lagos median: got %v (%d), want 65000000 (2)", lagos.Median, lagos.Count)
	}

	if len(r.MonthlyMedian) != 3 || r.MonthlyMedian[0].Key != "2023-02" || r.MonthlyMedian[2].Key != "2024-02" {
		t.Errorf("MonthlyMedian not ordered by month: %+v", r.MonthlyMedian)
	}

	if len(r.LandMedianByCity) != 1 || r.LandMedianByCity[0].Key != "Lagos" || r.LandMedianByCity[0].Count != 1 {
		t.Errorf("land should be capped separately: %+v", r.LandMedianByCity)
	}

	if len(r.CityComparison) != len(r.MedianPriceByCity) {
		t.Fatalf("CityComparison: %+v", r.CityComparison)
	}
	if c := r.CityComparison[0]; c.City != "Lagos" || c.MedianPricePerBedroom != 20_000_000 {
		t.Errorf("Lagos comparison: %+v", c)
	}
}

func TestInsightFilters(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	rows := sampleListings()

	r := svc.Generate(rows, models.InsightFilter{City: "abuja"})
	if r.FilteredListings != 1 || r.MedianPriceByCity[0].Key != "Abuja" {
		t.Errorf("city filter: %d rows, %+v", r.FilteredListings, r.MedianPriceByCity)
	}

	r = svc.Generate(rows, models.InsightFilter{Category: "flat/apartment", MaxPrice: models.FloatPtr(35_000_000)})
	if r.FilteredListings != 1 || r.TopLocations[0].Key != "yaba" {
		t.Errorf("category+price filter: %d rows, %+v", r.FilteredListings, r.TopLocations)
	}

	r = svc.Generate(rows, models.InsightFilter{MinPrice: models.FloatPtr(1e12)})
	if r.FilteredListings != 0 || len(r.MedianPriceByCity) != 0 || len(r.Growth) != 0 {
		t.Errorf("empty filter result should produce empty sections: %+v", r)
	}
	if len(r.LandMedianByCity) == 0 {
		t.Error("land analytics ignore building filters")
	}
}

func TestInsightGrowth(t *testing.T) {
	rows := []models.CleanedListing{
		listing("Lagos", "a", "house", "2023-03", 80, 1),
		listing("Lagos", "a", "house", "2024-02", 90, 1),
		listing("Lagos", "a", "house", "2024-03", 100, 1),
		listing("Lagos", "a", "house", "2024-03", 100, 1),
		listing("Abuja", "b", "house", "2024-01", 50, 1),
	}
	growth := cityGrowth(insightRows(rows))

	if len(growth) != 2 || growth[0].City != "Abuja" {
		t.Fatalf("growth: %+v", growth)
	}
	if growth[0].MoMPercent != nil || growth[0].YoYPercent != nil {
		t.Error("Abuja has no earlier months")
	}
	lagos := growth[1]
	if lagos.LatestMonth != "2024-03" || lagos.Median != 100 {
		t.Errorf("Lagos latest: %+v", lagos)
	}
	if lagos.MoMPercent == nil || *lagos.MoMPercent != 11.11 {
		t.Errorf("MoM: got %v, want 11.11", lagos.MoMPercent)
	}
	if lagos.YoYPercent == nil || *lagos.YoYPercent != 25 {
		t.Errorf("YoY: got %v, want 25", lagos.YoYPercent)
	}
}

func TestInsightEmpty(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(nil, models.InsightFilter{})
	if r.TotalListings != 0 || r.BuildingListings != 0 || r.PriceCap != 0 {
		t.Errorf("empty report: %+v", r)
	}

	var buf bytes.Buffer
	svc.Fprint(&buf, r)
	if !strings.Contains(buf.String(), "No data") {
		t.Error("empty report should print placeholders")
	}
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	var buf bytes.Buffer
	svc.Fprint(&buf, svc.Generate(sampleListings(), models.InsightFilter{}))

	out := buf.String()
	for _, want := range []string{"MARKET INSIGHTS", "Lagos", "65,000,000", "City Comparison"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := map[float64]string{
		0:          "0",
		999:        "999",
		1000:       "1,000",
		43140000:   "43,140,000",
		-1234567.6: "-1,234,568",
	}
	for in, want := range tests {
		if got := formatAmount(in); got != want {
			t.Errorf("formatAmount(%v) = %q; want %q", in, got, want)
		}
	}
	if got := formatAmount(math.NaN()); got != "-" {
		t.Errorf("formatAmount(NaN) = %q; want -", got)
	}
}

func insightRows(listings []models.CleanedListing) []insightRow {
	var out []insightRow
	for _, l := range listings {
		out = append(out, insightRow{
			city:  models.Deref(l.City),
			month: models.Deref(l.MonthPosted),
			price: *l.Price,
		})
	}
	return out
}
