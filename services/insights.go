package services

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"property-scraper/models"
	"property-scraper/utils"
)

const (
	landCategory    = "land"
	outlierQuantile = 0.99
	topN            = 10
)

// InsightService computes the market report over the cleaned dataset:
// building medians by city, location and month, land medians, price per
// bedroom and month-over-month growth.
type InsightService struct {
	logger *utils.Logger
	out    io.Writer
}

// NewInsightService returns an InsightService that prints reports to stdout.
func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger, out: os.Stdout}
}

// insightRow is a building listing that passed the analytical rules.
type insightRow struct {
	city, location, category, month string
	price, perBedroom               float64
}

// Generate builds the report. Building analytics exclude land, listings
// above the 99th price percentile, listings without a posting month or
// bedrooms, and listings above the 99th price-per-bedroom percentile;
// filter is then applied. Land is analysed separately and unfiltered.
func (s *InsightService) Generate(listings []models.CleanedListing, filter models.InsightFilter) *models.InsightReport {
	report := &models.InsightReport{TotalListings: len(listings)}

	buildings, priceCap, ppbCap := buildingRows(listings)
	report.BuildingListings = len(buildings)
	report.PriceCap = priceCap
	report.PricePerBedCap = ppbCap

	filtered := applyFilter(buildings, filter)
	report.FilteredListings = len(filtered)
	s.logger.Debug("[insights] %d listings → %d buildings → %d after filters",
		len(listings), len(buildings), len(filtered))

	price := func(r insightRow) float64 { return r.price }
	perBed := func(r insightRow) float64 { return r.perBedroom }
	byCity := func(r insightRow) string { return r.city }
	byLocation := func(r insightRow) string { return r.location }

	report.MedianPriceByCity = byMedianDesc(groupMedians(filtered, byCity, price))
	report.TopLocations = top(byMedianDesc(groupMedians(filtered, byLocation, price)), topN)
	report.MonthlyMedian = byKey(groupMedians(filtered, func(r insightRow) string { return r.month }, price))

	land := landRows(listings)
	report.LandMedianByCity = byMedianDesc(groupMedians(land, byCity, price))
	report.TopLandLocations = top(byMedianDesc(groupMedians(land, byLocation, price)), topN)

	ppbByCity := byMedianDesc(groupMedians(filtered, byCity, perBed))
	report.PricePerBedroomByCity = ppbByCity
	report.TopPricePerBedroomLocs = top(byMedianDesc(groupMedians(filtered, byLocation, perBed)), topN)

	ppbLookup := make(map[string]float64, len(ppbByCity))
	for _, g := range ppbByCity {
		ppbLookup[g.Key] = g.Median
	}
	for _, g := range report.MedianPriceByCity {
		report.CityComparison = append(report.CityComparison, models.CityComparison{
			City:                  g.Key,
			MedianPrice:           g.Median,
			MedianPricePerBedroom: ppbLookup[g.Key],
			Listings:              g.Count,
		})
	}

	report.Growth = cityGrowth(filtered)
	return report
}

func buildingRows(listings []models.CleanedListing) (rows []insightRow, priceCap, ppbCap float64) {
	var priced []models.CleanedListing
	var prices []float64
	for _, l := range listings {
		if l.PropertyCategory == landCategory || l.Price == nil {
			continue
		}
		priced = append(priced, l)
		prices = append(prices, *l.Price)
	}
	if len(priced) == 0 {
		return nil, 0, 0
	}
	priceCap = quantile(prices, outlierQuantile)

	var perBeds []float64
	for _, l := range priced {
		if *l.Price > priceCap {
			continue
		}
		month := l.MonthPosted
		if month == nil {
			month = MonthPosted(l.AddedDate)
		}
		if month == nil || l.Bedrooms == nil || *l.Bedrooms <= 0 {
			continue
		}
		r := insightRow{
			city:       models.Deref(l.City),
			location:   models.Deref(l.Location),
			category:   l.PropertyCategory,
			month:      *month,
			price:      *l.Price,
			perBedroom: *l.Price / float64(*l.Bedrooms),
		}
		rows = append(rows, r)
		perBeds = append(perBeds, r.perBedroom)
	}
	if len(rows) == 0 {
		return nil, priceCap, 0
	}

	ppbCap = quantile(perBeds, outlierQuantile)
	kept := rows[:0]
	for _, r := range rows {
		if r.perBedroom <= ppbCap {
			kept = append(kept, r)
		}
	}
	return kept, priceCap, ppbCap
}

func landRows(listings []models.CleanedListing) []insightRow {
	var rows []insightRow
	var prices []float64
	for _, l := range listings {
		if l.PropertyCategory != landCategory || l.Price == nil {
			continue
		}
		rows = append(rows, insightRow{
			city:     models.Deref(l.City),
			location: models.Deref(l.Location),
			category: l.PropertyCategory,
			price:    *l.Price,
		})
		prices = append(prices, *l.Price)
	}
	if len(rows) == 0 {
		return nil
	}
	landCap := quantile(prices, outlierQuantile)
	kept := rows[:0]
	for _, r := range rows {
		if r.price <= landCap {
			kept = append(kept, r)
		}
	}
	return kept
}

func applyFilter(rows []insightRow, f models.InsightFilter) []insightRow {
	var out []insightRow
	for _, r := range rows {
		if f.City != "" && !strings.EqualFold(r.city, f.City) {
			continue
		}
		if f.Category != "" && !strings.EqualFold(r.category, f.Category) {
			continue
		}
		if f.MinPrice != nil && r.price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && r.price > *f.MaxPrice {
			continue
		}
		out = append(out, r)
	}
	return out
}

// groupMedians returns the median of value per non-empty key.
func groupMedians(rows []insightRow, key func(insightRow) string, value func(insightRow) float64) []models.GroupMedian {
	groups := make(map[string][]float64)
	for _, r := range rows {
		k := key(r)
		if k == "" {
			continue
		}
		groups[k] = append(groups[k], value(r))
	}
	out := make([]models.GroupMedian, 0, len(groups))
	for k, values := range groups {
		out = append(out, models.GroupMedian{Key: k, Median: median(values), Count: len(values)})
	}
	return out
}

func byMedianDesc(g []models.GroupMedian) []models.GroupMedian {
	sort.Slice(g, func(i, j int) bool {
		if g[i].Median != g[j].Median {
			return g[i].Median > g[j].Median
		}
		return g[i].Key < g[j].Key
	})
	return g
}

func byKey(g []models.GroupMedian) []models.GroupMedian {
	sort.Slice(g, func(i, j int) bool { return g[i].Key < g[j].Key })
	return g
}

func top(g []models.GroupMedian, n int) []models.GroupMedian {
	if len(g) > n {
		return g[:n]
	}
	return g
}

// cityGrowth compares each city's latest monthly median with the previous
// calendar month and the same month a year earlier.
func cityGrowth(rows []insightRow) []models.CityGrowth {
	monthly := make(map[string]map[string][]float64)
	for _, r := range rows {
		if r.city == "" {
			continue
		}
		if monthly[r.city] == nil {
			monthly[r.city] = make(map[string][]float64)
		}
		monthly[r.city][r.month] = append(monthly[r.city][r.month], r.price)
	}

	cities := make([]string, 0, len(monthly))
	for c := range monthly {
		cities = append(cities, c)
	}
	sort.Strings(cities)

	out := make([]models.CityGrowth, 0, len(cities))
	for _, city := range cities {
		months := monthly[city]
		latest := ""
		for m := range months {
			if m > latest {
				latest = m
			}
		}
		cur := median(months[latest])
		g := models.CityGrowth{City: city, LatestMonth: latest, Median: cur}
		if t, err := time.Parse("2006-01", latest); err == nil {
			g.MoMPercent = growth(cur, months[t.AddDate(0, -1, 0).Format("2006-01")])
			g.YoYPercent = growth(cur, months[t.AddDate(-1, 0, 0).Format("2006-01")])
		}
		out = append(out, g)
	}
	return out
}

func growth(cur float64, previous []float64) *float64 {
	if len(previous) == 0 {
		return nil
	}
	prev := median(previous)
	if prev == 0 {
		return nil
	}
	return models.FloatPtr(round2((cur - prev) / prev * 100))
}

func median(values []float64) float64 {
	return quantile(values, 0.5)
}

// quantile returns the q-quantile of values with linear interpolation
// between closest ranks. values is not modified.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// Print writes the report to stdout.
func (s *InsightService) Print(r *models.InsightReport) {
	s.Fprint(s.out, r)
}

// Fprint writes the report to w.
func (s *InsightService) Fprint(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 62)
	thin := strings.Repeat("─", 62)

	section := func(title string) {
		fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", title)
		fmt.Fprintf(w, "  %s\n", thin)
	}
	medians := func(groups []models.GroupMedian, unit string) {
		if len(groups) == 0 {
			fmt.Fprintf(w, "  No data\n\n")
			return
		}
		for i, g := range groups {
			fmt.Fprintf(w, "  \033[1m%2d.\033[0m %-34s \033[1;32m₦%s%s\033[0m (%d)\n",
				i+1, truncate(g.Key, 32), formatAmount(g.Median), unit, g.Count)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 NIGERIA PROPERTY MARKET INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	section("Overview")
	fmt.Fprintf(w, "  Listings in dataset    : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  Buildings analysed     : \033[1m%d\033[0m\n", r.BuildingListings)
	fmt.Fprintf(w, "  After filters          : \033[1m%d\033[0m\n", r.FilteredListings)
	if r.BuildingListings > 0 {
		fmt.Fprintf(w, "  Price cap (p99)        : ₦%s\n", formatAmount(r.PriceCap))
		fmt.Fprintf(w, "  Price/bedroom cap (p99): ₦%s\n", formatAmount(r.PricePerBedCap))
	}
	fmt.Fprintln(w)

	section("Median Price by City")
	medians(r.MedianPriceByCity, "")
	section("Top 10 Most Expensive Areas")
	medians(r.TopLocations, "")
	section("Monthly Median Price")
	medians(r.MonthlyMedian, "")
	section("Land: Median Price by City (₦/sqm)")
	medians(r.LandMedianByCity, "")
	section("Land: Top 10 Locations (₦/sqm)")
	medians(r.TopLandLocations, "")
	section("Median Price per Bedroom by City")
	medians(r.PricePerBedroomByCity, "/bed")
	section("Top 10 Locations by Price per Bedroom")
	medians(r.TopPricePerBedroomLocs, "/bed")

	section("City Comparison")
	if len(r.CityComparison) == 0 {
		fmt.Fprintf(w, "  No data\n")
	} else {
		fmt.Fprintf(w, "  %-20s %18s %18s %8s\n", "City", "Median price", "Median/bed", "Listings")
		for _, c := range r.CityComparison {
			fmt.Fprintf(w, "  %-20s %18s %18s %8d\n",
				truncate(c.City, 20), formatAmount(c.MedianPrice), formatAmount(c.MedianPricePerBedroom), c.Listings)
		}
	}
	fmt.Fprintln(w)

	section("Median Price Growth (latest month)")
	if len(r.Growth) == 0 {
		fmt.Fprintf(w, "  No data\n")
	}
	for _, g := range r.Growth {
		fmt.Fprintf(w, "  %-20s %s  ₦%-16s MoM %-9s YoY %s\n",
			truncate(g.City, 20), g.LatestMonth, formatAmount(g.Median), formatPercent(g.MoMPercent), formatPercent(g.YoYPercent))
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

// formatAmount renders f rounded to whole units with thousands separators.
func formatAmount(f float64) string {
	if math.IsNaN(f) {
		return "-"
	}
	s := strconv.FormatInt(int64(math.Round(math.Abs(f))), 10)
	var b strings.Builder
	if f < 0 {
		b.WriteByte('-')
	}
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func formatPercent(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", *p)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
