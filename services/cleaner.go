package services

import (
	"regexp"
	"strconv"
	"strings"

	"property-scraper/models"
	"property-scraper/utils"
)

// countRegexp captures the leading integer of a room count ("3 Bedrooms").
var countRegexp = regexp.MustCompile(`\d+`)

// Stage names, in execution order.
const (
	StageNormalizeText   = "normalize_text"
	StageDedupe          = "dedupe"
	StageResolveCity     = "resolve_city"
	StageCleanCity       = "clean_city"
	StageRentalFilter    = "rental_filter"
	StageParsePrice      = "parse_price"
	StagePricePerBedroom = "price_per_bedroom"
	StagePriceCategory   = "price_category"
	StageMonthPosted     = "month_posted"
	StageCategorize      = "categorize"
)

type stage struct {
	name string
	run  func([]models.CleanedListing) []models.CleanedListing
}

// Cleaner turns combined canonical listings into the cleaned dataset.
// Each stage is a pure function over the ordered rows; the order is fixed.
type Cleaner struct {
	logger       *utils.Logger
	exchangeRate float64
	categorizer  *Categorizer
	stages       []stage
}

// NewCleaner creates a Cleaner converting USD prices at exchangeRate NGN/USD.
func NewCleaner(logger *utils.Logger, exchangeRate float64) *Cleaner {
	if exchangeRate <= 0 {
		exchangeRate = DefaultExchangeRate
	}
	c := &Cleaner{
		logger:       logger,
		exchangeRate: exchangeRate,
		categorizer:  DefaultCategorizer(),
	}
	c.stages = []stage{
		{StageDedupe, Dedupe},
		{StageResolveCity, mapRows(func(r *models.CleanedListing) { r.City = ResolveCity(r.Location) })},
		{StageCleanCity, mapRows(func(r *models.CleanedListing) { r.City = CleanCity(r.City) })},
		{StageRentalFilter, FilterRentals},
		{StageParsePrice, mapRows(func(r *models.CleanedListing) { r.Price = ParsePrice(r.RawPrice, c.exchangeRate) })},
		{StagePricePerBedroom, mapRows(func(r *models.CleanedListing) { r.PricePerBedroom = PricePerBedroom(r.Price, r.Bedrooms) })},
		{StagePriceCategory, mapRows(func(r *models.CleanedListing) { r.PriceCategory = PriceCategory(r.Price) })},
		{StageMonthPosted, mapRows(func(r *models.CleanedListing) { r.MonthPosted = MonthPosted(r.AddedDate) })},
		{StageCategorize, mapRows(func(r *models.CleanedListing) { r.PropertyCategory = c.categorizer.Categorize(r.PropertyType) })},
	}
	return c
}

// Clean runs every stage over rows and returns the cleaned rows together
// with the row count after each stage.
func (c *Cleaner) Clean(rows []models.CanonicalListing) ([]models.CleanedListing, []models.StageCount) {
	cleaned := NormalizeText(rows)
	counts := []models.StageCount{{Stage: StageNormalizeText, Rows: len(cleaned)}}

	for _, s := range c.stages {
		before := len(cleaned)
		cleaned = s.run(cleaned)
		counts = append(counts, models.StageCount{Stage: s.name, Rows: len(cleaned)})
		if dropped := before - len(cleaned); dropped > 0 {
			c.logger.Info("[cleaner] %s dropped %d rows (%d → %d)", s.name, dropped, before, len(cleaned))
		}
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(rows), len(cleaned), len(rows)-len(cleaned))
	return cleaned, counts
}

// NormalizeText starts cleaned rows from canonical ones: title, location and
// property type are lower-cased and trimmed, room counts read as integers.
func NormalizeText(rows []models.CanonicalListing) []models.CleanedListing {
	out := make([]models.CleanedListing, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.CleanedListing{
			Title:        normaliseText(r.Title),
			PropertyType: normaliseText(r.PropertyType),
			Location:     normaliseText(r.Location),
			AddedDate:    r.AddedDate,
			UpdatedDate:  r.UpdatedDate,
			RawPrice:     r.Price,
			Bedrooms:     parseCount(r.Bedrooms),
			Bathrooms:    parseCount(r.Bathrooms),
			Toilets:      parseCount(r.Toilets),
		})
	}
	return out
}

// Dedupe keeps the first row for each (title, location, property type) key.
func Dedupe(rows []models.CleanedListing) []models.CleanedListing {
	seen := make(map[[3]string]struct{}, len(rows))
	out := make([]models.CleanedListing, 0, len(rows))
	for _, r := range rows {
		key := [3]string{dedupeField(r.Title), dedupeField(r.Location), dedupeField(r.PropertyType)}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// FilterRentals drops rent, shortlet, lease and day/year priced listings.
func FilterRentals(rows []models.CleanedListing) []models.CleanedListing {
	out := make([]models.CleanedListing, 0, len(rows))
	for _, r := range rows {
		if IsRental(r.PropertyType, r.Title, r.RawPrice) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func mapRows(fn func(*models.CleanedListing)) func([]models.CleanedListing) []models.CleanedListing {
	return func(rows []models.CleanedListing) []models.CleanedListing {
		out := make([]models.CleanedListing, len(rows))
		for i, r := range rows {
			fn(&r)
			out[i] = r
		}
		return out
	}
}

func dedupeField(s *string) string {
	return strings.ToLower(strings.TrimSpace(models.Deref(s)))
}

// normaliseText lower-cases s and strips leading/trailing whitespace.
// Blank text becomes nil.
func normaliseText(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(strings.ToLower(*s))
	if t == "" {
		return nil
	}
	return &t
}

func parseCount(s *string) *int {
	m := countRegexp.FindString(models.Deref(s))
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}
