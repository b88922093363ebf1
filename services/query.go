package services

import (
	"math"
	"sort"
	"strings"

	"property-scraper/models"
)

// QueryService answers read-only price lookups over a dataset snapshot.
// The snapshot is copied on construction and never modified, so a
// QueryService is safe for concurrent use.
type QueryService struct {
	rows []models.CleanedListing
}

// NewQueryService returns a QueryService over a copy of rows.
func NewQueryService(rows []models.CleanedListing) *QueryService {
	snapshot := make([]models.CleanedListing, len(rows))
	copy(snapshot, rows)
	return &QueryService{rows: snapshot}
}

// Len returns the number of rows in the snapshot.
func (q *QueryService) Len() int { return len(q.rows) }

// Rows returns a copy of the snapshot.
func (q *QueryService) Rows() []models.CleanedListing {
	out := make([]models.CleanedListing, len(q.rows))
	copy(out, q.rows)
	return out
}

// AveragePrice averages the known prices of listings in city, optionally
// restricted to propertyType. Count includes listings without a price.
func (q *QueryService) AveragePrice(city, propertyType string) models.AveragePrice {
	rows := q.filter(city, propertyType)

	var sum float64
	var priced int
	for _, r := range rows {
		if r.Price != nil {
			sum += *r.Price
			priced++
		}
	}

	res := models.AveragePrice{
		City:         TitleCase(city),
		PropertyType: queryTypeLabel(propertyType),
		Count:        len(rows),
	}
	if priced > 0 {
		res.AveragePrice = models.FloatPtr(round2(sum / float64(priced)))
	}
	return res
}

// MonthlyTrend averages prices per posting month, ordered by month.
// Listings without a month are skipped; a month without any known price
// reports a null average.
func (q *QueryService) MonthlyTrend(city, propertyType string) models.MonthlyTrend {
	type acc struct {
		sum float64
		n   int
	}
	months := make(map[string]*acc)
	for _, r := range q.filter(city, propertyType) {
		month := r.MonthPosted
		if month == nil {
			month = MonthPosted(r.AddedDate)
		}
		if month == nil {
			continue
		}
		a, ok := months[*month]
		if !ok {
			a = &acc{}
			months[*month] = a
		}
		if r.Price != nil {
			a.sum += *r.Price
			a.n++
		}
	}

	keys := make([]string, 0, len(months))
	for m := range months {
		keys = append(keys, m)
	}
	sort.Strings(keys)

	trends := make([]models.TrendPoint, 0, len(keys))
	for _, m := range keys {
		p := models.TrendPoint{Month: m}
		if a := months[m]; a.n > 0 {
			p.AveragePrice = models.FloatPtr(round2(a.sum / float64(a.n)))
		}
		trends = append(trends, p)
	}

	return models.MonthlyTrend{
		City:         TitleCase(city),
		PropertyType: queryTypeLabel(propertyType),
		Trends:       trends,
	}
}

// filter selects rows whose city, and property type when given, equal the
// arguments case-insensitively.
func (q *QueryService) filter(city, propertyType string) []models.CleanedListing {
	city = strings.ToLower(strings.TrimSpace(city))
	propertyType = strings.ToLower(strings.TrimSpace(propertyType))

	var out []models.CleanedListing
	for _, r := range q.rows {
		if strings.ToLower(models.Deref(r.City)) != city {
			continue
		}
		if propertyType != "" && strings.ToLower(models.Deref(r.PropertyType)) != propertyType {
			continue
		}
		out = append(out, r)
	}
	return out
}

func queryTypeLabel(propertyType string) string {
	if strings.TrimSpace(propertyType) == "" {
		return "All"
	}
	return TitleCase(propertyType)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
