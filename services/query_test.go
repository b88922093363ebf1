package services

import (
	"testing"

	"property-scraper/models"
)

func queryRows() []models.CleanedListing {
	row := func(city, propType, month string, price *float64) models.CleanedListing {
		return models.CleanedListing{
			City:         models.StringPtr(city),
			PropertyType: models.StringPtr(propType),
			MonthPosted:  models.StringPtr(month),
			Price:        price,
		}
	}
	return []models.CleanedListing{
		row("Lagos", "detached duplex", "2024-02", models.FloatPtr(100)),
		row("Lagos", "flat", "2024-01", models.FloatPtr(50.5)),
		row("Lagos", "flat", "2024-01", models.FloatPtr(60)),
		row("Lagos", "flat", "2023-12", nil),
		row("Abuja", "flat", "2024-01", models.FloatPtr(999)),
		{City: models.StringPtr("Lagos"), PropertyType: models.StringPtr("flat"), Price: models.FloatPtr(70)},
	}
}

func TestAveragePrice(t *testing.T) {
	q := NewQueryService(queryRows())

	got := q.AveragePrice("LAGOS", "")
	if got.City != "Lagos" || got.PropertyType != "All" || got.Count != 5 {
		t.Errorf("unexpected header fields: %+v", got)
	}
	if got.AveragePrice == nil || *got.AveragePrice != 70.13 {
		t.Errorf("average: got %v, want 70.13", got.AveragePrice)
	}

	got = q.AveragePrice("lagos", "FLAT")
	if got.PropertyType != "Flat" || got.Count != 4 {
		t.Errorf("filtered: %+v", got)
	}
	if got.AveragePrice == nil || *got.AveragePrice != 60.17 {
		t.Errorf("filtered average: got %v, want 60.17", got.AveragePrice)
	}
}

func TestAveragePriceNoMatches(t *testing.T) {
	got := NewQueryService(queryRows()).AveragePrice("kano", "")
	if got.City != "Kano" || got.Count != 0 || got.AveragePrice != nil {
		t.Errorf("got %+v, want empty result with null average", got)
	}
}

func TestMonthlyTrend(t *testing.T) {
	got := NewQueryService(queryRows()).MonthlyTrend("lagos", "flat")

	if got.City != "Lagos" || got.PropertyType != "Flat" {
		t.Errorf("header: %+v", got)
	}
	if len(got.Trends) != 2 {
		t.Fatalf("trends: got %+v, want 2 months", got.Trends)
	}
	if got.Trends[0].Month != "2023-12" || got.Trends[0].AveragePrice != nil {
		t.Errorf("first month: %+v", got.Trends[0])
	}
	if got.Trends[1].Month != "2024-01" || got.Trends[1].AveragePrice == nil || *got.Trends[1].AveragePrice != 55.25 {
		t.Errorf("second month: %+v", got.Trends[1])
	}
}

func TestQuerySnapshotIsolated(t *testing.T) {
	rows := queryRows()
	q := NewQueryService(rows)
	rows[0].City = models.StringPtr("Kano")

	if got := q.AveragePrice("kano", ""); got.Count != 0 {
		t.Error("mutating the input must not change the snapshot")
	}
	if q.Len() != len(rows) {
		t.Errorf("Len: got %d, want %d", q.Len(), len(rows))
	}
}
