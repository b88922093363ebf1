package services

import (
	"errors"
	"testing"

	"property-scraper/models"
	"property-scraper/utils"
)

var errBoom = errors.New("boom")

func newTestLogger() *utils.Logger { return utils.NewDiscardLogger() }

func canonical(title, propType, location, price string) models.CanonicalListing {
	opt := func(s string) *string {
		if s == "" {
			return nil
		}
		return models.StringPtr(s)
	}
	return models.CanonicalListing{
		Title:        opt(title),
		PropertyType: opt(propType),
		Location:     opt(location),
		Price:        opt(price),
	}
}

func TestNormalizeText(t *testing.T) {
	rows := []models.CanonicalListing{{
		Title:        models.StringPtr("  4 Bedroom DUPLEX "),
		PropertyType: models.StringPtr("Detached Duplex"),
		Location:     models.StringPtr("   "),
		Price:        models.StringPtr("₦90,000,000"),
		Bedrooms:     models.StringPtr("4 beds"),
		Bathrooms:    models.StringPtr("none"),
		AddedDate:    models.StringPtr("12 Jan 2024"),
	}}
	got := NormalizeText(rows)[0]

	if models.Deref(got.Title) != "4 bedroom duplex" {
		t.Errorf("title: got %q", models.Deref(got.Title))
	}
	if models.Deref(got.PropertyType) != "detached duplex" {
		t.Errorf("property_type: got %q", models.Deref(got.PropertyType))
	}
	if got.Location != nil {
		t.Errorf("blank location should be nil, got %q", *got.Location)
	}
	if models.Deref(got.RawPrice) != "₦90,000,000" || got.Price != nil {
		t.Error("raw price should be carried, numeric price not yet parsed")
	}
	if got.Bedrooms == nil || *got.Bedrooms != 4 {
		t.Errorf("bedrooms: got %v", got.Bedrooms)
	}
	if got.Bathrooms != nil {
		t.Errorf("bathrooms: got %d, want nil", *got.Bathrooms)
	}
	if models.Deref(got.AddedDate) != "12 Jan 2024" {
		t.Error("dates must pass through untouched")
	}
}

func TestDedupeKeepsFirstAndOrder(t *testing.T) {
	rows := NormalizeText([]models.CanonicalListing{
		canonical("Flat A", "flat", "Yaba", "₦1"),
		canonical("Duplex", "duplex", "Lekki", "₦2"),
		canonical(" FLAT A", "Flat", "yaba ", "₦3"),
		canonical("Plot", "land", "", "₦4"),
		canonical("plot", "land", "", "₦5"),
	})
	got := Dedupe(rows)

	if len(got) != 3 {
		t.Fatalf("rows: got %d, want 3", len(got))
	}
	for i, want := range []string{"₦1", "₦2", "₦4"} {
		if models.Deref(got[i].RawPrice) != want {
			t.Errorf("row %d: got %q, want %q", i, models.Deref(got[i].RawPrice), want)
		}
	}
}

func TestFilterRentals(t *testing.T) {
	rows := NormalizeText([]models.CanonicalListing{
		canonical("Shortlet in Lekki", "flat", "lekki", "₦50,000/day"),
		canonical("Office", "office space", "ikeja", "₦5,000,000/year"),
		canonical("Flat for rent", "flat", "yaba", "₦1,200,000"),
		canonical("Duplex", "duplex", "lekki", "₦120,000,000"),
	})
	got := FilterRentals(rows)
	if len(got) != 1 || models.Deref(got[0].Title) != "duplex" {
		t.Fatalf("got %d rows, want only the sale listing", len(got))
	}
}

func TestCleanEndToEnd(t *testing.T) {
	c := NewCleaner(newTestLogger(), DefaultExchangeRate)

	rows := []models.CanonicalListing{
		{
			Title:        models.StringPtr("4 Bedroom Semi Detached Duplex"),
			PropertyType: models.StringPtr("4 Bedroom Semi Detached Duplex"),
			Location:     models.StringPtr("12 Admiralty Way, Lekki, Lagos"),
			Price:        models.StringPtr("$30,000"),
			Bedrooms:     models.StringPtr("4"),
			AddedDate:    models.StringPtr("12 Jan 2024"),
		},
		{
			Title:        models.StringPtr("4 bedroom semi detached duplex "),
			PropertyType: models.StringPtr("4 Bedroom Semi Detached Duplex"),
			Location:     models.StringPtr("12 admiralty way, lekki, lagos"),
			Price:        models.StringPtr("$31,000"),
		},
		{
			Title:        models.StringPtr("Luxury apartment"),
			PropertyType: models.StringPtr("Flat"),
			Location:     models.StringPtr("Victoria Island, Lagos"),
			Price:        models.StringPtr("₦120,000/day"),
		},
		{
			Title:        models.StringPtr("Commercial plot"),
			PropertyType: models.StringPtr("Commercial Land"),
			Location:     models.StringPtr("Unknown Street, Otherville"),
			Price:        models.StringPtr("250,000/sqm"),
		},
		{
			Title:        models.StringPtr("Bungalow"),
			PropertyType: models.StringPtr("3 bedroom bungalow"),
			Location:     models.StringPtr("Wuse 2, Abuja"),
			Price:        models.StringPtr("Contact agent"),
			Bedrooms:     models.StringPtr("3"),
		},
	}

	got, stages := c.Clean(rows)
	if len(got) != 3 {
		t.Fatalf("rows: got %d, want 3", len(got))
	}

	duplex := got[0]
	if duplex.Price == nil || *duplex.Price != 43140000 {
		t.Errorf("duplex price: got %v, want 43140000", duplex.Price)
	}
	if models.Deref(duplex.City) != "Lagos" {
		t.Errorf("duplex city: got %q", models.Deref(duplex.City))
	}
	if duplex.PropertyCategory != "semi detached duplex" {
		t.Errorf("duplex category: got %q", duplex.PropertyCategory)
	}
	if models.Deref(duplex.PriceCategory) != models.PriceMid {
		t.Errorf("duplex price category: got %q", models.Deref(duplex.PriceCategory))
	}
	if duplex.PricePerBedroom == nil || *duplex.PricePerBedroom != 10785000 {
		t.Errorf("duplex price per bedroom: got %v", duplex.PricePerBedroom)
	}
	if models.Deref(duplex.MonthPosted) != "2024-01" {
		t.Errorf("duplex month: got %q", models.Deref(duplex.MonthPosted))
	}

	land := got[1]
	if land.Price == nil || *land.Price != 250000 {
		t.Errorf("land price: got %v, want 250000", land.Price)
	}
	if models.Deref(land.City) != "Otherville" || land.PropertyCategory != "commercial land" {
		t.Errorf("land city/category: %q / %q", models.Deref(land.City), land.PropertyCategory)
	}
	if land.MonthPosted != nil {
		t.Error("land month should be nil without an added date")
	}

	malformed := got[2]
	if malformed.Price != nil || malformed.PriceCategory != nil || malformed.PricePerBedroom != nil {
		t.Error("malformed price should stay null along with its derived fields")
	}
	if models.Deref(malformed.City) != "Abuja" || malformed.PropertyCategory != "bungalow" {
		t.Errorf("malformed city/category: %q / %q", models.Deref(malformed.City), malformed.PropertyCategory)
	}

	wantCounts := map[string]int{
		StageNormalizeText: 5,
		StageDedupe:        4,
		StageRentalFilter:  3,
		StageCategorize:    3,
	}
	for _, s := range stages {
		if want, ok := wantCounts[s.Stage]; ok && s.Rows != want {
			t.Errorf("stage %s: got %d rows, want %d", s.Stage, s.Rows, want)
		}
	}
	if len(stages) != 10 || stages[0].Stage != StageNormalizeText || stages[9].Stage != StageCategorize {
		t.Errorf("stages out of order: %+v", stages)
	}
}

func TestCleanEmpty(t *testing.T) {
	got, stages := NewCleaner(newTestLogger(), 0).Clean(nil)
	if len(got) != 0 {
		t.Errorf("got %d rows, want 0", len(got))
	}
	for _, s := range stages {
		if s.Rows != 0 {
			t.Errorf("stage %s: got %d rows", s.Stage, s.Rows)
		}
	}
}
