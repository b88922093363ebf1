package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"property-scraper/models"
)

// DefaultExchangeRate is NGN per USD.
const DefaultExchangeRate = 1438.0

// Price bucket thresholds in NGN.
const (
	midPriceFloor  = 10_000_000
	highPriceFloor = 50_000_000
)

var (
	// numberRegexp captures the first numeric run in a price
	numberRegexp = regexp.MustCompile(`[\d.]+`)
	// nonNumeric matches everything that cannot be part of a plain amount
	nonNumeric = regexp.MustCompile(`[^\d.]`)
)

// ParsePrice converts raw price text to NGN. "/sqm" prices are returned per
// square metre as-is, "$" prices are converted at rate, and anything else is
// stripped to digits. Unparseable text yields nil.
func ParsePrice(text *string, rate float64) *float64 {
	if text == nil {
		return nil
	}
	s := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(*text))
	if s == "" {
		return nil
	}

	if strings.Contains(s, "/sqm") {
		return parseFloat(numberRegexp.FindString(s))
	}

	if strings.HasPrefix(s, "$") {
		if usd := parseFloat(numberRegexp.FindString(s)); usd != nil {
			return models.FloatPtr(*usd * rate)
		}
	}

	return parseFloat(nonNumeric.ReplaceAllString(s, ""))
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// PriceCategory buckets a price into Low, Mid or High.
func PriceCategory(price *float64) *string {
	if price == nil {
		return nil
	}
	switch {
	case *price < midPriceFloor:
		return models.StringPtr(models.PriceLow)
	case *price < highPriceFloor:
		return models.StringPtr(models.PriceMid)
	default:
		return models.StringPtr(models.PriceHigh)
	}
}

// PricePerBedroom divides price by bedrooms when both are known and bedrooms > 0.
func PricePerBedroom(price *float64, bedrooms *int) *float64 {
	if price == nil || bedrooms == nil || *bedrooms <= 0 {
		return nil
	}
	return models.FloatPtr(*price / float64(*bedrooms))
}

var (
	rentalKeywords   = []string{"for rent", "shortlet", "lease"}
	rentalPriceUnits = []string{"/day", "/year"}
)

// IsRental reports whether a listing is a rental, shortlet or lease rather
// than a sale, judged by its property type, title and raw price text.
func IsRental(propertyType, title, rawPrice *string) bool {
	for _, text := range []*string{propertyType, title} {
		t := strings.ToLower(models.Deref(text))
		for _, kw := range rentalKeywords {
			if strings.Contains(t, kw) {
				return true
			}
		}
	}
	p := strings.ToLower(models.Deref(rawPrice))
	for _, unit := range rentalPriceUnits {
		if strings.Contains(p, unit) {
			return true
		}
	}
	return false
}
