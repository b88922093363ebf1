package models

import "strings"

// Canonical field names shared by every source after normalization.
const (
	FieldTitle        = "title"
	FieldPropertyType = "property_type"
	FieldLocation     = "location"
	FieldPrice        = "price"
	FieldBedrooms     = "bedrooms"
	FieldBathrooms    = "bathrooms"
	FieldToilets      = "toilets"
	FieldAddedDate    = "added_date"
	FieldUpdatedDate  = "updated_date"
)

// CanonicalFields lists the canonical schema in persisted column order.
var CanonicalFields = []string{
	FieldTitle,
	FieldPropertyType,
	FieldLocation,
	FieldPrice,
	FieldBedrooms,
	FieldBathrooms,
	FieldToilets,
	FieldAddedDate,
	FieldUpdatedDate,
}

// RawListing holds the unprocessed field mapping scraped from one listing.
// Field names vary by source; a nil value means the field was not found.
type RawListing map[string]*string

// Set stores value under key, trimming it and treating empty text as null.
func (r RawListing) Set(key string, value *string) {
	if value == nil {
		r[key] = nil
		return
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		r[key] = nil
		return
	}
	r[key] = &trimmed
}

// CanonicalListing is a listing mapped onto the shared schema. Every field is
// present; nil means null.
type CanonicalListing struct {
	Title        *string
	PropertyType *string
	Location     *string
	Price        *string
	Bedrooms     *string
	Bathrooms    *string
	Toilets      *string
	AddedDate    *string
	UpdatedDate  *string
}

// Field returns the value of a canonical field by name.
func (c CanonicalListing) Field(name string) *string {
	switch name {
	case FieldTitle:
		return c.Title
	case FieldPropertyType:
		return c.PropertyType
	case FieldLocation:
		return c.Location
	case FieldPrice:
		return c.Price
	case FieldBedrooms:
		return c.Bedrooms
	case FieldBathrooms:
		return c.Bathrooms
	case FieldToilets:
		return c.Toilets
	case FieldAddedDate:
		return c.AddedDate
	case FieldUpdatedDate:
		return c.UpdatedDate
	}
	return nil
}

// Raw converts the listing back into a field mapping keyed by canonical names.
func (c CanonicalListing) Raw() RawListing {
	raw := make(RawListing, len(CanonicalFields))
	for _, name := range CanonicalFields {
		raw[name] = c.Field(name)
	}
	return raw
}

// CleanedListing is the final, persisted record.
type CleanedListing struct {
	Title        *string
	PropertyType *string
	Location     *string
	AddedDate    *string
	UpdatedDate  *string

	// RawPrice is the source price text; kept in memory for the rental
	// filter and never persisted.
	RawPrice *string

	Price            *float64
	Bedrooms         *int
	Bathrooms        *int
	Toilets          *int
	City             *string
	PricePerBedroom  *float64
	PriceCategory    *string
	MonthPosted      *string
	PropertyCategory string
}

// DatasetColumns is the header of the persisted cleaned dataset.
var DatasetColumns = []string{
	"title", "property_type", "location", "price",
	"bedrooms", "bathrooms", "toilets", "added_date", "updated_date",
	"city", "price_per_bedroom", "price_category", "month_posted", "property_category",
}

// Price buckets.
const (
	PriceLow  = "Low"
	PriceMid  = "Mid"
	PriceHigh = "High"
)

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
