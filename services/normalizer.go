package services

import "property-scraper/models"

// fieldAliases maps source-specific raw field names onto canonical ones.
// When several aliases of one field are present, the first non-nil wins.
var fieldAliases = []struct{ alias, field string }{
	{"type", models.FieldPropertyType},
	{"proper_type", models.FieldPropertyType},
	{"date_added", models.FieldAddedDate},
	{"date_updated", models.FieldUpdatedDate},
	{"updated_dates", models.FieldUpdatedDate},
}

// Normalize maps a RawListing onto the canonical schema. Aliased fields are
// renamed, unknown fields dropped and absent fields left nil. A canonical key
// already present in raw wins over any alias of it.
func Normalize(raw models.RawListing) models.CanonicalListing {
	values := make(map[string]*string, len(models.CanonicalFields))
	present := make(map[string]bool, len(models.CanonicalFields))

	for _, name := range models.CanonicalFields {
		if v, ok := raw[name]; ok {
			values[name] = v
			present[name] = true
		}
	}
	for _, a := range fieldAliases {
		v, ok := raw[a.alias]
		if !ok || present[a.field] {
			continue
		}
		if values[a.field] == nil {
			values[a.field] = v
		}
	}

	return models.CanonicalListing{
		Title:        values[models.FieldTitle],
		PropertyType: values[models.FieldPropertyType],
		Location:     values[models.FieldLocation],
		Price:        values[models.FieldPrice],
		Bedrooms:     values[models.FieldBedrooms],
		Bathrooms:    values[models.FieldBathrooms],
		Toilets:      values[models.FieldToilets],
		AddedDate:    values[models.FieldAddedDate],
		UpdatedDate:  values[models.FieldUpdatedDate],
	}
}

// NormalizeAll normalizes every listing, one out per one in.
func NormalizeAll(raws []models.RawListing) []models.CanonicalListing {
	out := make([]models.CanonicalListing, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw))
	}
	return out
}
