package services

import (
	"property-scraper/models"
	"property-scraper/utils"
)

// SourceResult is the outcome of one source scraper.
type SourceResult struct {
	Name string
	Rows []models.RawListing
	Err  error
}

// Combine normalizes and concatenates the rows of every source that
// completed, in the order given. A failed source contributes zero rows.
func Combine(results []SourceResult, logger *utils.Logger) []models.CanonicalListing {
	var combined []models.CanonicalListing
	for _, r := range results {
		if r.Err != nil {
			logger.Error("[combiner] %s failed, excluded from dataset: %v", r.Name, r.Err)
			continue
		}
		logger.Info("[combiner] %s contributed %d rows", r.Name, len(r.Rows))
		combined = append(combined, NormalizeAll(r.Rows)...)
	}
	return combined
}
