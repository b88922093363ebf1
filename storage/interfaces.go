package storage

import "property-scraper/models"

// CombinedStore persists the combined canonical rows before cleaning.
type CombinedStore interface {
	WriteCombined(rows []models.CanonicalListing) error
	ReadCombined() ([]models.CanonicalListing, error)
}

// DatasetWriter persists the cleaned dataset, replacing any previous one.
type DatasetWriter interface {
	WriteDataset(rows []models.CleanedListing) error
}

// SummaryWriter persists the summary of a pipeline run.
type SummaryWriter interface {
	WriteSummary(summary *models.RunSummary) error
}
