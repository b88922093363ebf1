package models

import "time"

// AveragePrice is the response of the average-price lookup.
type AveragePrice struct {
	City         string   `json:"city"`
	PropertyType string   `json:"property_type"`
	AveragePrice *float64 `json:"average_price"`
	Count        int      `json:"count"`
}

// TrendPoint is one month of the monthly-trend lookup.
type TrendPoint struct {
	Month        string   `json:"month"`
	AveragePrice *float64 `json:"average_price"`
}

// MonthlyTrend is the response of the monthly-trend lookup.
type MonthlyTrend struct {
	City         string       `json:"city"`
	PropertyType string       `json:"property_type"`
	Trends       []TrendPoint `json:"trends"`
}

// GroupMedian is a median value for one group key (city, location or month).
type GroupMedian struct {
	Key    string  `json:"key"`
	Median float64 `json:"median"`
	Count  int     `json:"count"`
}

// CityComparison is one row of the side-by-side city table.
type CityComparison struct {
	City                  string  `json:"city"`
	MedianPrice           float64 `json:"median_price"`
	MedianPricePerBedroom float64 `json:"median_price_per_bedroom"`
	Listings              int     `json:"listings"`
}

// CityGrowth reports median price growth for the latest month of a city.
type CityGrowth struct {
	City        string   `json:"city"`
	LatestMonth string   `json:"latest_month"`
	Median      float64  `json:"median"`
	MoMPercent  *float64 `json:"mom_percent"`
	YoYPercent  *float64 `json:"yoy_percent"`
}

// InsightFilter holds the user-selected filters of the market report.
// Empty strings and nil bounds mean "All".
type InsightFilter struct {
	City     string   `json:"city,omitempty"`
	Category string   `json:"category,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
}

// InsightReport holds the market analytics computed over the cleaned dataset.
type InsightReport struct {
	TotalListings    int     `json:"total_listings"`
	BuildingListings int     `json:"building_listings"`
	FilteredListings int     `json:"filtered_listings"`
	PriceCap         float64 `json:"price_cap"`
	PricePerBedCap   float64 `json:"price_per_bedroom_cap"`

	MedianPriceByCity      []GroupMedian    `json:"median_price_by_city"`
	TopLocations           []GroupMedian    `json:"top_locations"`
	MonthlyMedian          []GroupMedian    `json:"monthly_median"`
	LandMedianByCity       []GroupMedian    `json:"land_median_by_city"`
	TopLandLocations       []GroupMedian    `json:"top_land_locations"`
	PricePerBedroomByCity  []GroupMedian    `json:"price_per_bedroom_by_city"`
	TopPricePerBedroomLocs []GroupMedian    `json:"top_price_per_bedroom_locations"`
	CityComparison         []CityComparison `json:"city_comparison"`
	Growth                 []CityGrowth     `json:"growth"`
}

// SourceSummary records the outcome of one source in a pipeline run.
type SourceSummary struct {
	Name  string `yaml:"name"`
	Rows  int    `yaml:"rows"`
	Error string `yaml:"error,omitempty"`
}

// StageCount records the row count after one cleaning stage.
type StageCount struct {
	Stage string `yaml:"stage"`
	Rows  int    `yaml:"rows"`
}

// RunSummary describes one pipeline run; written next to the dataset.
type RunSummary struct {
	RunID        string          `yaml:"run_id"`
	StartedAt    time.Time       `yaml:"started_at"`
	FinishedAt   time.Time       `yaml:"finished_at"`
	Sources      []SourceSummary `yaml:"sources"`
	CombinedRows int             `yaml:"combined_rows"`
	Stages       []StageCount    `yaml:"stages"`
	CleanedRows  int             `yaml:"cleaned_rows"`
	DatasetPath  string          `yaml:"dataset_path"`
}
