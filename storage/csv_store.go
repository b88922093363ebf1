package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"property-scraper/models"
)

// CSVStore keeps the combined and cleaned datasets as CSV files. Every write
// replaces the target file wholesale through a temp file and rename.
// It is safe for concurrent use.
type CSVStore struct {
	mu           sync.Mutex
	combinedPath string
	datasetPath  string
}

// NewCSVStore returns a store writing to the given paths.
func NewCSVStore(combinedPath, datasetPath string) *CSVStore {
	return &CSVStore{combinedPath: combinedPath, datasetPath: datasetPath}
}

// DatasetPath returns where the cleaned dataset is written.
func (s *CSVStore) DatasetPath() string { return s.datasetPath }

// WriteCombined writes the canonical rows with the canonical header.
func (s *CSVStore) WriteCombined(rows []models.CanonicalListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		rec := make([]string, len(models.CanonicalFields))
		for i, name := range models.CanonicalFields {
			rec[i] = models.Deref(r.Field(name))
		}
		records = append(records, rec)
	}
	return writeCSV(s.combinedPath, models.CanonicalFields, records)
}

// ReadCombined reads rows written by WriteCombined. Empty cells become nil.
func (s *CSVStore) ReadCombined() ([]models.CanonicalListing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []models.CanonicalListing
	err := readCSV(s.combinedPath, func(get func(string) *string) {
		rows = append(rows, models.CanonicalListing{
			Title:        get(models.FieldTitle),
			PropertyType: get(models.FieldPropertyType),
			Location:     get(models.FieldLocation),
			Price:        get(models.FieldPrice),
			Bedrooms:     get(models.FieldBedrooms),
			Bathrooms:    get(models.FieldBathrooms),
			Toilets:      get(models.FieldToilets),
			AddedDate:    get(models.FieldAddedDate),
			UpdatedDate:  get(models.FieldUpdatedDate),
		})
	})
	return rows, err
}

// WriteDataset writes the cleaned rows. Zero rows still produce the header.
func (s *CSVStore) WriteDataset(rows []models.CleanedListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			models.Deref(r.Title),
			models.Deref(r.PropertyType),
			models.Deref(r.Location),
			formatFloat(r.Price),
			formatInt(r.Bedrooms),
			formatInt(r.Bathrooms),
			formatInt(r.Toilets),
			models.Deref(r.AddedDate),
			models.Deref(r.UpdatedDate),
			models.Deref(r.City),
			formatFloat(r.PricePerBedroom),
			models.Deref(r.PriceCategory),
			models.Deref(r.MonthPosted),
			r.PropertyCategory,
		})
	}
	return writeCSV(s.datasetPath, models.DatasetColumns, records)
}

// LoadDataset reads a cleaned dataset written by WriteDataset.
func LoadDataset(path string) ([]models.CleanedListing, error) {
	var rows []models.CleanedListing
	err := readCSV(path, func(get func(string) *string) {
		rows = append(rows, models.CleanedListing{
			Title:            get("title"),
			PropertyType:     get("property_type"),
			Location:         get("location"),
			Price:            parseFloat(get("price")),
			Bedrooms:         parseInt(get("bedrooms")),
			Bathrooms:        parseInt(get("bathrooms")),
			Toilets:          parseInt(get("toilets")),
			AddedDate:        get("added_date"),
			UpdatedDate:      get("updated_date"),
			City:             get("city"),
			PricePerBedroom:  parseFloat(get("price_per_bedroom")),
			PriceCategory:    get("price_category"),
			MonthPosted:      get("month_posted"),
			PropertyCategory: models.Deref(get("property_category")),
		})
	})
	return rows, err
}

func writeCSV(path string, header []string, records [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("csv: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("csv: chmod temp file: %w", err)
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("csv: write header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("csv: write rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csv: close %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("csv: replace %q: %w", path, err)
	}
	return nil
}

// readCSV calls fn once per data row with a lookup by column name. Columns
// missing from the file read as nil.
func readCSV(path string, fn func(get func(column string) *string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("csv: read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("csv: read row: %w", err)
		}
		fn(func(column string) *string {
			i, ok := index[column]
			if !ok || i >= len(rec) || rec[i] == "" {
				return nil
			}
			v := rec[i]
			return &v
		})
	}
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func formatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func parseFloat(s *string) *float64 {
	if s == nil {
		return nil
	}
	f, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(s *string) *int {
	if s == nil {
		return nil
	}
	n, err := strconv.Atoi(*s)
	if err != nil {
		return nil
	}
	return &n
}
