package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"property-scraper/models"
)

// YAMLSummaryWriter writes run summaries as YAML.
type YAMLSummaryWriter struct {
	path string
}

// NewYAMLSummaryWriter returns a writer targeting path.
func NewYAMLSummaryWriter(path string) *YAMLSummaryWriter {
	return &YAMLSummaryWriter{path: path}
}

// WriteSummary replaces the summary file with summary.
func (w *YAMLSummaryWriter) WriteSummary(summary *models.RunSummary) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("summary: create output dir: %w", err)
	}
	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("summary: create %q: %w", w.path, err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("summary: encode: %w", err)
	}
	return enc.Close()
}

// ReadSummary loads a summary written by WriteSummary.
func ReadSummary(path string) (*models.RunSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("summary: read %q: %w", path, err)
	}
	var s models.RunSummary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("summary: decode: %w", err)
	}
	return &s, nil
}
