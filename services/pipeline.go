package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"property-scraper/config"
	"property-scraper/models"
	"property-scraper/scraper"
	"property-scraper/storage"
	"property-scraper/utils"
)

// SourceJob pairs a source with the number of listing pages to walk.
type SourceJob struct {
	Source   scraper.Source
	MaxPages int
}

// Store persists the combined rows and the cleaned dataset.
type Store interface {
	storage.CombinedStore
	storage.DatasetWriter
}

// Pipeline runs the sources, combines their rows, cleans them and persists
// the result together with a run summary.
type Pipeline struct {
	jobs           []SourceJob
	cleaner        *Cleaner
	store          Store
	summary        storage.SummaryWriter
	datasetPath    string
	maxConcurrency int
	stagger        time.Duration
	logger         *utils.Logger
}

// NewPipeline wires a pipeline from cfg. summary may be nil.
func NewPipeline(cfg *config.Config, jobs []SourceJob, store Store, summary storage.SummaryWriter, logger *utils.Logger) *Pipeline {
	return &Pipeline{
		jobs:           jobs,
		cleaner:        NewCleaner(logger, cfg.ExchangeRate),
		store:          store,
		summary:        summary,
		datasetPath:    cfg.DatasetPath,
		maxConcurrency: cfg.MaxConcurrency,
		stagger:        cfg.SourceStagger,
		logger:         logger,
	}
}

// Run scrapes every source, persists the combined rows, then cleans and
// persists the dataset. A failing or panicking source contributes no rows
// and is recorded in the summary; only storage failures are returned.
//
// If ctx is cancelled while scraping, Run persists nothing and returns the
// context error, so the previous combined rows and dataset stay in place.
func (p *Pipeline) Run(ctx context.Context) (*models.RunSummary, error) {
	summary := p.newSummary()
	p.logger.Info("=== Run %s: scraping %d sources (concurrency %d) ===", summary.RunID, len(p.jobs), p.maxConcurrency)

	results := p.scrapeAll(ctx)
	for _, r := range results {
		s := models.SourceSummary{Name: r.Name, Rows: len(r.Rows)}
		if r.Err != nil {
			s.Error = r.Err.Error()
		}
		summary.Sources = append(summary.Sources, s)
	}

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("pipeline: run %s interrupted, nothing persisted: %w", summary.RunID, err)
	}

	combined := Combine(results, p.logger)
	if err := p.store.WriteCombined(combined); err != nil {
		return summary, fmt.Errorf("pipeline: persist combined rows: %w", err)
	}
	p.logger.Info("Combined %d rows from %d sources", len(combined), len(results))

	return p.finish(summary, combined)
}

// Reclean rebuilds the dataset from previously persisted combined rows
// without scraping.
func (p *Pipeline) Reclean() (*models.RunSummary, error) {
	summary := p.newSummary()
	combined, err := p.store.ReadCombined()
	if err != nil {
		return summary, fmt.Errorf("pipeline: load combined rows: %w", err)
	}
	p.logger.Info("=== Run %s: re-cleaning %d combined rows ===", summary.RunID, len(combined))
	return p.finish(summary, combined)
}

func (p *Pipeline) newSummary() *models.RunSummary {
	return &models.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

func (p *Pipeline) finish(summary *models.RunSummary, combined []models.CanonicalListing) (*models.RunSummary, error) {
	cleaned, stages := p.cleaner.Clean(combined)

	summary.CombinedRows = len(combined)
	summary.Stages = stages
	summary.CleanedRows = len(cleaned)
	summary.DatasetPath = p.datasetPath

	if len(cleaned) == 0 {
		p.logger.Warn("No listings survived cleaning; writing an empty dataset")
	}
	if err := p.store.WriteDataset(cleaned); err != nil {
		return summary, fmt.Errorf("pipeline: persist dataset: %w", err)
	}
	p.logger.Info("Dataset saved to %s (%d rows)", p.datasetPath, len(cleaned))

	summary.FinishedAt = time.Now().UTC()
	if p.summary != nil {
		if err := p.summary.WriteSummary(summary); err != nil {
			return summary, fmt.Errorf("pipeline: persist run summary: %w", err)
		}
	}
	return summary, nil
}

// scrapeAll runs the sources on the worker pool. Each source writes only
// its own result slot.
func (p *Pipeline) scrapeAll(ctx context.Context) []SourceResult {
	results := make([]SourceResult, len(p.jobs))

	pool := utils.NewWorkerPool(p.maxConcurrency, p.stagger)
	pool.OnPanic(func(r any) {
		p.logger.Error("[pipeline] worker panic: %v", r)
	})

	for i, job := range p.jobs {
		results[i].Name = job.Source.Name()
		pool.Submit(func() {
			results[i] = p.runSource(ctx, job)
		})
	}
	pool.Wait()
	return results
}

func (p *Pipeline) runSource(ctx context.Context, job SourceJob) (res SourceResult) {
	res.Name = job.Source.Name()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res.Rows = nil
			res.Err = utils.PanicError(r)
			p.logger.Error("[%s] scraper panicked: %v", res.Name, r)
		}
	}()

	p.logger.Info("[%s] starting (%d pages)", res.Name, job.MaxPages)
	res.Rows, res.Err = job.Source.Scrape(ctx, job.MaxPages)
	if res.Err != nil {
		p.logger.Error("[%s] failed after %s: %v", res.Name, time.Since(start).Round(time.Millisecond), res.Err)
		return res
	}
	p.logger.Info("[%s] done: %d listings in %s", res.Name, len(res.Rows), time.Since(start).Round(time.Millisecond))
	return res
}
