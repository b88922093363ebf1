package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"property-scraper/config"
	"property-scraper/fetch"
	"property-scraper/scraper"
	"property-scraper/scraper/npc"
	"property-scraper/scraper/privateproperty"
	"property-scraper/scraper/propertypro"
	"property-scraper/services"
	"property-scraper/storage"
	"property-scraper/utils"
)

// browserSettle is how long a rendered page may keep loading before its DOM is read.
const browserSettle = 2 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape every enabled source and build the cleaned dataset",
	Long: `Scrape the enabled sources in parallel (one worker per source), write the
combined rows, clean them and write the dataset and a YAML run summary.

A source that fails or panics contributes no rows; the run still writes a
dataset, which has only a header row when nothing survives.`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.Int("max-concurrency", 3, "sources scraped in parallel (1-3)")
	flags.Duration("source-stagger", 0, "minimum gap between source starts")
	flags.String("fetch-mode", config.FetchHTTP, "fetch transport: http, browser")
	flags.String("chrome-bin", "", "Chrome/Chromium binary for browser mode (auto-detected when empty)")
	flags.StringSlice("source", nil, "only scrape these sources (propertypro, nigeriapropertycentre, privateproperty)")
	for _, s := range config.DefaultSources() {
		flags.Int(s.Name+"-pages", s.MaxPages, "listing pages to walk on "+s.Name)
		_ = viper.BindPFlag(s.Name+"_pages", flags.Lookup(s.Name+"-pages"))
	}

	_ = viper.BindPFlag("max_concurrency", flags.Lookup("max-concurrency"))
	_ = viper.BindPFlag("source_stagger", flags.Lookup("source-stagger"))
	_ = viper.BindPFlag("fetch_mode", flags.Lookup("fetch-mode"))
	_ = viper.BindPFlag("chrome_bin", flags.Lookup("chrome-bin"))
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	only, _ := cmd.Flags().GetStringSlice("source")
	for _, name := range only {
		if _, ok := cfg.Source(name); !ok {
			return fmt.Errorf("unknown source %q", name)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fetcher := newFetcher(cfg, logger)
	defer fetcher.Close()

	var jobs []services.SourceJob
	for _, sc := range cfg.Sources {
		if len(only) > 0 && !slices.Contains(only, sc.Name) {
			continue
		}
		if !sc.Enabled {
			logger.Info("[%s] disabled, skipping", sc.Name)
			continue
		}
		jobs = append(jobs, services.SourceJob{Source: newSource(sc, fetcher, logger), MaxPages: sc.MaxPages})
	}

	logger.Info("=== Property scraping pipeline starting ===")
	logger.Info("Config: sources %d | concurrency %d | fetch %s | rate %.0f NGN/USD",
		len(jobs), cfg.MaxConcurrency, fetcher.Type(), cfg.ExchangeRate)

	store := storage.NewCSVStore(cfg.CombinedPath, cfg.DatasetPath)
	pipeline := services.NewPipeline(cfg, jobs, store, storage.NewYAMLSummaryWriter(cfg.SummaryPath), logger)

	summary, err := pipeline.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Warn("Run interrupted; previous dataset at %s left unchanged", cfg.DatasetPath)
		return err
	}
	if err != nil {
		return err
	}
	logSummary(logger, summary.CombinedRows, summary.CleanedRows, cfg)
	return nil
}

func newFetcher(cfg *config.Config, logger *utils.Logger) fetch.Fetcher {
	if cfg.FetchMode == config.FetchBrowser {
		return fetch.NewBrowserFetcher(cfg.ChromeBin, browserSettle, logger)
	}
	return fetch.NewHTTPFetcher(nil)
}

func newSource(sc config.SourceConfig, f fetch.Fetcher, logger *utils.Logger) scraper.Source {
	switch sc.Name {
	case config.PropertyPro:
		return propertypro.New(sc, f, logger)
	case config.NPC:
		return npc.New(sc, f, logger)
	default:
		return privateproperty.New(sc, f, logger)
	}
}

func logSummary(logger *utils.Logger, combined, cleaned int, cfg *config.Config) {
	logger.Info("=== Done: %d combined → %d cleaned listings ===", combined, cleaned)
	logger.Info("Combined rows : %s", cfg.CombinedPath)
	logger.Info("Dataset       : %s", cfg.DatasetPath)
	logger.Info("Run summary   : %s", cfg.SummaryPath)
}
