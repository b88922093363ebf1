package cmd

import (
	"github.com/spf13/cobra"

	"property-scraper/services"
	"property-scraper/storage"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Rebuild the dataset from the last combined file without scraping",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		store := storage.NewCSVStore(cfg.CombinedPath, cfg.DatasetPath)
		pipeline := services.NewPipeline(cfg, nil, store, storage.NewYAMLSummaryWriter(cfg.SummaryPath), logger)

		summary, err := pipeline.Reclean()
		if err != nil {
			return err
		}
		logSummary(logger, summary.CombinedRows, summary.CleanedRows, cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
