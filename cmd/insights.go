package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"property-scraper/models"
	"property-scraper/services"
	"property-scraper/storage"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Print the market report for the cleaned dataset",
	RunE:  runInsights,
}

func init() {
	rootCmd.AddCommand(insightsCmd)

	flags := insightsCmd.Flags()
	flags.String("city", "", "only include this city")
	flags.String("category", "", "only include this property category")
	flags.Float64("min-price", 0, "lowest price to include (NGN)")
	flags.Float64("max-price", 0, "highest price to include (NGN)")
	flags.Bool("json", false, "print the report as JSON")
}

func runInsights(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	rows, err := storage.LoadDataset(cfg.DatasetPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var filter models.InsightFilter
	filter.City, _ = flags.GetString("city")
	filter.Category, _ = flags.GetString("category")
	if flags.Changed("min-price") {
		v, _ := flags.GetFloat64("min-price")
		filter.MinPrice = &v
	}
	if flags.Changed("max-price") {
		v, _ := flags.GetFloat64("max-price")
		filter.MaxPrice = &v
	}

	svc := services.NewInsightService(logger)
	report := svc.Generate(rows, filter)

	if asJSON, _ := flags.GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	svc.Print(report)
	return nil
}
