// Package cmd implements the property-scraper CLI.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"property-scraper/config"
	"property-scraper/utils"
)

var rootCmd = &cobra.Command{
	Use:   "property-scraper",
	Short: "Scrape, clean and analyse Nigerian property listings",
	Long: `property-scraper collects sale listings from PropertyPro,
NigeriaPropertyCentre and PrivateProperty, reconciles them into one
schema, cleans them and writes a single CSV dataset.

Examples:
  # Scrape every enabled source and build the dataset
  property-scraper run

  # Rebuild the dataset from the last combined file without scraping
  property-scraper clean

  # Serve the query API over the dataset
  property-scraper serve --listen-addr :8000

  # Print the market report for Lagos
  property-scraper insights --city Lagos`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("output-dir", "./dataset", "directory for the combined file, dataset and run summary")
	flags.String("dataset-file", "new_cleaned_properties.csv", "cleaned dataset file name or path")
	flags.Float64("exchange-rate", 1438, "NGN per USD used to convert dollar prices")
	flags.Bool("debug", false, "enable debug logging")

	_ = viper.BindPFlag("output_dir", flags.Lookup("output-dir"))
	_ = viper.BindPFlag("dataset_file", flags.Lookup("dataset-file"))
	_ = viper.BindPFlag("exchange_rate", flags.Lookup("exchange-rate"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup loads the configuration and builds the logger shared by every command.
func setup() (*config.Config, *utils.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	logger := utils.NewLogger()
	logger.SetDebug(cfg.Debug)
	return cfg, logger, nil
}
