package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"property-scraper/api"
	"property-scraper/services"
	"property-scraper/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query API over the cleaned dataset",
	Long: `Load the cleaned dataset once and serve:

  GET /                                       welcome message
  GET /api/average_price?city=&property_type= average price and count
  GET /api/trends?city=&property_type=        monthly average price
  GET /api/insights?city=&category=&min_price=&max_price=  market report`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen-addr", ":8000", "address to listen on")
	_ = viper.BindPFlag("listen_addr", serveCmd.Flags().Lookup("listen-addr"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	rows, err := storage.LoadDataset(cfg.DatasetPath)
	if err != nil {
		return err
	}
	logger.Info("Loaded %d listings from %s", len(rows), cfg.DatasetPath)

	handler := api.NewHandler(services.NewQueryService(rows), services.NewInsightService(logger), logger)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		logger.Info("Server running on %s", cfg.ListenAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return srv.Shutdown(shutdownCtx)
	}
}
