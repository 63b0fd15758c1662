package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/pkg/api"
	"github.com/siftlabs/sift/pkg/health"
	"github.com/siftlabs/sift/pkg/log"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Run the insights read API",
	Long: `Run the insights service.

Insights serves triage results from PostgreSQL. Clients poll
GET /leads/{id}/insight after submitting a lead until the worker
has classified it.`,
	RunE: runInsights,
}

func init() {
	insightsCmd.Flags().String("listen", "", "Listen address (overrides INSIGHTS_LISTEN_ADDR)")
}

func runInsights(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.InsightsListenAddr = listen
	}

	store, err := openPostgres(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	router := api.NewRouter("insights",
		health.NewPostgresChecker(store, health.DefaultConfig()),
	)
	api.NewInsights(store).Register(router)

	srv := api.NewServer("insights", cfg.InsightsListenAddr, router)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Logger.Info().Msg("shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
