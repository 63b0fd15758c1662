package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/pkg/api"
	"github.com/siftlabs/sift/pkg/events"
	"github.com/siftlabs/sift/pkg/health"
	"github.com/siftlabs/sift/pkg/idempotency"
	"github.com/siftlabs/sift/pkg/log"
)

var intakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Run the lead intake API",
	Long: `Run the synchronous lead intake service.

Intake accepts leads over HTTP, persists them to PostgreSQL,
publishes lead.created events to the Redis stream, and answers
retries through the idempotency cache.`,
	RunE: runIntake,
}

func init() {
	intakeCmd.Flags().String("listen", "", "Listen address (overrides INTAKE_LISTEN_ADDR)")
}

func runIntake(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.IntakeListenAddr = listen
	}
	ctx := cmd.Context()

	store, err := openPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := openRedis(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	checkCfg := health.DefaultConfig()
	router := api.NewRouter("intake",
		health.NewPostgresChecker(store, checkCfg),
		health.NewRedisChecker(client, checkCfg),
	)
	api.NewIntake(store, events.NewLog(client, eventLogConfig(cfg)), idempotency.NewCache(client)).Register(router)

	srv := api.NewServer("intake", cfg.IntakeListenAddr, router)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal or server error
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
