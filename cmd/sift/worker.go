package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/pkg/api"
	"github.com/siftlabs/sift/pkg/classifier"
	"github.com/siftlabs/sift/pkg/events"
	"github.com/siftlabs/sift/pkg/health"
	"github.com/siftlabs/sift/pkg/log"
	"github.com/siftlabs/sift/pkg/metrics"
	"github.com/siftlabs/sift/pkg/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the triage worker",
	Long: `Run the asynchronous triage worker.

The worker consumes lead.created events through the consumer group,
classifies each note, and persists insights. Repeated deliveries of
the same event converge on a single insight. The configured listen
address serves /healthz, /readyz and /metrics.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().String("listen", "", "Listen address (overrides WORKER_LISTEN_ADDR)")
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.WorkerListenAddr = listen
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

	c, err := classifier.New(cfg.Adapter, cfg.RulesPath)
	if err != nil {
		return err
	}
	log.Logger.Info().
		Str("adapter", c.Name()).
		Strs("consumers", cfg.WorkerNames).
		Msg("starting triage worker")

	eventLog := events.NewLog(client, eventLogConfig(cfg))
	pool := worker.NewPool(eventLog, worker.NewProcessor(store, c), worker.Config{
		Consumers:     cfg.WorkerNames,
		MaxConcurrent: int64(cfg.MaxConcurrent),
	})

	collector := metrics.NewCollector(eventLog)
	collector.Start()
	defer collector.Stop()

	checkCfg := health.DefaultConfig()
	router := api.NewRouter("worker",
		health.NewPostgresChecker(store, checkCfg),
		health.NewRedisChecker(client, checkCfg),
	)
	srv := api.NewServer("worker", cfg.WorkerListenAddr, router)

	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			srvErr <- err
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	poolErr := make(chan error, 1)
	go func() {
		poolErr <- pool.Run(runCtx)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Logger.Info().Msg("shutting down")
	case err := <-srvErr:
		cancel()
		<-poolErr
		return err
	case err := <-poolErr:
		// The pool only returns on cancellation or a startup error.
		return err
	}

	cancel()
	if err := <-poolErr; err != nil {
		log.Logger.Error().Err(err).Msg("pool stopped with error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
