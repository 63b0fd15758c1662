package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/siftlabs/sift/pkg/config"
	"github.com/siftlabs/sift/pkg/events"
	"github.com/siftlabs/sift/pkg/log"
	"github.com/siftlabs/sift/pkg/storage"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "Sift - event driven lead triage pipeline",
	Long: `Sift ingests raw sales leads over HTTP, classifies them
asynchronously through a durable event log, and serves the resulting
triage insights.

One binary runs any of the three services: the intake API, the
insights API, and the triage worker. Configuration comes from the
environment; each service accepts a --listen override.`,
	Version: Version,
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Sift version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	// Add subcommands
	rootCmd.AddCommand(intakeCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(workerCmd)
}

// loadConfig reads the environment and initializes logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
		Output:     os.Stderr,
	})
	return cfg, nil
}

// openPostgres connects to the database and waits for it to answer.
func openPostgres(ctx context.Context, cfg *config.Config) (*storage.PostgresStore, error) {
	store, err := storage.Open(cfg.PostgresDSN())
	if err != nil {
		return nil, err
	}

	if err := waitFor(ctx, "postgres", store.Ping); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// openRedis connects to Redis and waits for it to answer.
func openRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	if err := waitFor(ctx, "redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// waitFor retries a dependency probe with exponential backoff, so a
// service started alongside its dependencies comes up once they do.
func waitFor(ctx context.Context, name string, probe func(context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 60 * time.Second

	op := func() error {
		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return probe(probeCtx)
	}
	notify := func(err error, wait time.Duration) {
		log.Logger.Warn().
			Err(err).
			Str("dependency", name).
			Dur("retry_in", wait).
			Msg("waiting for dependency")
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), notify); err != nil {
		return fmt.Errorf("%s not reachable: %w", name, err)
	}
	return nil
}

// eventLogConfig maps runtime configuration onto the stream client.
func eventLogConfig(cfg *config.Config) events.Config {
	return events.Config{
		Stream:           cfg.Stream,
		Group:            cfg.ConsumerGroup,
		DeadLetterStream: cfg.DeadLetterStream,
		BatchSize:        cfg.BatchSize,
		BlockTime:        cfg.BlockTime,
		MinIdleTime:      cfg.MinIdleTime,
		MaxDeliveries:    int64(cfg.MaxDeliveries),
	}
}
