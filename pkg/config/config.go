package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full runtime configuration for every Sift process.
// All values come from the environment; defaults suit a local
// single-node setup.
type Config struct {
	// Relational store
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	// Key-value store / event log
	RedisURL         string
	Stream           string
	ConsumerGroup    string
	DeadLetterStream string

	// Worker pool tuning
	BatchSize     int
	BlockTime     time.Duration
	MaxConcurrent int
	MinIdleTime   time.Duration
	MaxDeliveries int
	WorkerNames   []string

	// Classifier selection
	Adapter   string
	RulesPath string

	// HTTP listeners
	IntakeListenAddr   string
	InsightsListenAddr string
	WorkerListenAddr   string

	// Logging
	LogLevel string
	LogJSON  bool
}

// Load reads configuration from the environment, applying defaults for
// anything unset, and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	// A variable set to the empty string overrides its default; only
	// unset variables fall back. Emptied required values fail validate.
	v.AllowEmptyEnv(true)

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "lead_triage")

	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("REDIS_STREAM", "lead_events")
	v.SetDefault("REDIS_CONSUMER_GROUP", "triage_group")
	v.SetDefault("DEAD_LETTER_STREAM", "")

	v.SetDefault("BATCH_SIZE", 10)
	v.SetDefault("STREAM_BLOCK_TIME", 5000)
	v.SetDefault("MAX_CONCURRENT_REQUESTS", 5)
	v.SetDefault("MIN_IDLE_TIME", 1000)
	v.SetDefault("MAX_DELIVERIES", 5)
	v.SetDefault("WORKER_NAMES", "triage_worker_1,triage_worker_2")

	v.SetDefault("LLM_ADAPTER", "rule_based")
	v.SetDefault("RULES_PATH", "")

	v.SetDefault("INTAKE_LISTEN_ADDR", ":8100")
	v.SetDefault("INSIGHTS_LISTEN_ADDR", ":8101")
	v.SetDefault("WORKER_LISTEN_ADDR", ":8102")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", true)

	cfg := &Config{
		PostgresHost:     v.GetString("POSTGRES_HOST"),
		PostgresPort:     v.GetInt("POSTGRES_PORT"),
		PostgresUser:     v.GetString("POSTGRES_USER"),
		PostgresPassword: v.GetString("POSTGRES_PASSWORD"),
		PostgresDB:       v.GetString("POSTGRES_DB"),

		RedisURL:         v.GetString("REDIS_URL"),
		Stream:           v.GetString("REDIS_STREAM"),
		ConsumerGroup:    v.GetString("REDIS_CONSUMER_GROUP"),
		DeadLetterStream: v.GetString("DEAD_LETTER_STREAM"),

		BatchSize:     v.GetInt("BATCH_SIZE"),
		BlockTime:     time.Duration(v.GetInt("STREAM_BLOCK_TIME")) * time.Millisecond,
		MaxConcurrent: v.GetInt("MAX_CONCURRENT_REQUESTS"),
		MinIdleTime:   time.Duration(v.GetInt("MIN_IDLE_TIME")) * time.Millisecond,
		MaxDeliveries: v.GetInt("MAX_DELIVERIES"),
		WorkerNames:   splitNames(v.GetString("WORKER_NAMES")),

		Adapter:   v.GetString("LLM_ADAPTER"),
		RulesPath: v.GetString("RULES_PATH"),

		IntakeListenAddr:   v.GetString("INTAKE_LISTEN_ADDR"),
		InsightsListenAddr: v.GetString("INSIGHTS_LISTEN_ADDR"),
		WorkerListenAddr:   v.GetString("WORKER_LISTEN_ADDR"),

		LogLevel: v.GetString("LOG_LEVEL"),
		LogJSON:  v.GetBool("LOG_JSON"),
	}

	if cfg.DeadLetterStream == "" {
		cfg.DeadLetterStream = cfg.Stream + ":dlq"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Stream == "" {
		return fmt.Errorf("REDIS_STREAM must not be empty")
	}
	if c.ConsumerGroup == "" {
		return fmt.Errorf("REDIS_CONSUMER_GROUP must not be empty")
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be >= 1, got %d", c.BatchSize)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("MAX_CONCURRENT_REQUESTS must be >= 1, got %d", c.MaxConcurrent)
	}
	if c.MaxDeliveries < 1 {
		return fmt.Errorf("MAX_DELIVERIES must be >= 1, got %d", c.MaxDeliveries)
	}
	if len(c.WorkerNames) == 0 {
		return fmt.Errorf("WORKER_NAMES must name at least one worker")
	}
	if c.Adapter == "" {
		return fmt.Errorf("LLM_ADAPTER must not be empty")
	}
	return nil
}

// PostgresDSN builds the connection string for the relational store.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:     c.PostgresDB,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func splitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
