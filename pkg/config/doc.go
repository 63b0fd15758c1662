/*
Package config loads Sift's runtime configuration from the environment.

One Config struct feeds all three processes (intake, insights, worker);
each process reads the subset it needs. Values come from environment
variables via viper with defaults suited to a local single-node setup,
so a bare `sift worker` against localhost Postgres and Redis works with
no configuration at all.

# Variables

Relational store:

	POSTGRES_HOST      (localhost)
	POSTGRES_PORT      (5432)
	POSTGRES_USER      (postgres)
	POSTGRES_PASSWORD  (postgres)
	POSTGRES_DB        (lead_triage)

Event log and cache:

	REDIS_URL             (redis://localhost:6379/0)
	REDIS_STREAM          (lead_events)
	REDIS_CONSUMER_GROUP  (triage_group)
	DEAD_LETTER_STREAM    (<REDIS_STREAM>:dlq when unset)

Worker pool:

	BATCH_SIZE               (10)   entries per read/reclaim
	STREAM_BLOCK_TIME        (5000) ms to block on an empty stream
	MAX_CONCURRENT_REQUESTS  (5)    classification fan-out per worker
	MIN_IDLE_TIME            (1000) ms before a pending entry is reclaimable
	MAX_DELIVERIES           (5)    deliveries before dead-lettering
	WORKER_NAMES             (triage_worker_1,triage_worker_2)

Classifier:

	LLM_ADAPTER  (rule_based) adapter name
	RULES_PATH   ()           optional YAML rules override

Listeners and logging:

	INTAKE_LISTEN_ADDR    (:8100)
	INSIGHTS_LISTEN_ADDR  (:8101)
	WORKER_LISTEN_ADDR    (:8102)
	LOG_LEVEL             (info)
	LOG_JSON              (true)

Load validates the numeric bounds (batch size, concurrency, delivery
limit all >= 1) and that at least one worker name is present, failing
fast at process start rather than mid-pipeline.
*/
package config
