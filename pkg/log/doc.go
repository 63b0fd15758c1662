/*
Package log provides structured logging for all Sift processes.

Built on zerolog, it exposes a single global logger configured once at
process start plus helpers for deriving child loggers with standard
fields. JSON output is the default (one object per line for log
shippers); console output with timestamps is available for local
development.

# Usage

Initialize once in main:

	log.Init(log.Config{
	    Level:      log.InfoLevel,
	    JSONOutput: true,
	})

Derive component loggers where work happens:

	logger := log.WithComponent("worker")
	logger.Info().Str("stream", cfg.Stream).Msg("consuming")

Worker identities and lead ids get their own fields so a single lead
can be followed across intake, the stream, and the worker that
classified it:

	wl := log.WithConsumer("triage_worker_1")
	wl.Debug().Str("entry_id", id).Msg("claimed pending entry")

	ll := log.WithLeadID(event.LeadID.String())
	ll.Info().Str("intent", string(verdict.Intent)).Msg("insight stored")

# Conventions

  - component: one of intake, insights, worker, events, storage
  - consumer: worker identity within the consumer group
  - lead_id / entry_id: correlation ids for pipeline tracing
  - Err(err) on every error-level line

Log level and format come from LOG_LEVEL and LOG_JSON (see pkg/config);
unknown levels fall back to info.
*/
package log
