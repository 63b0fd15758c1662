// Package worker implements the triage worker pool that consumes
// lead events and persists insights.
//
// The pool is the asynchronous half of the pipeline. Intake appends
// lead.created entries to the event log and answers the client;
// this package reads those entries through a consumer group,
// classifies each note, and writes the resulting insight, surviving
// crashes, redeliveries, and concurrent duplicates without ever
// producing two insights for the same note.
//
// # Architecture
//
//	                    ┌───────────────────────────┐
//	                    │   stream lead_events      │
//	                    └─────────────┬─────────────┘
//	                                  │ consumer group
//	          ┌───────────────────────┴───────────────────────┐
//	          ▼                                               ▼
//	┌───────────────────┐                          ┌───────────────────┐
//	│ consume loop       │                         │ consume loop      │
//	│ triage_worker_1    │                         │ triage_worker_2   │
//	│                    │                         │                   │
//	│ reclaim → read     │                         │ reclaim → read    │
//	└─────────┬──────────┘                         └─────────┬─────────┘
//	          │                                              │
//	          └──────────────────┬───────────────────────────┘
//	                             ▼
//	              ┌──────────────────────────────┐
//	              │ dispatch                     │
//	              │ semaphore(MaxConcurrent)     │
//	              │ Processor.Process per entry  │
//	              └──────────────┬───────────────┘
//	                             ▼
//	              decode → exists? → classify → persist
//	                             │
//	              ┌──────────────┼──────────────────┐
//	              ▼              ▼                  ▼
//	            ack         dead letter        leave pending
//	         (success,     (permanent or       (transient
//	          duplicate)    over bound)         failure)
//
// # Core Components
//
// Pool: one consume loop per configured consumer identity, all
// inside one process and one consumer group. Each iteration first
// reclaims entries abandoned by a crashed or wedged consumer, then
// blocks briefly for new entries, dispatches the batch under the
// shared concurrency limit, and acknowledges what succeeded.
//
// Processor: the per-entry pipeline. It decodes the event, skips
// work when an insight for (lead, content hash) already exists,
// classifies the note, and persists the insight. The unique
// constraint in storage is the final arbiter: a conflict on insert
// means another delivery already won, and is reported as success.
//
// # Failure Taxonomy
//
// Every failure is either permanent or transient, and the loop
// treats them differently:
//
// Permanent (wraps ErrPermanent): the entry cannot succeed on any
// retry, such as a field that does not decode or a classifier
// result that fails validation. These are copied to the dead letter
// stream with the failure reason and acknowledged immediately.
//
// Transient: the database or classifier was unavailable. The entry
// is left pending; it is redelivered through reclaim and retried
// until it succeeds or crosses the delivery bound, at which point it
// is dead lettered so one stuck entry cannot wedge the group.
//
// Iteration level errors (the read or claim itself failing) back
// off exponentially from 500ms to a 5s cap and reset after the
// first clean pass.
//
// # Delivery Guarantees
//
// Acknowledgement happens only after the insight is persisted or
// known to exist. The crash windows are therefore:
//
//   - crash before processing: entry stays pending, reclaimed later
//   - crash mid processing: same, the partial attempt wrote nothing
//     or wrote the insight that the retry will then find
//   - crash after persist, before ack: retry finds the insight via
//     the exists check or the unique constraint and acks
//
// In all cases exactly one insight row survives per (lead, note).
//
// # Shutdown
//
// Cancelling the Run context stops new reads immediately. Entries
// already dispatched run on a detached context and finish under
// their own timeout, their acks go out, and Run returns when every
// consume loop has drained.
//
// # Usage
//
//	pool := worker.NewPool(eventLog,
//		worker.NewProcessor(store, classifier),
//		worker.Config{
//			Consumers:     cfg.WorkerNames,
//			MaxConcurrent: int64(cfg.MaxConcurrent),
//		})
//
//	if err := pool.Run(ctx); err != nil {
//		return err
//	}
//
// # Integration Points
//
//   - pkg/events: stream read, ack, reclaim, dead letter
//   - pkg/classifier: note classification
//   - pkg/storage: insight persistence and the duplicate arbiter
//   - pkg/metrics: consumption, reclaim, failure and latency series
//
// # Troubleshooting
//
// Insights lagging behind intake: check sift_stream_pending and the
// consumer logs. A growing backlog with triage failures points at
// the database; a flat backlog with no consumption points at the
// stream connection.
//
// Repeated "delivery bound exceeded" logs: one entry kept failing
// transiently until the bound. The dead letter stream carries its
// fields and last error; re-append to the main stream after fixing
// the cause.
package worker
