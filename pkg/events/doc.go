// Package events provides the durable lead event log on Redis
// Streams, with consumer group delivery, idle entry reclaim, and a
// dead letter stream for poison entries.
//
// The log is the only channel between lead intake and the triage
// workers. Intake appends a lead.created entry after the lead row
// commits; workers consume through a shared group so each entry is
// processed by one worker at a time and survives worker crashes.
//
// # Architecture
//
//	┌──────────────┐   Append
//	│ intake API   │──────────────┐
//	└──────────────┘              ▼
//	                   ┌─────────────────────┐
//	                   │  stream lead_events │
//	                   │  (append only)      │
//	                   └──────────┬──────────┘
//	                              │ XREADGROUP
//	              ┌───────────────┴───────────────┐
//	              ▼                               ▼
//	   ┌────────────────────┐          ┌────────────────────┐
//	   │  triage_worker_1   │          │  triage_worker_2   │
//	   │  (group member)    │          │  (group member)    │
//	   └─────────┬──────────┘          └─────────┬──────────┘
//	             │ Ack on success                │
//	             │ ClaimIdle + DeadLetter        │
//	             ▼ on repeated failure           ▼
//	                   ┌─────────────────────┐
//	                   │ stream              │
//	                   │ lead_events:dlq     │
//	                   │ (trimmed, ~1024)    │
//	                   └─────────────────────┘
//
// # Delivery Semantics
//
// Delivery is at least once. An entry read through the group stays
// in the group's pending list until acknowledged; a worker that
// crashes mid-triage leaves the entry pending, and another worker
// reclaims it once it has been idle past the configured threshold.
// Consumers must therefore be idempotent. The triage worker gets
// this from the (lead_id, content_hash) unique constraint in
// storage, so a redelivered entry converges on the same single
// insight row.
//
// Acknowledgement is deliberately only sent after the insight is
// persisted (or known to be persisted already). Failing before the
// ack loses nothing; failing after the ack is impossible to observe
// because persistence already happened.
//
// # Dead Lettering
//
// Entries that keep failing would otherwise be redelivered forever
// and wedge the group. When a reclaimed entry has been delivered
// more than MaxDeliveries times, the worker copies it to the dead
// letter stream with the failure reason and original entry ID, then
// acknowledges the original so the group moves on. The dead letter
// stream is capped with approximate trimming; it is an operator
// inbox, not a second queue.
//
// # Core Components
//
// Log: the stream client. Append on the producer side; EnsureGroup,
// Read, Ack, ClaimIdle, DeliveryCounts, and DeadLetter on the
// consumer side.
//
// Message: one delivered entry, a flat map of string fields plus the
// stream entry ID used for acknowledgement.
//
// LeadCreatedEvent: the typed payload for lead.created entries, with
// ToFields and LeadCreatedFromFields converting to and from stream
// fields. Parsing failures are permanent: a malformed entry cannot
// be repaired by redelivery and goes to the dead letter stream.
//
// # Usage
//
// Producer side:
//
//	log := events.NewLog(client, events.Config{
//		Stream: cfg.Stream,
//		Group:  cfg.ConsumerGroup,
//	})
//
//	event := events.NewLeadCreatedEvent(lead.ID, lead.Note, hash)
//	if _, err := log.Append(ctx, event.ToFields()); err != nil {
//		// lead row is already committed; surface the error
//	}
//
// Consumer side:
//
//	if err := log.EnsureGroup(ctx); err != nil {
//		return err
//	}
//	for {
//		msgs, err := log.Read(ctx, consumer)
//		if err != nil {
//			// back off and retry
//		}
//		for _, msg := range msgs {
//			if err := handle(ctx, msg); err == nil {
//				log.Ack(ctx, msg.ID)
//			}
//		}
//	}
//
// # Integration Points
//
//   - pkg/api: appends lead.created after the lead commits
//   - pkg/worker: the consumer loop, reclaim, and dead lettering
//   - pkg/metrics: PendingCount feeds the backlog gauge
//   - pkg/health: stream liveness for readiness probes
//
// # Troubleshooting
//
// Growing pending count: a worker is reading but not acking. Check
// worker logs for classification or storage failures; entries past
// the delivery bound will drain to the dead letter stream.
//
// Entries in the dead letter stream: each carries the original
// fields, the original entry ID, and the last error. After fixing
// the cause, re-append the fields to the main stream to replay.
package events
