// Package idempotency makes lead intake safe to retry by remembering
// request outcomes in Redis, keyed by a client supplied token.
//
// Clients send an Idempotency-Key header (a UUID they generate) with
// POST /leads. The first request executes normally and its outcome is
// recorded under the token for 24 hours. A retry with the same token
// and the same canonical body gets the recorded response back with
// status 200 instead of creating a second lead. The same token with a
// different body is rejected with 409, because the client is reusing
// a token rather than retrying.
//
// # Request Flow
//
//	POST /leads + Idempotency-Key
//	        │
//	        ▼
//	  Check(token) ──── hit, same body ───▶ replay recorded response (200)
//	        │    └───── hit, body differs ─▶ 409 conflict
//	     miss
//	        ▼
//	  create lead, publish event
//	        ▼
//	  Store(token, outcome)
//	        ▼
//	  201 with lead body
//
// Bodies are compared in canonical form (decoded and re-encoded with
// a fixed field order), so differences in key order or whitespace do
// not defeat replay detection.
//
// # Failure Policy
//
// The cache is an optimization layer, not the correctness line. A
// Redis read error is treated by callers as a miss; a write error
// after a successful create is logged and the success still returned.
// In both degraded cases a retry is processed as a new submission and
// may create a second lead row. The insight side still converges
// through the store's unique constraint; the extra lead is the
// accepted cost of the degraded path.
//
// The record is stored only after the lead commits and the event is
// published, so the cache never claims an outcome that did not
// happen. The price is a small window: a crash between commit and
// Store leaves the token unrecorded, and the retry runs as a fresh
// submission.
//
// # Usage
//
//	cache := idempotency.NewCache(client)
//
//	rec, err := cache.Check(ctx, token)
//	if err != nil {
//		log.Warn("idempotency check degraded", err)
//		rec = nil
//	}
//	if rec != nil {
//		// compare canonical bodies, replay or conflict
//	}
//
// # Integration Points
//
//   - pkg/api: the POST /leads handler is the only consumer
//   - pkg/types: Canonical produces the compared request form
package idempotency
