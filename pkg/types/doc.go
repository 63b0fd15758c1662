/*
Package types defines the core data structures used throughout Sift.

This package contains the domain model of the triage pipeline: leads,
insights, the classifier verdict, and the closed enum types they share.
All other packages (storage, events, classifier, api, worker) build on
these types; nothing here touches the network or a store.

# Core Types

Lead:
  - A captured prospect submission with a free-text note
  - Created exactly once by intake, never mutated, never deleted
  - Optional contact fields (email, phone, name, source) use pointers;
    nil means the field was not supplied

Insight:
  - The classifier's structured opinion about one note for one lead
  - (LeadID, ContentHash) is unique in the store; the constraint, not
    application logic, is the idempotency arbiter
  - Tags is an ordered list persisted as JSONB

Classification:
  - A classifier verdict before it is tied to a lead
  - Validate() rejects out-of-range enums and confidence

LeadPayload:
  - The intake request body with validation tags
    (go-playground/validator)
  - Canonical() produces the byte form compared for idempotency

# Enumerations

All enums use typed string constants:

	type Intent string
	const (
	    IntentBuy     Intent = "buy"
	    IntentSupport Intent = "support"
	)

Intent: buy, support, spam, job, other.
Priority: P0 (highest) through P3.
NextAction: call, email, ignore, qualify.

The string values are the wire encoding (JSON) and the store encoding
(varchar columns) at the same time. Valid() methods close the sets;
anything else is rejected before it reaches a row or a response.

# Content Hashing

HashNote returns the lowercase hex SHA-256 of a note's UTF-8 bytes.
The hash is computed once at publish time, carried in the stream entry,
and reused by workers, so intake and workers can never disagree about
a note's fingerprint.

# Canonical Payloads

Idempotency conflict detection compares the canonical serialization of
the accepted payload, not the client's raw bytes:

	a, _ := payloadA.Canonical()
	b, _ := payloadB.Canonical()
	same := bytes.Equal(a, b)

Decoding and re-marshaling fixes field order, drops unknown fields, and
collapses whitespace, so two requests differing only in JSON formatting
are treated as identical.

# Usage

Creating a lead from an accepted payload:

	lead := types.NewLead(payload)

Building an insight from a classifier verdict:

	insight := types.NewInsight(event.LeadID, event.ContentHash, verdict)

# Integration Points

  - pkg/storage: persists Lead and Insight
  - pkg/events: carries LeadID, Note, and ContentHash in stream entries
  - pkg/classifier: returns Classification
  - pkg/api: decodes LeadPayload, serves Lead and Insight representations
  - pkg/worker: turns stream entries into Insight rows
*/
package types
