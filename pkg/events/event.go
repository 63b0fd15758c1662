package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType identifies the kind of event carried in a stream entry.
type EventType string

// Event types published to the lead event log.
const (
	EventTypeLeadCreated EventType = "lead.created"
)

// Stream field names. Every entry on the log is a flat map of these
// keys; consumers reject entries missing any required field.
const (
	fieldEventID     = "event_id"
	fieldType        = "type"
	fieldLeadID      = "lead_id"
	fieldNote        = "note"
	fieldContentHash = "content_hash"
	fieldOccurredAt  = "occurred_at"
)

// LeadCreatedEvent is the payload appended to the stream when intake
// commits a new lead. It carries the full note so workers never read
// the leads table during triage. EventID identifies the publication,
// not the lead; duplicate publications for one lead carry distinct
// event IDs and converge through the content hash.
type LeadCreatedEvent struct {
	EventID     uuid.UUID `json:"event_id"`
	LeadID      uuid.UUID `json:"lead_id"`
	Note        string    `json:"note"`
	ContentHash string    `json:"content_hash"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NewLeadCreatedEvent builds an event for a freshly committed lead.
func NewLeadCreatedEvent(leadID uuid.UUID, note, contentHash string) LeadCreatedEvent {
	return LeadCreatedEvent{
		EventID:     uuid.New(),
		LeadID:      leadID,
		Note:        note,
		ContentHash: contentHash,
		OccurredAt:  time.Now().UTC(),
	}
}

// ToFields flattens the event into stream entry fields.
func (e LeadCreatedEvent) ToFields() map[string]any {
	return map[string]any{
		fieldEventID:     e.EventID.String(),
		fieldType:        string(EventTypeLeadCreated),
		fieldLeadID:      e.LeadID.String(),
		fieldNote:        e.Note,
		fieldContentHash: e.ContentHash,
		fieldOccurredAt:  e.OccurredAt.Format(time.RFC3339Nano),
	}
}

// LeadCreatedFromFields parses a stream entry back into an event.
// Entries with a wrong type, a malformed lead ID, or missing fields
// are permanent failures; redelivery cannot fix them.
func LeadCreatedFromFields(fields map[string]string) (LeadCreatedEvent, error) {
	var e LeadCreatedEvent

	if got := fields[fieldType]; got != string(EventTypeLeadCreated) {
		return e, fmt.Errorf("unexpected event type %q", got)
	}

	rawEventID, ok := fields[fieldEventID]
	if !ok || rawEventID == "" {
		return e, fmt.Errorf("missing field %q", fieldEventID)
	}
	eventID, err := uuid.Parse(rawEventID)
	if err != nil {
		return e, fmt.Errorf("invalid event_id %q: %w", rawEventID, err)
	}

	rawID, ok := fields[fieldLeadID]
	if !ok || rawID == "" {
		return e, fmt.Errorf("missing field %q", fieldLeadID)
	}
	leadID, err := uuid.Parse(rawID)
	if err != nil {
		return e, fmt.Errorf("invalid lead_id %q: %w", rawID, err)
	}

	note, ok := fields[fieldNote]
	if !ok {
		return e, fmt.Errorf("missing field %q", fieldNote)
	}

	hash, ok := fields[fieldContentHash]
	if !ok || hash == "" {
		return e, fmt.Errorf("missing field %q", fieldContentHash)
	}

	occurredAt := time.Time{}
	if raw := fields[fieldOccurredAt]; raw != "" {
		occurredAt, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return e, fmt.Errorf("invalid occurred_at %q: %w", raw, err)
		}
	}

	e.EventID = eventID
	e.LeadID = leadID
	e.Note = note
	e.ContentHash = hash
	e.OccurredAt = occurredAt
	return e, nil
}
