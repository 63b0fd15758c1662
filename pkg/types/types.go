package types

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Intent classifies what the lead wants from us.
type Intent string

const (
	IntentBuy     Intent = "buy"
	IntentSupport Intent = "support"
	IntentSpam    Intent = "spam"
	IntentJob     Intent = "job"
	IntentOther   Intent = "other"
)

// Valid reports whether the intent is one of the known values.
func (i Intent) Valid() bool {
	switch i {
	case IntentBuy, IntentSupport, IntentSpam, IntentJob, IntentOther:
		return true
	}
	return false
}

// Priority ranks how quickly a lead should be handled (P0 = highest).
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// Valid reports whether the priority is one of the known values.
func (p Priority) Valid() bool {
	switch p {
	case PriorityP0, PriorityP1, PriorityP2, PriorityP3:
		return true
	}
	return false
}

// NextAction is the recommended follow-up for a classified lead.
type NextAction string

const (
	ActionCall    NextAction = "call"
	ActionEmail   NextAction = "email"
	ActionIgnore  NextAction = "ignore"
	ActionQualify NextAction = "qualify"
)

// Valid reports whether the action is one of the known values.
func (a NextAction) Valid() bool {
	switch a {
	case ActionCall, ActionEmail, ActionIgnore, ActionQualify:
		return true
	}
	return false
}

// Tags is an ordered list of classifier tags, stored as JSONB.
type Tags []string

// Value implements driver.Valuer. A nil slice maps to SQL NULL.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner for jsonb and text columns.
func (t *Tags) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("cannot scan %T into Tags", src)
	}
}

// Lead is a captured prospect submission with a free-text note.
// Leads are created exactly once by the intake service and never mutated.
type Lead struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Name      *string   `db:"name" json:"name,omitempty"`
	Note      string    `db:"note" json:"note"`
	Source    *string   `db:"source" json:"source,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LeadPayload is the intake request body. Field order here is the
// canonical serialization order used for idempotency comparison.
type LeadPayload struct {
	Email  *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone  *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Name   *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Note   string  `json:"note" validate:"required"`
	Source *string `json:"source,omitempty" validate:"omitempty,max=100"`
}

// Canonical returns the normalized serialization of the payload: fixed
// field order, optional absent fields omitted, unknown input fields
// already discarded by decoding. Two requests are "the same" for
// idempotency purposes exactly when their canonical forms are equal.
func (p LeadPayload) Canonical() ([]byte, error) {
	return json.Marshal(p)
}

// NewLead builds a Lead from an accepted payload with a fresh identity
// and a server-side UTC timestamp.
func NewLead(p LeadPayload) *Lead {
	return &Lead{
		ID:        uuid.New(),
		Email:     p.Email,
		Phone:     p.Phone,
		Name:      p.Name,
		Note:      p.Note,
		Source:    p.Source,
		CreatedAt: time.Now().UTC(),
	}
}

// Insight is the classifier's structured opinion about one note for one
// lead. At most one insight exists per (lead_id, content_hash); the
// unique constraint in the store enforces it.
type Insight struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	LeadID      uuid.UUID  `db:"lead_id" json:"lead_id"`
	ContentHash string     `db:"content_hash" json:"content_hash"`
	Intent      Intent     `db:"intent" json:"intent"`
	Priority    Priority   `db:"priority" json:"priority"`
	NextAction  NextAction `db:"next_action" json:"next_action"`
	Confidence  float64    `db:"confidence" json:"confidence"`
	Tags        Tags       `db:"tags" json:"tags,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Classification is a classifier verdict for a single note.
type Classification struct {
	Intent     Intent
	Priority   Priority
	NextAction NextAction
	Confidence float64
	Tags       Tags
}

// Validate checks that all enum fields hold known values and confidence
// is within [0, 1].
func (c Classification) Validate() error {
	if !c.Intent.Valid() {
		return fmt.Errorf("invalid intent %q", c.Intent)
	}
	if !c.Priority.Valid() {
		return fmt.Errorf("invalid priority %q", c.Priority)
	}
	if !c.NextAction.Valid() {
		return fmt.Errorf("invalid next action %q", c.NextAction)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range [0,1]", c.Confidence)
	}
	return nil
}

// NewInsight builds an Insight row for a lead note from a classifier
// verdict, with a fresh identity and a server-side UTC timestamp.
func NewInsight(leadID uuid.UUID, contentHash string, c Classification) *Insight {
	return &Insight{
		ID:          uuid.New(),
		LeadID:      leadID,
		ContentHash: contentHash,
		Intent:      c.Intent,
		Priority:    c.Priority,
		NextAction:  c.NextAction,
		Confidence:  c.Confidence,
		Tags:        c.Tags,
		CreatedAt:   time.Now().UTC(),
	}
}

// HashNote returns the lowercase hex SHA-256 of the note's UTF-8 bytes.
// This is the note fingerprint used for insight de-duplication.
func HashNote(note string) string {
	sum := sha256.Sum256([]byte(note))
	return hex.EncodeToString(sum[:])
}
