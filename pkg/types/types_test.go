package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumValidity(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
		check func() bool
	}{
		{"intent buy", true, IntentBuy.Valid},
		{"intent other", true, IntentOther.Valid},
		{"intent unknown", false, Intent("resell").Valid},
		{"intent empty", false, Intent("").Valid},
		{"priority P0", true, PriorityP0.Valid},
		{"priority P3", true, PriorityP3.Valid},
		{"priority lowercase", false, Priority("p1").Valid},
		{"action call", true, ActionCall.Valid},
		{"action qualify", true, ActionQualify.Valid},
		{"action unknown", false, NextAction("escalate").Valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.check())
		})
	}
}

func TestClassificationValidate(t *testing.T) {
	good := Classification{
		Intent:     IntentBuy,
		Priority:   PriorityP1,
		NextAction: ActionEmail,
		Confidence: 0.7,
	}
	require.NoError(t, good.Validate())

	tests := []struct {
		name   string
		mutate func(*Classification)
	}{
		{"bad intent", func(c *Classification) { c.Intent = "upsell" }},
		{"bad priority", func(c *Classification) { c.Priority = "P9" }},
		{"bad action", func(c *Classification) { c.NextAction = "fax" }},
		{"confidence below range", func(c *Classification) { c.Confidence = -0.1 }},
		{"confidence above range", func(c *Classification) { c.Confidence = 1.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := good
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestTagsScanValue(t *testing.T) {
	tags := Tags{"urgent", "enterprise"}

	v, err := tags.Value()
	require.NoError(t, err)
	require.IsType(t, []byte(nil), v)

	var got Tags
	require.NoError(t, got.Scan(v))
	assert.Equal(t, tags, got)

	// nil slice round-trips through SQL NULL
	var none Tags
	v, err = none.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var scanned Tags
	require.NoError(t, scanned.Scan(nil))
	assert.Nil(t, scanned)

	// jsonb can come back as a string depending on the driver
	var fromString Tags
	require.NoError(t, fromString.Scan(`["trial"]`))
	assert.Equal(t, Tags{"trial"}, fromString)

	assert.Error(t, fromString.Scan(42))
}

func TestCanonicalFieldOrder(t *testing.T) {
	email := "jane@example.com"
	source := "landing"
	p := LeadPayload{
		Email:  &email,
		Note:   "Need pricing",
		Source: &source,
	}

	got, err := p.Canonical()
	require.NoError(t, err)
	assert.Equal(t,
		`{"email":"jane@example.com","note":"Need pricing","source":"landing"}`,
		string(got))

	// absent optional fields are omitted entirely
	bare := LeadPayload{Note: "hi"}
	got, err = bare.Canonical()
	require.NoError(t, err)
	assert.Equal(t, `{"note":"hi"}`, string(got))
}

func TestCanonicalIgnoresClientFormatting(t *testing.T) {
	decode := func(raw string) LeadPayload {
		var p LeadPayload
		require.NoError(t, json.Unmarshal([]byte(raw), &p))
		return p
	}

	a := decode(`{"note":"demo please","email":"a@b.co"}`)
	b := decode(`{
		"email": "a@b.co",
		"note":  "demo please",
		"extra": "ignored"
	}`)

	ca, err := a.Canonical()
	require.NoError(t, err)
	cb, err := b.Canonical()
	require.NoError(t, err)
	assert.Equal(t, ca, cb)
}

func TestHashNote(t *testing.T) {
	// Known SHA-256 vector
	assert.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		HashNote("hello"))
	assert.Len(t, HashNote(""), 64)
	assert.NotEqual(t, HashNote("a"), HashNote("b"))
}

func TestNewLeadAndInsight(t *testing.T) {
	p := LeadPayload{Note: "interested in a trial"}
	lead := NewLead(p)

	require.NotNil(t, lead)
	assert.NotEqual(t, lead.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, p.Note, lead.Note)
	assert.Nil(t, lead.Email)
	assert.False(t, lead.CreatedAt.IsZero())
	assert.Equal(t, lead.CreatedAt.UTC(), lead.CreatedAt)

	c := Classification{Intent: IntentOther, Priority: PriorityP2, NextAction: ActionQualify, Confidence: 0.3}
	ins := NewInsight(lead.ID, HashNote(lead.Note), c)
	assert.Equal(t, lead.ID, ins.LeadID)
	assert.Equal(t, HashNote(lead.Note), ins.ContentHash)
	assert.NotEqual(t, ins.ID, lead.ID)
}
