package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftlabs/sift/pkg/events"
	"github.com/siftlabs/sift/pkg/idempotency"
	"github.com/siftlabs/sift/pkg/storage"
	"github.com/siftlabs/sift/pkg/types"
)

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	mu       sync.Mutex
	leads    map[uuid.UUID]*types.Lead
	insights map[uuid.UUID]*types.Insight
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:    make(map[uuid.UUID]*types.Lead),
		insights: make(map[uuid.UUID]*types.Insight),
	}
}

func (s *fakeStore) CreateLead(ctx context.Context, lead *types.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[lead.ID] = lead
	return nil
}

func (s *fakeStore) GetLead(ctx context.Context, id uuid.UUID) (*types.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[id]
	if !ok {
		return nil, storage.ErrLeadNotFound
	}
	return lead, nil
}

func (s *fakeStore) CreateInsight(ctx context.Context, insight *types.Insight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.insights[insight.LeadID]; ok && existing.ContentHash == insight.ContentHash {
		return storage.ErrDuplicateInsight
	}
	s.insights[insight.LeadID] = insight
	return nil
}

func (s *fakeStore) GetInsightByLead(ctx context.Context, leadID uuid.UUID) (*types.Insight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	insight, ok := s.insights[leadID]
	if !ok {
		return nil, storage.ErrInsightNotFound
	}
	return insight, nil
}

func (s *fakeStore) InsightExists(ctx context.Context, leadID uuid.UUID, contentHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	insight, ok := s.insights[leadID]
	return ok && insight.ContentHash == contentHash, nil
}

func (s *fakeStore) Ping(ctx context.Context) error { return nil }
func (s *fakeStore) Close() error                   { return nil }

func (s *fakeStore) leadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leads)
}

func newTestIntake(t *testing.T) (*chi.Mux, *fakeStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	eventLog := events.NewLog(client, events.Config{
		Stream:           "lead_events",
		Group:            "triage_group",
		DeadLetterStream: "lead_events:dlq",
		BatchSize:        10,
		BlockTime:        20 * time.Millisecond,
	})

	store := newFakeStore()
	r := NewRouter("intake")
	NewIntake(store, eventLog, idempotency.NewCache(client)).Register(r)

	return r, store, mr
}

func postLead(t *testing.T, r http.Handler, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Idempotency-Key", token)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateLead(t *testing.T) {
	r, store, mr := newTestIntake(t)

	rec := postLead(t, r, `{"email":"jane@example.com","note":"Need pricing","source":"landing"}`, uuid.New().String())
	require.Equal(t, http.StatusCreated, rec.Code)

	var got types.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, "Need pricing", got.Note)
	require.NotNil(t, got.Email)
	assert.Equal(t, "jane@example.com", *got.Email)
	assert.False(t, got.CreatedAt.IsZero())

	assert.Equal(t, 1, store.leadCount())

	entries, err := mr.Stream("lead_events")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	fields := streamFields(entries[0].Values)
	assert.Equal(t, "lead.created", fields["type"])
	assert.Equal(t, got.ID.String(), fields["lead_id"])
	assert.Equal(t, "Need pricing", fields["note"])
	assert.Equal(t, types.HashNote("Need pricing"), fields["content_hash"])

	_, err = uuid.Parse(fields["event_id"])
	assert.NoError(t, err, "event_id must be a uuid")
}

func TestCreateLeadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed JSON", `{"note": `, http.StatusUnprocessableEntity},
		{"missing note", `{"email":"jane@example.com"}`, http.StatusUnprocessableEntity},
		{"empty note", `{"note":""}`, http.StatusUnprocessableEntity},
		{"invalid email", `{"email":"not-an-email","note":"hi"}`, http.StatusUnprocessableEntity},
		{"unknown fields ignored", `{"note":"hi","campaign":"q3"}`, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestIntake(t)

			rec := postLead(t, r, tt.body, uuid.New().String())
			assert.Equal(t, tt.want, rec.Code)

			if tt.want != http.StatusCreated {
				var body struct {
					Detail string `json:"detail"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.NotEmpty(t, body.Detail)
			}
		})
	}
}

func TestCreateLeadReplay(t *testing.T) {
	r, store, mr := newTestIntake(t)
	token := uuid.New().String()

	first := postLead(t, r, `{"email":"jane@example.com","note":"Need pricing"}`, token)
	require.Equal(t, http.StatusCreated, first.Code)

	// Same payload with reordered keys is still the same request.
	second := postLead(t, r, `{"note":"Need pricing","email":"jane@example.com"}`, token)
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	assert.Equal(t, 1, store.leadCount())

	entries, err := mr.Stream("lead_events")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCreateLeadTokenReuseConflict(t *testing.T) {
	r, store, _ := newTestIntake(t)
	token := uuid.New().String()

	first := postLead(t, r, `{"note":"Need pricing"}`, token)
	require.Equal(t, http.StatusCreated, first.Code)

	second := postLead(t, r, `{"note":"Different note entirely"}`, token)
	require.Equal(t, http.StatusConflict, second.Code)

	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Contains(t, body.Detail, "Idempotency-Key")

	assert.Equal(t, 1, store.leadCount())
}

func TestCreateLeadInvalidToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"malformed token", "not-a-uuid"},
		{"missing header", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store, _ := newTestIntake(t)

			rec := postLead(t, r, `{"note":"hi"}`, tt.token)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, 0, store.leadCount())
		})
	}
}

func TestCreateLeadDegradedCacheFallsThrough(t *testing.T) {
	r, store, mr := newTestIntake(t)
	token := uuid.New().String()

	first := postLead(t, r, `{"note":"hi"}`, token)
	require.Equal(t, http.StatusCreated, first.Code)

	// A corrupt record makes the lookup fail; intake must proceed
	// as a fresh request rather than erroring out.
	mr.Set("idempotency:"+token, "not json")

	second := postLead(t, r, `{"note":"hi"}`, token)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, 2, store.leadCount())
}

func TestGetLead(t *testing.T) {
	r, store, _ := newTestIntake(t)

	lead := types.NewLead(types.LeadPayload{Note: "hello"})
	require.NoError(t, store.CreateLead(context.Background(), lead))

	req := httptest.NewRequest(http.MethodGet, "/leads/"+lead.ID.String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got types.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, lead.ID, got.ID)
}

func TestGetLeadNotFound(t *testing.T) {
	r, _, _ := newTestIntake(t)

	req := httptest.NewRequest(http.MethodGet, "/leads/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLeadInvalidID(t *testing.T) {
	r, _, _ := newTestIntake(t)

	req := httptest.NewRequest(http.MethodGet, "/leads/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func streamFields(values []string) map[string]string {
	fields := make(map[string]string, len(values)/2)
	for i := 0; i+1 < len(values); i += 2 {
		fields[values[i]] = values[i+1]
	}
	return fields
}
