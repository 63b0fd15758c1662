package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/siftlabs/sift/pkg/events"
	"github.com/siftlabs/sift/pkg/idempotency"
	"github.com/siftlabs/sift/pkg/log"
	"github.com/siftlabs/sift/pkg/metrics"
	"github.com/siftlabs/sift/pkg/storage"
	"github.com/siftlabs/sift/pkg/types"
)

// maxBodyBytes caps lead submissions.
const maxBodyBytes = 1 << 20

// Intake handles lead submission and lookup.
type Intake struct {
	store    storage.Store
	events   *events.Log
	idem     *idempotency.Cache
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewIntake wires the intake handlers over their dependencies.
func NewIntake(store storage.Store, eventLog *events.Log, idem *idempotency.Cache) *Intake {
	return &Intake{
		store:    store,
		events:   eventLog,
		idem:     idem,
		validate: validator.New(),
		logger:   log.WithComponent("intake"),
	}
}

// Register mounts the intake routes.
func (h *Intake) Register(r chi.Router) {
	r.Route("/leads", func(r chi.Router) {
		r.Post("/", h.createLead)
		r.Get("/{leadID}", h.getLead)
	})
}

// createLead accepts a lead, persists it, publishes lead.created,
// and records the outcome under the client's idempotency token. The
// order matters: the lead commits before the event is published, and
// the token is recorded only after both succeeded, so a cached
// response always describes work that actually happened.
func (h *Intake) createLead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "failed to read request body")
		return
	}

	var payload types.LeadPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	if err := h.validate.Struct(&payload); err != nil {
		respondError(w, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}

	// The header is required; a missing token parses as invalid.
	token := r.Header.Get("Idempotency-Key")
	if _, err := uuid.Parse(token); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "Idempotency-Key must be a valid UUID")
		return
	}

	canonical, err := payload.Canonical()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to canonicalize payload")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.replayOrConflict(ctx, w, token, canonical) {
		return
	}

	lead := types.NewLead(payload)
	if err := h.store.CreateLead(ctx, lead); err != nil {
		h.logger.Error().Err(err).Str("lead_id", lead.ID.String()).Msg("failed to store lead")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	metrics.LeadsCreatedTotal.Inc()

	event := events.NewLeadCreatedEvent(lead.ID, lead.Note, types.HashNote(lead.Note))
	if _, err := h.events.Append(ctx, event.ToFields()); err != nil {
		// The lead row is committed but will never be triaged
		// without the event. Fail the request so the client
		// retries; the token stays unrecorded.
		h.logger.Error().Err(err).Str("lead_id", lead.ID.String()).Msg("failed to publish lead.created")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	metrics.EventsPublishedTotal.Inc()

	response, err := json.Marshal(lead)
	if err != nil {
		h.logger.Error().Err(err).Str("lead_id", lead.ID.String()).Msg("failed to encode lead")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	rec := idempotency.Record{
		StatusCode: http.StatusCreated,
		Response:   response,
		Request:    canonical,
	}
	if err := h.idem.Store(ctx, token, rec); err != nil {
		// The lead and event both exist, so the submission succeeded;
		// the only cost of a lost record is a cache miss on replay.
		h.logger.Warn().Err(err).Str("lead_id", lead.ID.String()).Msg("failed to store idempotency record")
	}

	h.logger.Info().
		Str("lead_id", lead.ID.String()).
		Str("content_hash", event.ContentHash).
		Msg("lead created")

	respondJSON(w, http.StatusCreated, json.RawMessage(response))
}

// replayOrConflict answers from the idempotency cache when the token
// is already known. Reports whether a response was written.
func (h *Intake) replayOrConflict(ctx context.Context, w http.ResponseWriter, token string, canonical []byte) bool {
	rec, err := h.idem.Check(ctx, token)
	if err != nil {
		// Degrade to a miss. A duplicate submission slips through
		// to the database rather than intake going down with Redis.
		h.logger.Warn().Err(err).Msg("idempotency check degraded")
		return false
	}
	if rec == nil {
		return false
	}

	if bytes.Equal(rec.Request, canonical) {
		metrics.IdempotencyRepliesTotal.WithLabelValues("replay").Inc()
		respondJSON(w, http.StatusOK, json.RawMessage(rec.Response))
		return true
	}

	metrics.IdempotencyRepliesTotal.WithLabelValues("conflict").Inc()
	respondError(w, http.StatusConflict, "Idempotency-Key already used with a different request body")
	return true
}

func (h *Intake) getLead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "leadID"))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "lead ID must be a valid UUID")
		return
	}

	lead, err := h.store.GetLead(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrLeadNotFound) {
			respondError(w, http.StatusNotFound, "Lead not found")
			return
		}
		h.logger.Error().Err(err).Str("lead_id", id.String()).Msg("failed to get lead")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid lead payload"
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return "validation failed on: " + strings.Join(fields, ", ")
}
