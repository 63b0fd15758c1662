package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/siftlabs/sift/pkg/log"
	"github.com/siftlabs/sift/pkg/storage"
)

// Insights serves read access to triage results.
type Insights struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewInsights wires the insights handlers.
func NewInsights(store storage.Store) *Insights {
	return &Insights{
		store:  store,
		logger: log.WithComponent("insights"),
	}
}

// Register mounts the insights routes.
func (h *Insights) Register(r chi.Router) {
	r.Get("/leads/{leadID}/insight", h.getInsight)
}

// getInsight returns the triage result for a lead. A 404 means the
// lead either does not exist or has not been classified yet; clients
// poll this endpoint after submission.
func (h *Insights) getInsight(w http.ResponseWriter, r *http.Request) {
	leadID, err := uuid.Parse(chi.URLParam(r, "leadID"))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "lead ID must be a valid UUID")
		return
	}

	insight, err := h.store.GetInsightByLead(r.Context(), leadID)
	if err != nil {
		if errors.Is(err, storage.ErrInsightNotFound) {
			respondError(w, http.StatusNotFound, "Insight not found")
			return
		}
		h.logger.Error().Err(err).Str("lead_id", leadID.String()).Msg("failed to get insight")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, insight)
}
