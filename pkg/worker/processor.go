package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/siftlabs/sift/pkg/classifier"
	"github.com/siftlabs/sift/pkg/events"
	"github.com/siftlabs/sift/pkg/log"
	"github.com/siftlabs/sift/pkg/metrics"
	"github.com/siftlabs/sift/pkg/storage"
	"github.com/siftlabs/sift/pkg/types"
)

// ErrPermanent marks failures that redelivery cannot fix, such as an
// entry that does not decode. The pool dead letters these
// immediately instead of retrying them to the delivery bound.
var ErrPermanent = errors.New("permanent failure")

// Processor turns one stream entry into a persisted insight.
type Processor struct {
	store      storage.Store
	classifier classifier.Classifier
	logger     zerolog.Logger
}

// NewProcessor wires a processor over its dependencies.
func NewProcessor(store storage.Store, c classifier.Classifier) *Processor {
	return &Processor{
		store:      store,
		classifier: c,
		logger:     log.WithComponent("processor"),
	}
}

// Process handles a single entry. A nil return means the insight is
// persisted or was already persisted by an earlier delivery; both
// are safe to acknowledge. Errors wrapping ErrPermanent must be dead
// lettered; all other errors are transient and the entry stays
// pending for redelivery.
func (p *Processor) Process(ctx context.Context, msg events.Message) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.TriageDuration)

	event, err := events.LeadCreatedFromFields(msg.Fields)
	if err != nil {
		metrics.TriageFailuresTotal.WithLabelValues("decode").Inc()
		return fmt.Errorf("%w: %s", ErrPermanent, err)
	}

	logger := p.logger.With().Str("lead_id", event.LeadID.String()).Logger()

	exists, err := p.store.InsightExists(ctx, event.LeadID, event.ContentHash)
	if err != nil {
		metrics.TriageFailuresTotal.WithLabelValues("storage").Inc()
		return fmt.Errorf("failed to check existing insight: %w", err)
	}
	if exists {
		metrics.DuplicateInsightsTotal.Inc()
		logger.Debug().Msg("insight already exists, skipping")
		return nil
	}

	classification, err := p.classifier.Triage(ctx, event.Note)
	if err != nil {
		metrics.TriageFailuresTotal.WithLabelValues("classify").Inc()
		return fmt.Errorf("failed to classify note: %w", err)
	}
	if err := classification.Validate(); err != nil {
		metrics.TriageFailuresTotal.WithLabelValues("classify").Inc()
		return fmt.Errorf("%w: classifier %s produced invalid result: %s", ErrPermanent, p.classifier.Name(), err)
	}

	insight := types.NewInsight(event.LeadID, event.ContentHash, classification)
	if err := p.store.CreateInsight(ctx, insight); err != nil {
		if errors.Is(err, storage.ErrDuplicateInsight) {
			// Another delivery won the race; the insight exists.
			metrics.DuplicateInsightsTotal.Inc()
			logger.Debug().Msg("insight created concurrently, skipping")
			return nil
		}
		metrics.TriageFailuresTotal.WithLabelValues("storage").Inc()
		return fmt.Errorf("failed to persist insight: %w", err)
	}

	metrics.InsightsCreatedTotal.WithLabelValues(string(insight.Intent)).Inc()
	logger.Info().
		Str("intent", string(insight.Intent)).
		Str("priority", string(insight.Priority)).
		Str("next_action", string(insight.NextAction)).
		Float64("confidence", insight.Confidence).
		Msg("insight created")
	return nil
}
