package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/siftlabs/sift/pkg/types"
)

// Sentinel errors returned by Store implementations. Callers branch on
// these with errors.Is; everything else is a transient store failure.
var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrInsightNotFound = errors.New("insight not found")

	// ErrDuplicateInsight reports that the (lead_id, content_hash)
	// unique constraint rejected an insert. Workers treat it as
	// success: a concurrent worker already classified this note.
	ErrDuplicateInsight = errors.New("duplicate insight")
)

// Store defines the interface for lead and insight persistence
type Store interface {
	// Leads
	CreateLead(ctx context.Context, lead *types.Lead) error
	GetLead(ctx context.Context, id uuid.UUID) (*types.Lead, error)

	// Insights
	CreateInsight(ctx context.Context, insight *types.Insight) error
	GetInsightByLead(ctx context.Context, leadID uuid.UUID) (*types.Insight, error)
	InsightExists(ctx context.Context, leadID uuid.UUID, contentHash string) (bool, error)

	// Utility
	Ping(ctx context.Context) error
	Close() error
}
