package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver
	"github.com/jmoiron/sqlx"

	"github.com/siftlabs/sift/pkg/types"
)

// uniqueViolation is the PostgreSQL error code for a unique
// constraint conflict.
const uniqueViolation = "23505"

// PostgresStore implements Store on PostgreSQL via sqlx.
type PostgresStore struct {
	db *sqlx.DB
}

// Open connects to PostgreSQL using the given DSN. The connection is
// not verified here; call Ping to check liveness.
func Open(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wraps an existing database handle. Tests use this
// with a mock driver.
func NewPostgresStore(db *sql.DB, driverName string) *PostgresStore {
	return &PostgresStore{db: sqlx.NewDb(db, driverName)}
}

// CreateLead inserts a new lead row.
func (s *PostgresStore) CreateLead(ctx context.Context, lead *types.Lead) error {
	const q = `
		INSERT INTO leads (id, email, phone, name, note, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, q,
		lead.ID, lead.Email, lead.Phone, lead.Name, lead.Note, lead.Source, lead.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert lead %s: %w", lead.ID, err)
	}
	return nil
}

// GetLead fetches a lead by ID. Returns ErrLeadNotFound if no row
// exists.
func (s *PostgresStore) GetLead(ctx context.Context, id uuid.UUID) (*types.Lead, error) {
	const q = `
		SELECT id, email, phone, name, note, source, created_at
		FROM leads
		WHERE id = $1`

	var lead types.Lead
	if err := s.db.GetContext(ctx, &lead, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead %s: %w", id, err)
	}
	return &lead, nil
}

// CreateInsight inserts an insight row. The insights table carries a
// unique constraint on (lead_id, content_hash); a conflict on it maps
// to ErrDuplicateInsight so callers can treat the replay as done.
func (s *PostgresStore) CreateInsight(ctx context.Context, insight *types.Insight) error {
	const q = `
		INSERT INTO insights (id, lead_id, content_hash, intent, priority, next_action, confidence, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.ExecContext(ctx, q,
		insight.ID, insight.LeadID, insight.ContentHash,
		insight.Intent, insight.Priority, insight.NextAction,
		insight.Confidence, insight.Tags, insight.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateInsight
		}
		return fmt.Errorf("failed to insert insight for lead %s: %w", insight.LeadID, err)
	}
	return nil
}

// GetInsightByLead returns the earliest insight recorded for a lead.
// Returns ErrInsightNotFound if the lead has not been classified yet.
func (s *PostgresStore) GetInsightByLead(ctx context.Context, leadID uuid.UUID) (*types.Insight, error) {
	const q = `
		SELECT id, lead_id, content_hash, intent, priority, next_action, confidence, tags, created_at
		FROM insights
		WHERE lead_id = $1
		ORDER BY created_at ASC
		LIMIT 1`

	var insight types.Insight
	if err := s.db.GetContext(ctx, &insight, q, leadID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInsightNotFound
		}
		return nil, fmt.Errorf("failed to get insight for lead %s: %w", leadID, err)
	}
	return &insight, nil
}

// InsightExists reports whether an insight for the given lead and
// note content is already persisted. The check is a fast path only;
// the unique constraint remains the arbiter under concurrency.
func (s *PostgresStore) InsightExists(ctx context.Context, leadID uuid.UUID, contentHash string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM insights WHERE lead_id = $1 AND content_hash = $2
		)`

	var exists bool
	if err := s.db.GetContext(ctx, &exists, q, leadID, contentHash); err != nil {
		return false, fmt.Errorf("failed to check insight existence for lead %s: %w", leadID, err)
	}
	return exists, nil
}

// Ping verifies the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping postgres: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
