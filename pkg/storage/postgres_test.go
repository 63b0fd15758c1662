package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siftlabs/sift/pkg/types"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPostgresStore(db, "sqlmock"), mock
}

func TestCreateLead(t *testing.T) {
	store, mock := newMockStore(t)

	email := "jane@example.com"
	lead := &types.Lead{
		ID:        uuid.New(),
		Email:     &email,
		Note:      "Need pricing for 50 seats",
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO leads").
		WithArgs(lead.ID, lead.Email, lead.Phone, lead.Name, lead.Note, lead.Source, lead.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.CreateLead(context.Background(), lead)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLead(t *testing.T) {
	store, mock := newMockStore(t)

	id := uuid.New()
	created := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "email", "phone", "name", "note", "source", "created_at"}).
		AddRow(id.String(), "jane@example.com", nil, nil, "hello", "landing", created)

	mock.ExpectQuery("SELECT (.+) FROM leads").
		WithArgs(id).
		WillReturnRows(rows)

	lead, err := store.GetLead(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, lead.ID)
	require.NotNil(t, lead.Email)
	assert.Equal(t, "jane@example.com", *lead.Email)
	assert.Nil(t, lead.Phone)
	assert.Equal(t, "hello", lead.Note)
}

func TestGetLeadNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM leads").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "phone", "name", "note", "source", "created_at"}))

	_, err := store.GetLead(context.Background(), id)
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestCreateInsight(t *testing.T) {
	store, mock := newMockStore(t)

	insight := types.NewInsight(uuid.New(), types.HashNote("hello"), types.Classification{
		Intent:     types.IntentBuy,
		Priority:   types.PriorityP1,
		NextAction: types.ActionEmail,
		Confidence: 0.7,
		Tags:       types.Tags{"urgent"},
	})

	mock.ExpectExec("INSERT INTO insights").
		WithArgs(insight.ID, insight.LeadID, insight.ContentHash,
			insight.Intent, insight.Priority, insight.NextAction,
			insight.Confidence, insight.Tags, insight.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.CreateInsight(context.Background(), insight)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInsightDuplicate(t *testing.T) {
	store, mock := newMockStore(t)

	insight := types.NewInsight(uuid.New(), types.HashNote("hello"), types.Classification{
		Intent:     types.IntentOther,
		Priority:   types.PriorityP2,
		NextAction: types.ActionQualify,
		Confidence: 0.3,
	})

	mock.ExpectExec("INSERT INTO insights").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_lead_content"})

	err := store.CreateInsight(context.Background(), insight)
	assert.ErrorIs(t, err, ErrDuplicateInsight)
}

func TestGetInsightByLead(t *testing.T) {
	store, mock := newMockStore(t)

	leadID := uuid.New()
	insightID := uuid.New()
	created := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "lead_id", "content_hash", "intent", "priority",
		"next_action", "confidence", "tags", "created_at",
	}).AddRow(
		insightID.String(), leadID.String(), types.HashNote("hello"),
		"buy", "P0", "call", 0.9, []byte(`["urgent"]`), created,
	)

	mock.ExpectQuery("SELECT (.+) FROM insights").
		WithArgs(leadID).
		WillReturnRows(rows)

	insight, err := store.GetInsightByLead(context.Background(), leadID)
	require.NoError(t, err)
	assert.Equal(t, insightID, insight.ID)
	assert.Equal(t, types.IntentBuy, insight.Intent)
	assert.Equal(t, types.PriorityP0, insight.Priority)
	assert.Equal(t, types.ActionCall, insight.NextAction)
	assert.Equal(t, types.Tags{"urgent"}, insight.Tags)
}

func TestGetInsightByLeadNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	leadID := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM insights").
		WithArgs(leadID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetInsightByLead(context.Background(), leadID)
	assert.ErrorIs(t, err, ErrInsightNotFound)
}

func TestInsightExists(t *testing.T) {
	store, mock := newMockStore(t)

	leadID := uuid.New()
	hash := types.HashNote("hello")

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(leadID, hash).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.InsightExists(context.Background(), leadID, hash)
	require.NoError(t, err)
	assert.True(t, exists)
}
