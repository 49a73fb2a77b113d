package catalog

import (
	"testing"
	"time"

	"catalog-sync/feature/catalog/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventStore_Record(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewEventStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sync_events`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	outcome := &models.SyncOutcome{
		SyncType:  SyncTypeProducts,
		RunID:     "run-1",
		Processed: 3,
		Succeeded: 2,
		Failed:    1,
		Errors:    []models.ErrorDetail{{StoreID: "kw", GroupKey: "PA", Message: "boom"}},
		StartedAt: time.Now().UTC(),
		Duration:  2 * time.Second,
	}

	err := store.Record(outcome)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventStore_Recent(t *testing.T) {
	db, mock := setupMockDB(t)
	store := NewEventStore(db)

	rows := sqlmock.NewRows([]string{"id", "run_id", "sync_type", "processed", "succeeded", "failed", "errors", "started_at", "duration_ms"}).
		AddRow(2, "run-2", "prices", 5, 5, 0, "", time.Now(), 1200).
		AddRow(1, "run-1", "products", 3, 2, 1, `[{"store_id":"kw","message":"boom"}]`, time.Now(), 900)
	mock.ExpectQuery("SELECT \\* FROM `sync_events`").WillReturnRows(rows)

	events, err := store.Recent(10)
	require.NoError(t, err)
	if assert.Len(t, events, 2) {
		assert.Equal(t, "run-2", events[0].RunID)
	}
}
