package catalog

import (
	"encoding/json"
	"fmt"

	"catalog-sync/feature/catalog/models"

	"gorm.io/gorm"
)

// EventStore persists one SyncEvent row per sync run.
type EventStore struct {
	db *gorm.DB
}

// NewEventStore creates an event store over the engine database.
func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db}
}

// Record persists the aggregate outcome of one run.
func (s *EventStore) Record(outcome *models.SyncOutcome) error {
	var details string
	if len(outcome.Errors) > 0 {
		raw, err := json.Marshal(outcome.Errors)
		if err != nil {
			return fmt.Errorf("marshal error details: %w", err)
		}
		details = string(raw)
	}

	event := models.SyncEvent{
		RunID:      outcome.RunID,
		SyncType:   outcome.SyncType,
		Processed:  outcome.Processed,
		Succeeded:  outcome.Succeeded,
		Failed:     outcome.Failed,
		Errors:     details,
		StartedAt:  outcome.StartedAt,
		DurationMS: outcome.Duration.Milliseconds(),
	}
	if err := s.db.Create(&event).Error; err != nil {
		return fmt.Errorf("persist sync event %s: %w", outcome.RunID, err)
	}
	return nil
}

// Recent returns the latest sync events, newest first.
func (s *EventStore) Recent(limit int) ([]models.SyncEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	var events []models.SyncEvent
	err := s.db.Order("id DESC").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list sync events: %w", err)
	}
	return events, nil
}
