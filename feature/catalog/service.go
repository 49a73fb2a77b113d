package catalog

import (
	"context"
	"fmt"

	"catalog-sync/core/config"
	"catalog-sync/core/retry"
	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service wires the catalog sync engine: store list, clients, mapping and
// event stores, and the runner. It is the single entry point for the CLI
// and the admin server.
type Service struct {
	db       *gorm.DB
	stores   []config.Store
	mappings *MappingStore
	events   *EventStore
	runner   *Runner
	logger   *zap.Logger
}

// NewService creates the sync service. archive may be nil to disable report
// archival.
func NewService(db *gorm.DB, stores []config.Store, source SourceClient, targets map[string]TargetClient, archive storage.Client, bucket string, retryCfg retry.Config, syncCfg config.Sync, logger *zap.Logger) *Service {
	mappings := NewMappingStore(db, logger)
	events := NewEventStore(db)
	return &Service{
		db:       db,
		stores:   stores,
		mappings: mappings,
		events:   events,
		runner:   NewRunner(stores, source, targets, mappings, events, archive, bucket, retryCfg, syncCfg, logger),
		logger:   logger,
	}
}

// Migrate creates or updates the engine-owned tables.
func (s *Service) Migrate() error {
	if err := s.db.AutoMigrate(&models.ProductMapping{}, &models.SyncEvent{}); err != nil {
		return fmt.Errorf("migrate engine tables: %w", err)
	}
	return nil
}

// Run executes one sync of the given type. An empty storeIDs selects every
// enabled store.
func (s *Service) Run(ctx context.Context, syncType string, storeIDs []string) (*models.SyncOutcome, error) {
	switch syncType {
	case SyncTypeProducts:
		return s.runner.RunProducts(ctx, storeIDs)
	case SyncTypePrices:
		return s.runner.RunPrices(ctx, storeIDs)
	default:
		return nil, fmt.Errorf("unknown sync type %q", syncType)
	}
}

// RecentEvents returns the latest sync events, newest first.
func (s *Service) RecentEvents(limit int) ([]models.SyncEvent, error) {
	return s.events.Recent(limit)
}

// Mappings returns every mapping recorded for one item code in one store.
func (s *Service) Mappings(storeID, code string) ([]models.ProductMapping, error) {
	var rows []models.ProductMapping
	err := s.db.
		Where("source_code = ? AND store_id = ?", code, storeID).
		Order("target_type").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list mappings for %s/%s: %w", storeID, code, err)
	}
	return rows, nil
}
