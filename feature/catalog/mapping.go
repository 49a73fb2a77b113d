package catalog

import (
	"errors"
	"fmt"

	"catalog-sync/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MappingStore persists the (sourceCode, storeID, targetType) → targetID
// correspondence that makes reruns idempotent. It is the only state shared
// across store workers; upserts are single atomic check-then-writes per key,
// and cross-worker contention on one key is impossible by construction
// because storeID is part of the key and stores never share source codes.
type MappingStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewMappingStore creates a mapping store over the engine database.
func NewMappingStore(db *gorm.DB, log *zap.Logger) *MappingStore {
	return &MappingStore{db: db, log: log}
}

// Lookup returns the target ID recorded for a key, or ok=false when no
// mapping exists.
func (s *MappingStore) Lookup(sourceCode, storeID string, targetType models.TargetType) (string, bool, error) {
	var m models.ProductMapping
	err := s.db.
		Where("source_code = ? AND store_id = ? AND target_type = ?", sourceCode, storeID, targetType).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("mapping lookup for %s/%s/%s: %w", sourceCode, storeID, targetType, err)
	}
	return m.TargetID, true, nil
}

// Upsert records a mapping. Re-upserting an existing identical triple is a
// no-op, not an error; a changed target ID overwrites the old one. The
// write rides on the composite unique index so two concurrent upserts of
// the same key cannot produce divergent rows.
func (s *MappingStore) Upsert(sourceCode, storeID string, targetType models.TargetType, targetID string) error {
	m := models.ProductMapping{
		SourceCode: sourceCode,
		StoreID:    storeID,
		TargetType: targetType,
		TargetID:   targetID,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_code"}, {Name: "store_id"}, {Name: "target_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"target_id"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("mapping upsert for %s/%s/%s: %w", sourceCode, storeID, targetType, err)
	}
	return nil
}

// RecordGroup persists all mappings a reconciled group produced: the parent,
// every created or confirmed child, and each child's inventory unit.
//
// A persist failure after a successful remote create is a recoverable
// inconsistency: the remote entity exists and must not be rolled back, so
// the failure is logged and the next run repairs the mapping through the
// natural-key lookup path.
func (s *MappingStore) RecordGroup(group *models.Group, result *models.GroupResult) {
	upsert := func(code string, tt models.TargetType, id string) {
		if id == "" {
			return
		}
		if err := s.Upsert(code, group.StoreID, tt, id); err != nil {
			s.log.Warn("Mapping persist failed; next run repairs via natural-key lookup",
				zap.String("code", code),
				zap.String("store", group.StoreID),
				zap.String("target_type", string(tt)),
				zap.Error(err))
		}
	}

	if result.ParentID != "" {
		upsert(group.Key(), models.TargetParent, result.ParentID)
	}
	for code, v := range result.Created {
		upsert(code, models.TargetChild, v.ID)
		upsert(code, models.TargetInventoryUnit, v.InventoryItemID)
	}
	for code, v := range result.Known {
		upsert(code, models.TargetChild, v.ID)
		upsert(code, models.TargetInventoryUnit, v.InventoryItemID)
	}
}
