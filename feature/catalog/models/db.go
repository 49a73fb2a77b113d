package models

import "time"

// TargetType distinguishes what kind of storefront entity a mapping points
// at.
type TargetType string

const (
	// TargetParent maps a group key to a storefront product.
	TargetParent TargetType = "parent"
	// TargetChild maps an item code to a storefront variant.
	TargetChild TargetType = "child"
	// TargetInventoryUnit maps an item code to the variant's inventory
	// item.
	TargetInventoryUnit TargetType = "inventoryUnit"
)

// ProductMapping is the persisted correspondence between a source code and a
// storefront identifier, scoped per store. The composite unique index is
// what makes reruns idempotent: at most one row may exist per
// (source_code, store_id, target_type).
type ProductMapping struct {
	ID         uint       `gorm:"primaryKey" json:"-"`
	SourceCode string     `gorm:"size:64;uniqueIndex:idx_mapping_key,priority:1" json:"source_code"`
	StoreID    string     `gorm:"size:32;uniqueIndex:idx_mapping_key,priority:2" json:"store_id"`
	TargetType TargetType `gorm:"size:16;uniqueIndex:idx_mapping_key,priority:3" json:"target_type"`
	TargetID   string     `gorm:"size:128" json:"target_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TableName overrides the gorm table name.
func (ProductMapping) TableName() string {
	return "product_mappings"
}

// SyncEvent is the aggregate record of one sync run, one row per invocation.
type SyncEvent struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	RunID      string    `gorm:"size:36;index" json:"run_id"`
	SyncType   string    `gorm:"size:16;index" json:"sync_type"`
	Processed  int       `json:"processed"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Errors     string    `gorm:"type:text" json:"errors,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// TableName overrides the gorm table name.
func (SyncEvent) TableName() string {
	return "sync_events"
}
