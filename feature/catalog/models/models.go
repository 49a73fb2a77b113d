package models

import (
	"time"

	"catalog-sync/core/erp"
	"catalog-sync/core/shopify"
)

// Group is the unit of reconciliation: every source item sharing one
// (parentKey, storeID). A group with more than one member is a multi-variant
// product; a single-member group without option values is a simple product.
type Group struct {
	// ParentKey is the grouping key. For items without a parent key the
	// item code doubles as the key and the group has one member.
	ParentKey string

	// StoreID scopes the group to one storefront.
	StoreID string

	// Items are the member source items, in batch order.
	Items []erp.Item
}

// Key returns the mapping key the group's parent entity is recorded under.
func (g *Group) Key() string {
	return g.ParentKey
}

// Representative returns the item whose title, description and flags stand
// in for the whole group.
func (g *Group) Representative() *erp.Item {
	if len(g.Items) == 0 {
		return nil
	}
	return &g.Items[0]
}

// StatusExisting reports whether the group carries the "existing" override:
// the parent is contractually guaranteed to exist and must never be created.
func (g *Group) StatusExisting() bool {
	rep := g.Representative()
	return rep != nil && rep.StatusFlag == erp.StatusExisting
}

// HasOptions reports whether any member carries an option axis value.
func (g *Group) HasOptions() bool {
	for _, item := range g.Items {
		if item.Color != "" {
			return true
		}
	}
	return false
}

// OptionValues returns the distinct option axis values in batch order.
func (g *Group) OptionValues() []string {
	seen := make(map[string]struct{}, len(g.Items))
	var values []string
	for _, item := range g.Items {
		if item.Color == "" {
			continue
		}
		if _, ok := seen[item.Color]; ok {
			continue
		}
		seen[item.Color] = struct{}{}
		values = append(values, item.Color)
	}
	return values
}

// GroupItems partitions a store batch into reconciliation groups, preserving
// the order groups first appear in the batch.
func GroupItems(items []erp.Item) []Group {
	index := make(map[string]int, len(items))
	var groups []Group

	for _, item := range items {
		key := item.ParentKey
		if key == "" {
			key = item.Code
		}

		if i, ok := index[key]; ok {
			groups[i].Items = append(groups[i].Items, item)
			continue
		}

		index[key] = len(groups)
		groups = append(groups, Group{
			ParentKey: key,
			StoreID:   item.StoreID,
			Items:     []erp.Item{item},
		})
	}

	return groups
}

// GroupResult is the per-group outcome of a reconciliation, carrying enough
// identifiers for mapping bookkeeping and source write-back. Created and
// Known can both be populated when a group partially fails: successfully
// created children keep their identifiers even though the group counts as
// failed.
type GroupResult struct {
	// ParentID is the storefront product the group resolved or created.
	ParentID string

	// CreatedParent is set when this run created the parent entity.
	CreatedParent bool

	// Created maps item codes to their newly created variants.
	Created map[string]shopify.Variant

	// Known maps item codes to variants that already existed.
	Known map[string]shopify.Variant
}

// NewGroupResult returns an empty result for one parent.
func NewGroupResult(parentID string) *GroupResult {
	return &GroupResult{
		ParentID: parentID,
		Created:  make(map[string]shopify.Variant),
		Known:    make(map[string]shopify.Variant),
	}
}

// Variant returns the created-or-known variant for an item code.
func (r *GroupResult) Variant(code string) (shopify.Variant, bool) {
	if v, ok := r.Created[code]; ok {
		return v, true
	}
	v, ok := r.Known[code]
	return v, ok
}

// ErrorDetail is one failed group or item within a sync run.
type ErrorDetail struct {
	StoreID  string `json:"store_id"`
	GroupKey string `json:"group_key,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
}

// SyncOutcome is the aggregate result of one sync run. It is write-only
// output for operators: persisted as a SyncEvent row and archived as JSON.
type SyncOutcome struct {
	SyncType  string        `json:"sync_type"`
	RunID     string        `json:"run_id"`
	Processed int           `json:"processed"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Errors    []ErrorDetail `json:"errors"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}
