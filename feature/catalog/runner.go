package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalog-sync/core/config"
	"catalog-sync/core/erp"
	"catalog-sync/core/logger"
	"catalog-sync/core/retry"
	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Sync types, one outcome record per run of each.
const (
	SyncTypeProducts = "products"
	SyncTypePrices   = "prices"
)

// Runner iterates the enabled stores and their source groups, drives the
// executor, aggregates counts, and records one SyncEvent per run. Failures
// never propagate past a group: a run always completes its full pass and
// returns an aggregate outcome, even if every group failed.
type Runner struct {
	stores   []config.Store
	source   SourceClient
	targets  map[string]TargetClient
	mappings *MappingStore
	events   *EventStore
	archive  storage.Client
	bucket   string
	retryCfg retry.Config
	syncCfg  config.Sync
	log      *zap.Logger
}

// NewRunner creates a runner over the configured stores. targets maps store
// IDs to their storefront clients; archive may be nil to disable report
// archival.
func NewRunner(stores []config.Store, source SourceClient, targets map[string]TargetClient, mappings *MappingStore, events *EventStore, archive storage.Client, bucket string, retryCfg retry.Config, syncCfg config.Sync, log *zap.Logger) *Runner {
	return &Runner{
		stores:   stores,
		source:   source,
		targets:  targets,
		mappings: mappings,
		events:   events,
		archive:  archive,
		bucket:   bucket,
		retryCfg: retryCfg,
		syncCfg:  syncCfg,
		log:      log,
	}
}

// RunProducts reconciles new and changed catalog items for the selected
// stores (all enabled stores when storeIDs is empty).
func (r *Runner) RunProducts(ctx context.Context, storeIDs []string) (*models.SyncOutcome, error) {
	outcome := r.newOutcome(SyncTypeProducts)
	l := logger.WithRun(r.log, outcome.RunID, outcome.SyncType)
	l.Info("Sync started")

stores:
	for _, store := range r.selectStores(storeIDs) {
		sl := l.With(zap.String("store", store.ID))

		target, ok := r.targets[store.ID]
		if !ok {
			r.fail(outcome, models.ErrorDetail{StoreID: store.ID, Message: "no storefront client configured"})
			continue
		}

		items, err := r.fetchItems(ctx, sl, store.ID)
		if err != nil {
			r.fail(outcome, models.ErrorDetail{StoreID: store.ID, Message: fmt.Sprintf("fetch items: %v", err)})
			continue
		}
		if len(items) == 0 {
			sl.Info("No pending items")
			continue
		}

		groups := models.GroupItems(items)
		sl.Info("Processing groups", zap.Int("items", len(items)), zap.Int("groups", len(groups)))

		resolver := NewResolver(store, target, r.mappings, r.retryCfg, sl)
		executor := NewExecutor(store, target, r.mappings, resolver, r.retryCfg, sl)

		for i := range groups {
			// Cancellation is honored only between groups so a parent
			// is never left created without its children mapped.
			if ctx.Err() != nil {
				sl.Warn("Run cancelled, stopping before next group", zap.Error(ctx.Err()))
				break stores
			}
			if i > 0 {
				r.groupDelay(ctx)
			}

			group := &groups[i]
			outcome.Processed++

			result, err := executor.Reconcile(ctx, group)
			if err != nil {
				outcome.Failed++
				outcome.Errors = append(outcome.Errors, models.ErrorDetail{
					StoreID:  store.ID,
					GroupKey: group.Key(),
					Message:  err.Error(),
				})
				sl.Error("Group failed", zap.String("group", group.Key()), zap.Error(err))
				continue
			}

			outcome.Succeeded++
			r.confirmGroup(ctx, sl, store, group, result)
		}
	}

	r.finish(ctx, l, outcome)
	return outcome, nil
}

// RunPrices applies price updates for items already known to the target.
func (r *Runner) RunPrices(ctx context.Context, storeIDs []string) (*models.SyncOutcome, error) {
	outcome := r.newOutcome(SyncTypePrices)
	l := logger.WithRun(r.log, outcome.RunID, outcome.SyncType)
	l.Info("Sync started")

stores:
	for _, store := range r.selectStores(storeIDs) {
		sl := l.With(zap.String("store", store.ID))

		target, ok := r.targets[store.ID]
		if !ok {
			r.fail(outcome, models.ErrorDetail{StoreID: store.ID, Message: "no storefront client configured"})
			continue
		}

		items, err := r.fetchItems(ctx, sl, store.ID)
		if err != nil {
			r.fail(outcome, models.ErrorDetail{StoreID: store.ID, Message: fmt.Sprintf("fetch items: %v", err)})
			continue
		}

		resolver := NewResolver(store, target, r.mappings, r.retryCfg, sl)
		executor := NewExecutor(store, target, r.mappings, resolver, r.retryCfg, sl)

		for i := range items {
			if ctx.Err() != nil {
				sl.Warn("Run cancelled, stopping before next item", zap.Error(ctx.Err()))
				break stores
			}
			if i > 0 {
				r.groupDelay(ctx)
			}

			item := items[i]
			outcome.Processed++

			if err := executor.UpdatePrice(ctx, item); err != nil {
				outcome.Failed++
				outcome.Errors = append(outcome.Errors, models.ErrorDetail{
					StoreID: store.ID,
					Code:    item.Code,
					Message: err.Error(),
				})
				sl.Error("Price update failed", zap.String("code", item.Code), zap.Error(err))
				continue
			}

			outcome.Succeeded++
			r.confirmItem(ctx, sl, item.Code, map[string]any{
				"U_SyncPending": "N",
				"U_LastSyncAt":  time.Now().UTC().Format(time.RFC3339),
			})
		}
	}

	r.finish(ctx, l, outcome)
	return outcome, nil
}

func (r *Runner) newOutcome(syncType string) *models.SyncOutcome {
	return &models.SyncOutcome{
		SyncType:  syncType,
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// selectStores returns the enabled stores, filtered to storeIDs when given.
func (r *Runner) selectStores(storeIDs []string) []config.Store {
	wanted := make(map[string]struct{}, len(storeIDs))
	for _, id := range storeIDs {
		wanted[id] = struct{}{}
	}

	var selected []config.Store
	for _, store := range r.stores {
		if !store.Enabled {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[store.ID]; !ok {
				continue
			}
		}
		selected = append(selected, store)
	}
	return selected
}

func (r *Runner) fetchItems(ctx context.Context, l *zap.Logger, storeID string) ([]erp.Item, error) {
	var items []erp.Item
	err := retry.Do(ctx, l, "fetchChangedItems", r.retryCfg, func() error {
		var err error
		items, err = r.source.FetchChangedItems(ctx, storeID)
		return err
	})
	return items, err
}

// confirmGroup writes the reconciliation confirmation back to the source
// system: storefront IDs, the published price, and the sync timestamp.
// Write-back failures are logged, not counted against the group; the remote
// reconciliation already happened and the next run remains idempotent.
func (r *Runner) confirmGroup(ctx context.Context, l *zap.Logger, store config.Store, group *models.Group, result *models.GroupResult) {
	now := time.Now().UTC().Format(time.RFC3339)
	for _, item := range group.Items {
		fields := map[string]any{
			"U_SyncPending": "N",
			"U_LastSyncAt":  now,
		}
		if result.ParentID != "" {
			fields["U_ShopifyProductId"] = result.ParentID
		}
		if v, ok := result.Variant(item.Code); ok {
			fields["U_ShopifyVariantId"] = v.ID
		}
		price, _ := Normalize(item, store, l)
		fields["U_PublishedPrice"] = price

		r.confirmItem(ctx, l, item.Code, fields)
	}
}

func (r *Runner) confirmItem(ctx context.Context, l *zap.Logger, code string, fields map[string]any) {
	err := retry.Do(ctx, l, "writeBack", r.retryCfg, func() error {
		return r.source.WriteBack(ctx, code, fields)
	})
	if err != nil {
		l.Warn("Source write-back failed", zap.String("code", code), zap.Error(err))
	}
}

func (r *Runner) fail(outcome *models.SyncOutcome, detail models.ErrorDetail) {
	outcome.Failed++
	outcome.Errors = append(outcome.Errors, detail)
}

// groupDelay pauses between groups as a courtesy toward storefront rate
// limits. Scheduling policy, not correctness.
func (r *Runner) groupDelay(ctx context.Context) {
	delay := time.Duration(r.syncCfg.GroupDelayMS) * time.Millisecond
	if delay <= 0 {
		return
	}
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}

// finish stamps the duration, persists the SyncEvent row, and archives the
// full report. Both persistence steps are best effort; the outcome is
// returned to the caller regardless.
func (r *Runner) finish(ctx context.Context, l *zap.Logger, outcome *models.SyncOutcome) {
	outcome.Duration = time.Since(outcome.StartedAt)

	l.Info("Sync finished",
		zap.Int("processed", outcome.Processed),
		zap.Int("succeeded", outcome.Succeeded),
		zap.Int("failed", outcome.Failed),
		zap.Duration("duration", outcome.Duration))

	if r.events != nil {
		if err := r.events.Record(outcome); err != nil {
			l.Error("Failed to persist sync event", zap.Error(err))
		}
	}
	r.archiveReport(ctx, l, outcome)
}

func (r *Runner) archiveReport(ctx context.Context, l *zap.Logger, outcome *models.SyncOutcome) {
	if r.archive == nil || r.bucket == "" {
		return
	}

	payload, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		l.Warn("Failed to marshal sync report", zap.Error(err))
		return
	}

	objName := fmt.Sprintf("reports/%s/%s.json", outcome.SyncType, outcome.RunID)
	_, err = r.archive.PutObject(ctx, r.bucket, objName, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		l.Warn("Failed to archive sync report", zap.String("object", objName), zap.Error(err))
		return
	}
	l.Info("Sync report archived", zap.String("object", objName))
}
