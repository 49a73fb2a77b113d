package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"catalog-sync/core/config"
	"catalog-sync/core/retry"
	"catalog-sync/core/shopify"
	"catalog-sync/feature/catalog/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// OptionName is the variant axis the engine manages.
const OptionName = "Color"

// ErrExistingNotFound is the terminal invariant failure for a group flagged
// "existing" whose parent cannot be found on the target. Creation is
// forbidden in that state; the group fails instead.
var ErrExistingNotFound = errors.New(`item flagged "existing" but no matching product found on target`)

// Resolution is the outcome of an existence check for one group.
type Resolution struct {
	// Found reports whether a parent entity exists on the target.
	Found bool

	// ParentID is the storefront product ID when Found.
	ParentID string

	// Options are the parent's option axes with their target-assigned IDs.
	Options []shopify.Option

	// KnownChildren holds the parent's variants, populated only when
	// ChildrenFetched.
	KnownChildren []shopify.Variant

	// ChildrenFetched distinguishes the full lookup path from the cheap
	// pointer path, which skips fetching children to save a call.
	ChildrenFetched bool
}

// Resolver decides whether a target parent entity already exists for a
// group, and resolves option-axis values backed by metaobject references.
// One resolver serves one store.
type Resolver struct {
	store    config.Store
	target   TargetClient
	mappings *MappingStore
	retryCfg retry.Config
	log      *zap.Logger

	// optionValues caches normalizedLabel → referenceID for this store.
	// Lazily built from one bulk catalog query; singleflight keeps
	// concurrent misses from issuing duplicate rebuilds.
	mu           sync.RWMutex
	optionValues map[string]string
	sf           singleflight.Group
}

// NewResolver creates a resolver for one store.
func NewResolver(store config.Store, target TargetClient, mappings *MappingStore, retryCfg retry.Config, log *zap.Logger) *Resolver {
	return &Resolver{
		store:    store,
		target:   target,
		mappings: mappings,
		retryCfg: retryCfg,
		log:      log.With(zap.String("store", store.ID)),
	}
}

// Resolve determines whether the group's parent exists, in priority order:
// forward pointer on the source item, mapping table, then natural-key
// lookup. The pointer and mapping paths fetch only the option axes, not the
// children; duplicate child creations on those paths are expected to be
// rejected by the target and reclassified as benign.
func (r *Resolver) Resolve(ctx context.Context, group *models.Group) (*Resolution, error) {
	rep := group.Representative()
	if rep == nil {
		return &Resolution{}, nil
	}

	// 1. Forward pointer carried on the source record. Trusted directly;
	// also spares a rate-limit-expensive search call.
	if rep.ProductID != "" {
		res, err := r.resolveByID(ctx, rep.ProductID)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
		r.log.Warn("Forward pointer is dangling, falling back to lookup",
			zap.String("group", group.Key()),
			zap.String("product_id", rep.ProductID))
	}

	// 2. Mapping recorded by a previous run.
	if mapped, ok, err := r.mappings.Lookup(group.Key(), group.StoreID, models.TargetParent); err != nil {
		return nil, err
	} else if ok {
		res, err := r.resolveByID(ctx, mapped)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
		r.log.Warn("Mapped product no longer exists on target",
			zap.String("group", group.Key()),
			zap.String("product_id", mapped))
	}

	// 3. Natural-key lookup by derived handle.
	handle := DeriveHandle(rep.Title)
	if handle == "" {
		if group.StatusExisting() {
			return nil, fmt.Errorf("group %s: %w (empty handle)", group.Key(), ErrExistingNotFound)
		}
		// Degenerate key: skip the remote call entirely.
		return &Resolution{}, nil
	}

	var p *shopify.Product
	err := retry.Do(ctx, r.log, "findProductByHandle", r.retryCfg, func() error {
		var err error
		p, err = r.target.FindProductByHandle(ctx, handle)
		return err
	})
	if err != nil {
		return nil, err
	}

	if p == nil {
		if group.StatusExisting() {
			return nil, fmt.Errorf("group %s (handle %s): %w", group.Key(), handle, ErrExistingNotFound)
		}
		return &Resolution{}, nil
	}

	return &Resolution{
		Found:           true,
		ParentID:        p.ID,
		Options:         p.Options,
		KnownChildren:   p.Variants,
		ChildrenFetched: true,
	}, nil
}

// resolveByID fetches a known product without its children. Returns nil
// when the ID no longer resolves on the target.
func (r *Resolver) resolveByID(ctx context.Context, id string) (*Resolution, error) {
	var p *shopify.Product
	err := retry.Do(ctx, r.log, "getProduct", r.retryCfg, func() error {
		var err error
		p, err = r.target.GetProduct(ctx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return &Resolution{
		Found:    true,
		ParentID: p.ID,
		Options:  p.Options,
	}, nil
}

// FetchChildren loads the full child list for an already-resolved parent.
// Used by the executor to locate a pre-existing child after a benign
// duplicate rejection on the pointer path.
func (r *Resolver) FetchChildren(ctx context.Context, parentID string) ([]shopify.Variant, error) {
	var p *shopify.Product
	err := retry.Do(ctx, r.log, "getProductChildren", r.retryCfg, func() error {
		var err error
		p, err = r.target.GetProduct(ctx, parentID, true)
		return err
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return p.Variants, nil
}

// EnsureOptionValue resolves an option axis value to its metaobject
// reference. On a cache miss the whole per-store catalog is rebuilt with a
// single bulk query and checked again; a second miss means the value
// genuinely does not exist on the target and is reported, not invented.
func (r *Resolver) EnsureOptionValue(ctx context.Context, rawValue string) (string, bool, error) {
	key := normalizeOptionValue(rawValue)
	if key == "" {
		return "", false, nil
	}

	r.mu.RLock()
	id, ok := r.optionValues[key]
	r.mu.RUnlock()
	if ok {
		return id, true, nil
	}

	_, err, _ := r.sf.Do("rebuild", func() (any, error) {
		var catalog []shopify.MetaobjectValue
		err := retry.Do(ctx, r.log, "metaobjectCatalog", r.retryCfg, func() error {
			var err error
			catalog, err = r.target.MetaobjectCatalog(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}

		values := make(map[string]string, len(catalog))
		for _, entry := range catalog {
			values[normalizeOptionValue(entry.Label)] = entry.ReferenceID
		}

		r.mu.Lock()
		r.optionValues = values
		r.mu.Unlock()

		r.log.Debug("Rebuilt option value cache", zap.Int("values", len(values)))
		return nil, nil
	})
	if err != nil {
		return "", false, err
	}

	r.mu.RLock()
	id, ok = r.optionValues[key]
	r.mu.RUnlock()
	return id, ok, nil
}

// DeriveHandle builds the natural key for a group from its title: lowercased
// with whitespace runs collapsed to single hyphens. An empty or degenerate
// result means no natural key exists.
func DeriveHandle(title string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(title)))
	return strings.Join(fields, "-")
}

func normalizeOptionValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
