package cmd

import (
	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/erp"
	"catalog-sync/core/shopify"
	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog"

	"go.uber.org/zap"
)

// buildService wires the full sync service from configuration: database,
// store list, ERP client, one storefront client per store, and the optional
// report archive.
func buildService(cfg *config.Config, logg *zap.Logger) (*catalog.Service, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	stores, err := config.LoadStores(cfg.Sync.StoresFile)
	if err != nil {
		return nil, err
	}

	source, err := erp.NewClient(cfg.ERP)
	if err != nil {
		return nil, err
	}

	targets := make(map[string]catalog.TargetClient, len(stores))
	for _, store := range stores {
		if !store.Enabled {
			continue
		}
		target, err := shopify.NewClient(store.Shopify)
		if err != nil {
			logg.Warn("Skipping store with invalid storefront config",
				zap.String("store", store.ID), zap.Error(err))
			continue
		}
		targets[store.ID] = target
	}

	// The report archive is optional; runs proceed without it.
	var archive storage.Client
	if cfg.Storage.Endpoint != "" {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Warn("Report archive unavailable", zap.Error(err))
		} else {
			archive = client
		}
	}

	service := catalog.NewService(db, stores, source, targets, archive, cfg.Storage.Bucket, cfg.Retry, cfg.Sync, logg)
	if err := service.Migrate(); err != nil {
		return nil, err
	}
	return service, nil
}
