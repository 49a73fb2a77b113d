package config

import (
	"fmt"

	"catalog-sync/core/shopify"

	"github.com/spf13/viper"
)

// Store describes one storefront back-end: its identity in the ERP, its
// currency conversion settings, and its admin API credentials.
type Store struct {
	// ID is the store identifier used in ERP item rows and mapping keys.
	ID string `mapstructure:"id"`
	// Name is the display name for logs and reports.
	Name string `mapstructure:"name"`
	// Enabled toggles whether sync runs include the store.
	Enabled bool `mapstructure:"enabled"`
	// Currency is the store currency code, e.g. USD, KWD.
	Currency string `mapstructure:"currency"`
	// Rate converts a source price into the store currency. 1.0 for the
	// store whose currency the ERP prices are kept in.
	Rate float64 `mapstructure:"rate"`
	// PriceList names the ERP price list this store's prices come from.
	PriceList string `mapstructure:"price_list"`
	// Shopify holds the store's admin API connection settings.
	Shopify shopify.Config `mapstructure:"shopify"`
}

// LoadStores reads the store list document (JSON, see Sync.StoresFile).
// The store list is structural configuration that does not fit environment
// variables; credentials inside it may still reference env-provided values.
func LoadStores(path string) ([]Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read stores file %s: %w", path, err)
	}

	var stores []Store
	if err := v.UnmarshalKey("stores", &stores); err != nil {
		return nil, fmt.Errorf("failed to parse stores file %s: %w", path, err)
	}
	if len(stores) == 0 {
		return nil, fmt.Errorf("stores file %s defines no stores", path)
	}

	seen := make(map[string]struct{}, len(stores))
	for _, s := range stores {
		if s.ID == "" {
			return nil, fmt.Errorf("stores file %s: store with empty id", path)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("stores file %s: duplicate store id %s", path, s.ID)
		}
		seen[s.ID] = struct{}{}
	}

	return stores, nil
}
