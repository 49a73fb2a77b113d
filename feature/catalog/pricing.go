package catalog

import (
	"math"

	"catalog-sync/core/config"
	"catalog-sync/core/erp"

	"go.uber.org/zap"
)

// Normalize converts a source price pair into the store's price fields.
//
// The regular price passes through the store's currency rate. A positive
// sale price becomes the primary price and the regular price moves to the
// compare-at slot; otherwise the compare-at price stays nil. An item priced
// from a price list the store does not use falls back to the unconverted
// source price, which is logged rather than silently accepted.
func Normalize(item erp.Item, store config.Store, l *zap.Logger) (price float64, compareAt *float64) {
	rate := store.Rate
	if rate <= 0 {
		rate = 1.0
	}

	if item.PriceList != store.PriceList {
		l.Warn("Unknown price list, using unconverted source price",
			zap.String("code", item.Code),
			zap.String("store", store.ID),
			zap.String("price_list", item.PriceList),
			zap.String("expected", store.PriceList))
		rate = 1.0
	}

	regular := round2(item.Price * rate)

	if item.SalePrice > 0 {
		sale := round2(item.SalePrice * rate)
		return sale, &regular
	}

	return regular, nil
}

// round2 rounds to 2 decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
