package catalog

import (
	"testing"

	"catalog-sync/core/config"
	"catalog-sync/core/erp"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNormalize(t *testing.T) {
	store := config.Store{
		ID:        "kw",
		Currency:  "KWD",
		Rate:      0.27,
		PriceList: "Retail KWD",
	}

	tests := []struct {
		name          string
		item          erp.Item
		store         config.Store
		wantPrice     float64
		wantCompareAt *float64
	}{
		{
			name:          "sale price becomes primary, regular moves to compare-at",
			item:          erp.Item{Code: "SKU1", Price: 100, SalePrice: 80, PriceList: "Retail KWD"},
			store:         store,
			wantPrice:     21.6,
			wantCompareAt: floatPtr(27.0),
		},
		{
			name:          "no sale price leaves compare-at unset",
			item:          erp.Item{Code: "SKU2", Price: 100, PriceList: "Retail USD"},
			store:         config.Store{ID: "us", Rate: 1.0, PriceList: "Retail USD"},
			wantPrice:     100,
			wantCompareAt: nil,
		},
		{
			name:          "zero rate falls back to 1.0",
			item:          erp.Item{Code: "SKU3", Price: 49.99, PriceList: "Retail KWD"},
			store:         config.Store{ID: "kw", Rate: 0, PriceList: "Retail KWD"},
			wantPrice:     49.99,
			wantCompareAt: nil,
		},
		{
			name:          "unknown price list skips conversion",
			item:          erp.Item{Code: "SKU4", Price: 100, PriceList: "Wholesale"},
			store:         store,
			wantPrice:     100,
			wantCompareAt: nil,
		},
		{
			name:          "conversion rounds half away from zero",
			item:          erp.Item{Code: "SKU5", Price: 9.35, PriceList: "Retail KWD"},
			store:         config.Store{ID: "kw", Rate: 0.27, PriceList: "Retail KWD"},
			wantPrice:     2.52,
			wantCompareAt: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, compareAt := Normalize(tt.item, tt.store, zap.NewNop())
			assert.Equal(t, tt.wantPrice, price)
			if tt.wantCompareAt == nil {
				assert.Nil(t, compareAt)
			} else {
				if assert.NotNil(t, compareAt) {
					assert.Equal(t, *tt.wantCompareAt, *compareAt)
				}
			}
		})
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
