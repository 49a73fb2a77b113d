package catalog

import (
	"context"
	"testing"
	"time"

	"catalog-sync/core/config"
	"catalog-sync/core/erp"
	"catalog-sync/core/shopify"
	shopifymocks "catalog-sync/core/shopify/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestService_RunRejectsUnknownType(t *testing.T) {
	db, _ := setupMockDB(t)
	service := NewService(db, nil, &mockSource{}, nil, nil, "", testRetryConfig(), config.Sync{}, zap.NewNop())

	_, err := service.Run(context.Background(), "inventory", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sync type")
}

func TestService_RunPrices(t *testing.T) {
	source := &mockSource{
		fetchFunc: func(ctx context.Context, storeID string) ([]erp.Item, error) {
			return []erp.Item{
				{Code: "A1", StoreID: "kw", Price: 25, PriceList: "Retail",
					ProductID: "gid://shopify/Product/1", VariantID: "gid://shopify/ProductVariant/11"},
			}, nil
		},
	}

	target := new(shopifymocks.Client)
	target.On("UpdateVariant", mock.Anything, "gid://shopify/Product/1", mock.MatchedBy(func(in shopify.VariantUpdate) bool {
		return in.VariantID == "gid://shopify/ProductVariant/11" && in.Price == 25.0
	})).Return(nil)

	db, _ := setupMockDB(t)
	stores := []config.Store{{ID: "kw", Enabled: true, Rate: 1.0, PriceList: "Retail"}}
	targets := map[string]TargetClient{"kw": target}
	service := NewService(db, stores, source, targets, nil, "", testRetryConfig(), config.Sync{}, zap.NewNop())

	outcome, err := service.Run(context.Background(), SyncTypePrices, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Succeeded)
	target.AssertExpectations(t)
}

func TestService_Mappings(t *testing.T) {
	db, mock := setupMockDB(t)
	service := NewService(db, nil, &mockSource{}, nil, nil, "", testRetryConfig(), config.Sync{}, zap.NewNop())

	rows := sqlmock.NewRows([]string{"id", "source_code", "store_id", "target_type", "target_id", "created_at"}).
		AddRow(1, "SKU1", "kw", "child", "gid://shopify/ProductVariant/11", time.Now()).
		AddRow(2, "SKU1", "kw", "inventoryUnit", "gid://shopify/InventoryItem/21", time.Now())
	mock.ExpectQuery("SELECT \\* FROM `product_mappings`").WillReturnRows(rows)

	mappings, err := service.Mappings("kw", "SKU1")
	require.NoError(t, err)
	assert.Len(t, mappings, 2)
}
