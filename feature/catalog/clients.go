package catalog

import (
	"context"

	"catalog-sync/core/erp"
	"catalog-sync/core/shopify"
)

// SourceClient is the slice of the ERP surface the engine consumes.
// core/erp.Client satisfies it; tests substitute doubles.
type SourceClient interface {
	FetchChangedItems(ctx context.Context, storeID string) ([]erp.Item, error)
	WriteBack(ctx context.Context, code string, fields map[string]any) error
}

// TargetClient is the slice of the storefront surface the engine consumes.
// core/shopify.Client satisfies it; tests substitute doubles.
type TargetClient interface {
	CreateProduct(ctx context.Context, in shopify.ProductInput) (*shopify.Product, error)
	CreateVariantsBulk(ctx context.Context, productID string, in []shopify.VariantInput) (*shopify.VariantsResult, error)
	GetProduct(ctx context.Context, id string, withVariants bool) (*shopify.Product, error)
	FindProductByHandle(ctx context.Context, handle string) (*shopify.Product, error)
	MetaobjectCatalog(ctx context.Context) ([]shopify.MetaobjectValue, error)
	UpdateVariant(ctx context.Context, productID string, in shopify.VariantUpdate) error
	UpdateProductStatus(ctx context.Context, productID, status string) error
}
