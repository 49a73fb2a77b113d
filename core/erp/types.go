package erp

// StatusExisting is the hard override flag on a source item meaning the
// storefront product is contractually guaranteed to exist: never create a
// parent for its group, only attach variants.
const StatusExisting = "existing"

// Item is one catalog row from the ERP, scoped to a single store.
// It is a read-only snapshot for the duration of a sync run; the engine
// only writes back derived confirmation fields via WriteBack.
type Item struct {
	// Code is the unique item key (SKU) in the ERP.
	Code string `json:"ItemCode"`

	// ParentKey groups variants of one logical product. Empty means the
	// item forms its own single-member group.
	ParentKey string `json:"U_ParentKey"`

	// StoreID scopes the item to one storefront.
	StoreID string `json:"U_Store"`

	// Title is the display name used for the storefront product.
	Title string `json:"ItemName"`

	// Description is free-form HTML carried to the storefront.
	Description string `json:"U_Description"`

	// Color is the variant option axis value. Empty for simple products.
	Color string `json:"U_Color"`

	// Barcode is the item barcode (EAN/UPC).
	Barcode string `json:"BarCode"`

	// Price is the regular price on the item's price list.
	Price float64 `json:"Price"`

	// SalePrice is the promotional price; zero or negative means none.
	SalePrice float64 `json:"U_SalePrice"`

	// PriceList identifies which store price list Price was read from.
	PriceList string `json:"PriceList"`

	// StatusFlag carries sync overrides; see StatusExisting.
	StatusFlag string `json:"U_SyncStatus"`

	// ProductID is the forward pointer to an already-known storefront
	// product. When set the engine trusts it and skips lookups.
	ProductID string `json:"U_ShopifyProductId"`

	// VariantID is the forward pointer to the item's storefront variant.
	VariantID string `json:"U_ShopifyVariantId"`
}
