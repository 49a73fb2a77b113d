package shopify

import (
	"fmt"
	"strings"
)

// Product statuses accepted by the admin API.
const (
	StatusActive = "ACTIVE"
	StatusDraft  = "DRAFT"
)

// ProductInput describes a product to create, including its declared option
// axes. Axis identifiers are assigned by Shopify at creation time and come
// back on the returned Product.
type ProductInput struct {
	Title           string
	Handle          string
	DescriptionHTML string
	Status          string
	Options         []OptionInput
}

// OptionInput declares one option axis with its initial values.
type OptionInput struct {
	Name   string
	Values []string
}

// Product is the remote product entity as returned by the admin API.
type Product struct {
	ID       string
	Title    string
	Handle   string
	Status   string
	Options  []Option
	Variants []Variant
}

// Option is an option axis on a product. ID is assigned by Shopify and is
// required to correlate variant option values.
type Option struct {
	ID     string
	Name   string
	Values []string
}

// Variant is the remote child entity.
type Variant struct {
	ID              string
	SKU             string
	Title           string
	InventoryItemID string
}

// VariantInput describes one variant to create under a product.
type VariantInput struct {
	SKU            string
	Barcode        string
	Price          float64
	CompareAtPrice *float64
	OptionValues   []OptionValueInput
}

// OptionValueInput sets one axis value on a variant. Exactly one of Name
// (plain label) or LinkedMetafieldValue (metaobject reference) is used;
// reference-backed axes reject plain labels.
type OptionValueInput struct {
	OptionID             string
	Name                 string
	LinkedMetafieldValue string
}

// VariantUpdate is a field-level update for an existing variant.
type VariantUpdate struct {
	VariantID      string
	Price          float64
	CompareAtPrice *float64
}

// VariantsResult is the outcome of a bulk variant creation. Created holds
// the acknowledged variants; Errors holds per-request rejections. Both can
// be populated at once on partial success.
type VariantsResult struct {
	Created []Variant
	Errors  []UserError
}

// MetaobjectValue is one entry of the store's option-value catalog: a
// display label and the metaobject reference it is backed by.
type MetaobjectValue struct {
	Label       string
	ReferenceID string
}

// UserError is a business validation rejection returned inside a successful
// GraphQL response.
type UserError struct {
	Field   string
	Message string
}

// UserErrorsError aggregates the userErrors of one mutation into a Go error.
type UserErrorsError struct {
	Mutation string
	Errors   []UserError
}

func (e *UserErrorsError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, ue := range e.Errors {
		if ue.Field != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", ue.Field, ue.Message))
			continue
		}
		parts = append(parts, ue.Message)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("shopify %s failed with user errors", e.Mutation)
	}
	return fmt.Sprintf("shopify %s failed: %s", e.Mutation, strings.Join(parts, "; "))
}
