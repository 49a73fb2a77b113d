package models

import (
	"testing"

	"catalog-sync/core/erp"
	"catalog-sync/core/shopify"

	"github.com/stretchr/testify/assert"
)

func shopifyVariant(id, sku string) shopify.Variant {
	return shopify.Variant{ID: id, SKU: sku}
}

func TestGroupItems(t *testing.T) {
	items := []erp.Item{
		{Code: "SKU1", ParentKey: "P100", StoreID: "kw", Color: "Red"},
		{Code: "SKU3", ParentKey: "", StoreID: "kw"},
		{Code: "SKU2", ParentKey: "P100", StoreID: "kw", Color: "Blue"},
	}

	groups := GroupItems(items)
	if assert.Len(t, groups, 2) {
		assert.Equal(t, "P100", groups[0].Key())
		assert.Len(t, groups[0].Items, 2)
		// An item without a parent key forms its own group under its code.
		assert.Equal(t, "SKU3", groups[1].Key())
		assert.Len(t, groups[1].Items, 1)
	}
}

func TestGroupOptionValues(t *testing.T) {
	group := Group{Items: []erp.Item{
		{Code: "SKU1", Color: "Red"},
		{Code: "SKU2", Color: "Blue"},
		{Code: "SKU3", Color: "Red"},
		{Code: "SKU4"},
	}}

	assert.True(t, group.HasOptions())
	assert.Equal(t, []string{"Red", "Blue"}, group.OptionValues())
}

func TestGroupStatusExisting(t *testing.T) {
	group := Group{Items: []erp.Item{{Code: "SKU1", StatusFlag: erp.StatusExisting}}}
	assert.True(t, group.StatusExisting())

	group = Group{Items: []erp.Item{{Code: "SKU1"}}}
	assert.False(t, group.StatusExisting())

	assert.False(t, (&Group{}).StatusExisting())
}

func TestGroupResultVariant(t *testing.T) {
	result := NewGroupResult("gid://shopify/Product/1")
	result.Created["SKU1"] = shopifyVariant("gid://shopify/ProductVariant/11", "SKU1")
	result.Known["SKU2"] = shopifyVariant("gid://shopify/ProductVariant/12", "SKU2")

	v, ok := result.Variant("SKU1")
	assert.True(t, ok)
	assert.Equal(t, "gid://shopify/ProductVariant/11", v.ID)

	v, ok = result.Variant("SKU2")
	assert.True(t, ok)
	assert.Equal(t, "gid://shopify/ProductVariant/12", v.ID)

	_, ok = result.Variant("SKU3")
	assert.False(t, ok)
}
