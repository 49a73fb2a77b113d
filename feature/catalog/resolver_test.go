package catalog

import (
	"context"
	"testing"

	"catalog-sync/core/erp"
	"catalog-sync/core/shopify"
	"catalog-sync/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResolver(t *testing.T, target *mockTarget) *Resolver {
	db, _ := setupMockDB(t)
	mappings := NewMappingStore(db, zap.NewNop())
	return NewResolver(testStore(), target, mappings, testRetryConfig(), zap.NewNop())
}

func TestDeriveHandle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "simple title", title: "Wing Chair", want: "wing-chair"},
		{name: "mixed case and extra spaces", title: "  Velvet   Wing  Chair ", want: "velvet-wing-chair"},
		{name: "single word", title: "Ottoman", want: "ottoman"},
		{name: "empty title", title: "", want: ""},
		{name: "whitespace only", title: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveHandle(tt.title))
		})
	}
}

func TestResolve_ForwardPointerSkipsLookup(t *testing.T) {
	findCalls := 0
	target := &mockTarget{
		getProduct: func(ctx context.Context, id string, withVariants bool) (*shopify.Product, error) {
			assert.Equal(t, "gid://shopify/Product/9", id)
			assert.False(t, withVariants)
			return &shopify.Product{
				ID:      "gid://shopify/Product/9",
				Options: []shopify.Option{{ID: "opt1", Name: "Color"}},
			}, nil
		},
		findByHandle: func(ctx context.Context, handle string) (*shopify.Product, error) {
			findCalls++
			return nil, nil
		},
	}

	r := newTestResolver(t, target)
	group := &models.Group{ParentKey: "P100", StoreID: "kw", Items: []erp.Item{
		{Code: "SKU1", ParentKey: "P100", Title: "Wing Chair", ProductID: "gid://shopify/Product/9"},
	}}

	res, err := r.Resolve(context.Background(), group)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "gid://shopify/Product/9", res.ParentID)
	assert.False(t, res.ChildrenFetched)
	assert.Equal(t, 0, findCalls)
}

func TestResolve_DanglingPointerFallsThroughToLookup(t *testing.T) {
	target := &mockTarget{
		getProduct: func(ctx context.Context, id string, withVariants bool) (*shopify.Product, error) {
			return nil, nil
		},
		findByHandle: func(ctx context.Context, handle string) (*shopify.Product, error) {
			assert.Equal(t, "wing-chair", handle)
			return &shopify.Product{
				ID:       "gid://shopify/Product/2",
				Variants: []shopify.Variant{variantFixture("gid://shopify/ProductVariant/11", "SKU1", "")},
			}, nil
		},
	}

	r := newTestResolver(t, target)
	group := &models.Group{ParentKey: "P100", StoreID: "kw", Items: []erp.Item{
		{Code: "SKU1", ParentKey: "P100", Title: "Wing Chair", ProductID: "gid://shopify/Product/999"},
	}}

	// The stale pointer misses, then the mapping table misses, then the
	// handle lookup hits.
	db, mock := setupMockDB(t)
	r.mappings = NewMappingStore(db, zap.NewNop())
	expectNoMapping(mock)

	res, err := r.Resolve(context.Background(), group)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "gid://shopify/Product/2", res.ParentID)
	assert.True(t, res.ChildrenFetched)
	assert.Len(t, res.KnownChildren, 1)
}

func TestResolve_DegenerateHandleSkipsRemoteCall(t *testing.T) {
	findCalls := 0
	target := &mockTarget{
		findByHandle: func(ctx context.Context, handle string) (*shopify.Product, error) {
			findCalls++
			return nil, nil
		},
	}

	r := newTestResolver(t, target)
	db, mock := setupMockDB(t)
	r.mappings = NewMappingStore(db, zap.NewNop())
	expectNoMapping(mock)

	group := &models.Group{ParentKey: "P100", StoreID: "kw", Items: []erp.Item{
		{Code: "SKU1", ParentKey: "P100", Title: "   "},
	}}

	res, err := r.Resolve(context.Background(), group)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, 0, findCalls)
}

func TestResolve_DegenerateHandleWithExistingFlagFails(t *testing.T) {
	r := newTestResolver(t, &mockTarget{})
	db, mock := setupMockDB(t)
	r.mappings = NewMappingStore(db, zap.NewNop())
	expectNoMapping(mock)

	group := &models.Group{ParentKey: "P100", StoreID: "kw", Items: []erp.Item{
		{Code: "SKU1", ParentKey: "P100", Title: "", StatusFlag: erp.StatusExisting},
	}}

	_, err := r.Resolve(context.Background(), group)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExistingNotFound)
}

func TestResolve_EmptyGroup(t *testing.T) {
	r := newTestResolver(t, &mockTarget{})

	res, err := r.Resolve(context.Background(), &models.Group{ParentKey: "P100", StoreID: "kw"})
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestEnsureOptionValue(t *testing.T) {
	target := &mockTarget{
		metaobjectCatalog: func(ctx context.Context) ([]shopify.MetaobjectValue, error) {
			return []shopify.MetaobjectValue{
				{Label: "Red", ReferenceID: "gid://shopify/Metaobject/5"},
				{Label: "Royal Blue", ReferenceID: "gid://shopify/Metaobject/6"},
			}, nil
		},
	}
	r := newTestResolver(t, target)

	// First miss triggers one bulk rebuild.
	id, ok, err := r.EnsureOptionValue(context.Background(), "Red")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "gid://shopify/Metaobject/5", id)
	assert.Equal(t, 1, target.catalogCalls)

	// Subsequent hits are served from the cache, casing normalized.
	id, ok, err = r.EnsureOptionValue(context.Background(), "  ROYAL BLUE ")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "gid://shopify/Metaobject/6", id)
	assert.Equal(t, 1, target.catalogCalls)
}

func TestEnsureOptionValue_UnknownValue(t *testing.T) {
	target := &mockTarget{
		metaobjectCatalog: func(ctx context.Context) ([]shopify.MetaobjectValue, error) {
			return []shopify.MetaobjectValue{{Label: "Red", ReferenceID: "gid://shopify/Metaobject/5"}}, nil
		},
	}
	r := newTestResolver(t, target)

	// A value missing after a rebuild is reported, never invented.
	id, ok, err := r.EnsureOptionValue(context.Background(), "Chartreuse")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, id)
	assert.Equal(t, 1, target.catalogCalls)
}

func TestEnsureOptionValue_EmptyValue(t *testing.T) {
	r := newTestResolver(t, &mockTarget{})

	_, ok, err := r.EnsureOptionValue(context.Background(), "  ")
	require.NoError(t, err)
	assert.False(t, ok)
}
