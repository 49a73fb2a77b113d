package mocks

import (
	"context"

	"catalog-sync/core/shopify"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of shopify.Client
type Client struct {
	mock.Mock
}

func (m *Client) CreateProduct(ctx context.Context, in shopify.ProductInput) (*shopify.Product, error) {
	args := m.Called(ctx, in)
	if p, ok := args.Get(0).(*shopify.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateVariantsBulk(ctx context.Context, productID string, in []shopify.VariantInput) (*shopify.VariantsResult, error) {
	args := m.Called(ctx, productID, in)
	if r, ok := args.Get(0).(*shopify.VariantsResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetProduct(ctx context.Context, id string, withVariants bool) (*shopify.Product, error) {
	args := m.Called(ctx, id, withVariants)
	if p, ok := args.Get(0).(*shopify.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) FindProductByHandle(ctx context.Context, handle string) (*shopify.Product, error) {
	args := m.Called(ctx, handle)
	if p, ok := args.Get(0).(*shopify.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) MetaobjectCatalog(ctx context.Context) ([]shopify.MetaobjectValue, error) {
	args := m.Called(ctx)
	if c, ok := args.Get(0).([]shopify.MetaobjectValue); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) UpdateVariant(ctx context.Context, productID string, in shopify.VariantUpdate) error {
	args := m.Called(ctx, productID, in)
	return args.Error(0)
}

func (m *Client) UpdateProductStatus(ctx context.Context, productID, status string) error {
	args := m.Called(ctx, productID, status)
	return args.Error(0)
}
