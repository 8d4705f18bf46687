package mocks

import (
	"context"

	"catalog-sync/core/remote"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of remote.Client
type Client struct {
	mock.Mock
}

func (m *Client) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Client) CreateProduct(ctx context.Context, params remote.ProductParams) (*remote.Product, error) {
	args := m.Called(ctx, params)
	if p, ok := args.Get(0).(*remote.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) RetrieveProduct(ctx context.Context, id string) (*remote.Product, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*remote.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) UpdateProduct(ctx context.Context, id string, params remote.ProductParams) (*remote.Product, error) {
	args := m.Called(ctx, id, params)
	if p, ok := args.Get(0).(*remote.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreatePrice(ctx context.Context, params remote.PriceParams) (*remote.Price, error) {
	args := m.Called(ctx, params)
	if p, ok := args.Get(0).(*remote.Price); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) RetrievePrice(ctx context.Context, id string) (*remote.Price, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*remote.Price); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) DeactivatePrice(ctx context.Context, id string) (*remote.Price, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*remote.Price); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListProducts(ctx context.Context) ([]remote.Product, error) {
	args := m.Called(ctx)
	if p, ok := args.Get(0).([]remote.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListPrices(ctx context.Context, productID string) ([]remote.Price, error) {
	args := m.Called(ctx, productID)
	if p, ok := args.Get(0).([]remote.Price); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
