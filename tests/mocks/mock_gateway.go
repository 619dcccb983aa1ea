package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lumapay/paylink/internal/gateway"
)

type MockGatewayAPI struct {
	mock.Mock
}

func (m *MockGatewayAPI) CreateOrder(ctx context.Context, req *gateway.CreateOrderRequest) (*gateway.CreateOrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.CreateOrderResponse), args.Error(1)
}

func (m *MockGatewayAPI) QueryOrder(ctx context.Context, orderID string) (*gateway.QueryOrderResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.QueryOrderResponse), args.Error(1)
}
