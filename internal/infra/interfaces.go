package infra

import "context"

type PaymentProviderInterface interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*ProviderOrder, error)
}

var _ PaymentProviderInterface = (*RazorpayClient)(nil)
