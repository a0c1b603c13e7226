package repository

import (
	"context"

	"checkout-service/internal/domain"
)

// Finders return (nil, nil) when the row does not exist.

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, order *domain.Order, to domain.OrderStatus, restock bool) error
}

type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]domain.Product, error)
}

type CustomerRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Customer, error)
}

type InventoryRepository interface {
	Create(ctx context.Context, tx *domain.InventoryTransaction) error
	List(ctx context.Context, filter domain.InventoryFilter) ([]domain.InventoryTransaction, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	FindByProviderOrderID(ctx context.Context, providerOrderID string) (*domain.Payment, error)
	RecordVerification(ctx context.Context, v domain.PaymentVerification) (*domain.VerificationOutcome, error)
}
