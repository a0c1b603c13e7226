package services

import (
	"fmt"
	"time"

	"checkout-service/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	TestCustomerID = uint64(3)
	TestOrderID    = uint64(10)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// CreateValidOrder returns a two-line order whose totals add up:
// 2 x 10.00 + 1 x 5.50 + tax 2.00 + shipping 3.00 = 30.50.
func CreateValidOrder() *domain.Order {
	customer := TestCustomerID
	return &domain.Order{
		CustomerID: &customer,
		Total:      dec("30.50"),
		Tax:        dec("2.00"),
		Shipping:   dec("3.00"),
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 2, Price: dec("10.00"), Total: dec("20.00")},
			{ProductID: 2, Quantity: 1, Price: dec("5.50"), Total: dec("5.50")},
		},
	}
}

func CreateMockOrder(id uint64, status domain.OrderStatus) *domain.Order {
	o := CreateValidOrder()
	o.ID = id
	o.OrderNumber = "ORD-20240101-ABCDEF12"
	o.Status = status
	o.CreatedAt = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	o.UpdatedAt = o.CreatedAt
	for i := range o.Items {
		o.Items[i].ID = uint64(i + 1)
		o.Items[i].OrderID = id
	}
	return o
}

func CreateMockProduct(id uint64, stock int64) *domain.Product {
	return &domain.Product{
		ID:            id,
		Name:          "Product",
		SKU:           fmt.Sprintf("SKU-%03d", id),
		Price:         dec("10.00"),
		StockQuantity: stock,
		IsActive:      true,
	}
}
