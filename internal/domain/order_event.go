package domain

import "time"

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventPaymentVerified    = "payment.verified"
)

type OrderCreatedEvent struct {
	OrderID     uint64    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	CustomerID  *uint64   `json:"customerId,omitempty"`
	Total       string    `json:"total"`
	ItemCount   int       `json:"itemCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID   uint64      `json:"orderId"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	Restocked bool        `json:"restocked"`
	ChangedAt time.Time   `json:"changedAt"`
}

type PaymentVerifiedEvent struct {
	ProviderOrderID   string    `json:"providerOrderId"`
	ProviderPaymentID string    `json:"providerPaymentId"`
	OrderID           *uint64   `json:"orderId,omitempty"`
	Amount            int64     `json:"amount"`
	Currency          string    `json:"currency"`
	RequiresRefund    bool      `json:"requiresRefund,omitempty"`
	VerifiedAt        time.Time `json:"verifiedAt"`
}
