package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentCreated  PaymentStatus = "created"
	PaymentVerified PaymentStatus = "verified"
)

const DefaultCurrency = "INR"

// Payment links a provider order (and, once settled, the provider payment)
// to a local order.
type Payment struct {
	ID                uint64        `json:"id" gorm:"primaryKey;autoIncrement"`
	ProviderOrderID   string        `json:"providerOrderId" gorm:"size:64;not null;uniqueIndex"`
	ProviderPaymentID *string       `json:"providerPaymentId" gorm:"size:64;uniqueIndex"`
	OrderID           *uint64       `json:"orderId" gorm:"index"`
	Amount            int64         `json:"amount" gorm:"not null"`
	Currency          string        `json:"currency" gorm:"size:8;not null"`
	Receipt           string        `json:"receipt" gorm:"size:64"`
	Status            PaymentStatus `json:"status" gorm:"size:20;not null;default:'created'"`
	VerifiedAt        *time.Time    `json:"verifiedAt"`
	CreatedAt         time.Time     `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt         time.Time     `json:"updatedAt" gorm:"autoUpdateTime"`
}

type PaymentVerification struct {
	ProviderOrderID   string
	ProviderPaymentID string
	OrderID           *uint64
	VerifiedAt        time.Time
}

type VerificationOutcome struct {
	Payment       *Payment
	OrderAdvanced bool
	// Replayed is set when the same payment was already verified.
	Replayed bool
	// OrderCanceled is set when the linked order was canceled before the
	// payment settled. The payment is kept and has to be refunded.
	OrderCanceled bool
}

// MinorUnits converts a major-unit amount into the provider's smallest unit.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Covers reports whether the payment is for exactly the order's total.
// Orders are priced in DefaultCurrency.
func (p *Payment) Covers(o *Order) bool {
	return p.Amount > 0 &&
		p.Amount == MinorUnits(o.Total) &&
		strings.EqualFold(p.Currency, DefaultCurrency)
}
