package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Order struct {
	ID              uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderNumber     string          `json:"orderNumber" gorm:"size:64;not null;uniqueIndex"`
	CustomerID      *uint64         `json:"customerId" gorm:"index"`
	Status          OrderStatus     `json:"status" gorm:"size:20;not null;default:'pending';index"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	Tax             decimal.Decimal `json:"tax" gorm:"type:decimal(10,2);not null;default:0"`
	Shipping        decimal.Decimal `json:"shipping" gorm:"type:decimal(10,2);not null;default:0"`
	ShippingAddress datatypes.JSON  `json:"shippingAddress"`
	BillingAddress  datatypes.JSON  `json:"billingAddress"`
	PaymentMethod   string          `json:"paymentMethod" gorm:"size:50"`
	Notes           string          `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`

	Customer *Customer   `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items    []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
}

// OrderItem copies the unit price at purchase time so later catalogue
// changes never alter a historical order.
type OrderItem struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64          `json:"orderId" gorm:"not null;index"`
	ProductID uint64          `json:"productId" gorm:"not null;index"`
	Quantity  int64           `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Total     decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

type OrderFilter struct {
	CustomerID *uint64
	Status     *OrderStatus
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page clamps limit and offset to the accepted range.
func Page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Validate checks a new order and its items before anything is written.
// Money comparisons are made at two decimal places.
func (o *Order) Validate() error {
	verr := NewValidationError()

	if o.OrderNumber != "" && len(o.OrderNumber) < 3 {
		verr.Add("order.orderNumber", "min=3")
	}
	if !o.Total.IsPositive() {
		verr.Add("order.total", "gt=0")
	}
	if o.Tax.IsNegative() {
		verr.Add("order.tax", "gte=0")
	}
	if o.Shipping.IsNegative() {
		verr.Add("order.shipping", "gte=0")
	}
	if len(o.Items) == 0 {
		verr.Add("items", "min=1")
	}

	sum := decimal.Zero
	for i, it := range o.Items {
		field := func(name string) string { return "items[" + itoa(i) + "]." + name }
		if it.ProductID == 0 {
			verr.Add(field("productId"), "required")
		}
		if it.Quantity <= 0 {
			verr.Add(field("quantity"), "gt=0")
		}
		if it.Price.IsNegative() {
			verr.Add(field("price"), "gte=0")
		}
		if it.Total.IsNegative() {
			verr.Add(field("total"), "gte=0")
		}
		if it.Quantity > 0 && !it.Price.IsNegative() &&
			!it.Price.Mul(decimal.NewFromInt(it.Quantity)).Round(2).Equal(it.Total.Round(2)) {
			verr.Add(field("total"), "eq=price*quantity")
		}
		sum = sum.Add(it.Total)
	}

	if len(o.Items) > 0 && verr.Empty() {
		expected := sum.Add(o.Tax).Add(o.Shipping).Round(2)
		if !expected.Equal(o.Total.Round(2)) {
			verr.Add("order.total", "eq=items+tax+shipping")
		}
	}

	if verr.Empty() {
		return nil
	}
	return verr
}

// Quantities sums requested units per product, for stock checks.
func (o *Order) Quantities() map[uint64]int64 {
	out := make(map[uint64]int64, len(o.Items))
	for _, it := range o.Items {
		out[it.ProductID] += it.Quantity
	}
	return out
}
