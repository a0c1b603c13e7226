package http

import (
	"checkout-service/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type createOrderRequest struct {
	Order orderPayload       `json:"order"`
	Items []orderItemPayload `json:"items" binding:"required,min=1,dive"`
}

type orderPayload struct {
	OrderNumber     string          `json:"orderNumber" binding:"omitempty,min=3,max=64"`
	CustomerID      *uint64         `json:"customerId" binding:"omitempty,gt=0"`
	Total           decimal.Decimal `json:"total" binding:"gt=0"`
	Tax             decimal.Decimal `json:"tax" binding:"gte=0"`
	Shipping        decimal.Decimal `json:"shipping" binding:"gte=0"`
	ShippingAddress datatypes.JSON  `json:"shippingAddress"`
	BillingAddress  datatypes.JSON  `json:"billingAddress"`
	PaymentMethod   string          `json:"paymentMethod" binding:"max=50"`
	Notes           string          `json:"notes"`
}

type orderItemPayload struct {
	ProductID uint64          `json:"productId" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"gt=0"`
	Price     decimal.Decimal `json:"price" binding:"gte=0"`
	Total     decimal.Decimal `json:"total" binding:"gte=0"`
}

func (r createOrderRequest) toDomain() *domain.Order {
	o := &domain.Order{
		OrderNumber:     r.Order.OrderNumber,
		CustomerID:      r.Order.CustomerID,
		Total:           r.Order.Total,
		Tax:             r.Order.Tax,
		Shipping:        r.Order.Shipping,
		ShippingAddress: r.Order.ShippingAddress,
		BillingAddress:  r.Order.BillingAddress,
		PaymentMethod:   r.Order.PaymentMethod,
		Notes:           r.Order.Notes,
		Items:           make([]domain.OrderItem, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		o.Items = append(o.Items, domain.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Total:     it.Total,
		})
	}
	return o
}

type listOrdersQuery struct {
	CustomerID *uint64 `form:"customerId" binding:"omitempty,gt=0"`
	Status     string  `form:"status"`
	StartDate  string  `form:"startDate"`
	EndDate    string  `form:"endDate"`
	Limit      int     `form:"limit" binding:"omitempty,gte=0"`
	Offset     int     `form:"offset" binding:"omitempty,gte=0"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type inventoryRequest struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Type      string `json:"type" binding:"required,min=2,max=32"`
	Quantity  int64  `json:"quantity" binding:"ne=0"`
	Reference string `json:"reference" binding:"max=128"`
	Notes     string `json:"notes"`
}

func (r inventoryRequest) toDomain() *domain.InventoryTransaction {
	return &domain.InventoryTransaction{
		ProductID: r.ProductID,
		Type:      domain.InventoryTxType(r.Type),
		Quantity:  r.Quantity,
		Reference: r.Reference,
		Notes:     r.Notes,
	}
}

type listInventoryQuery struct {
	ProductID *uint64 `form:"productId" binding:"omitempty,gt=0"`
	Type      string  `form:"type"`
	StartDate string  `form:"startDate"`
	EndDate   string  `form:"endDate"`
	Limit     int     `form:"limit" binding:"omitempty,gte=0"`
	Offset    int     `form:"offset" binding:"omitempty,gte=0"`
}

type createPaymentRequest struct {
	Amount   decimal.Decimal   `json:"amount" binding:"gt=0"`
	Currency string            `json:"currency" binding:"omitempty,len=3,alpha"`
	Receipt  string            `json:"receipt" binding:"max=40"`
	Notes    map[string]string `json:"notes" binding:"max=15"`
	OrderID  *uint64           `json:"orderId" binding:"omitempty,gt=0"`
}

// Field names match what the checkout widget posts back.
type verifyPaymentRequest struct {
	RazorpayOrderID   string  `json:"razorpay_order_id"`
	RazorpayPaymentID string  `json:"razorpay_payment_id"`
	RazorpaySignature string  `json:"razorpay_signature"`
	OrderID           *uint64 `json:"orderId" binding:"omitempty,gt=0"`
}
