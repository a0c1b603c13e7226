package domain

import (
	"strings"
	"time"
)

type InventoryTxType string

const (
	InventoryReceived   InventoryTxType = "received"
	InventoryShipped    InventoryTxType = "shipped"
	InventoryAdjustment InventoryTxType = "adjustment"
	InventoryReturn     InventoryTxType = "return"
)

const maxInventoryTypeLen = 32

var inventoryTxTypes = map[InventoryTxType]struct{}{
	InventoryReceived:   {},
	InventoryShipped:    {},
	InventoryAdjustment: {},
	InventoryReturn:     {},
}

// InventoryTransaction is a signed stock delta. Inserting one always moves
// the product's stock by the same amount in the same database transaction.
type InventoryTransaction struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID uint64          `json:"productId" gorm:"not null;index"`
	Type      InventoryTxType `json:"type" gorm:"size:32;not null;index"`
	Quantity  int64           `json:"quantity" gorm:"not null"`
	Reference string          `json:"reference" gorm:"size:128"`
	Notes     string          `json:"notes" gorm:"type:text"`
	CreatedAt time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (t *InventoryTransaction) Validate() error {
	verr := NewValidationError()
	t.Type = InventoryTxType(strings.ToLower(strings.TrimSpace(string(t.Type))))

	if t.ProductID == 0 {
		verr.Add("productId", "required")
	}
	switch {
	case t.Type == "":
		verr.Add("type", "required")
	case len(t.Type) < 2 || len(t.Type) > maxInventoryTypeLen:
		verr.Add("type", "len=2..32")
	default:
		if _, ok := inventoryTxTypes[t.Type]; !ok {
			verr.Add("type", "oneof=received shipped adjustment return")
		}
	}
	if t.Quantity == 0 {
		verr.Add("quantity", "ne=0")
	}

	if verr.Empty() {
		return nil
	}
	return verr
}

type InventoryFilter struct {
	ProductID *uint64
	Type      *InventoryTxType
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}
