package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            uint64              `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string              `json:"name" gorm:"size:255;not null"`
	Description   string              `json:"description" gorm:"type:text"`
	SKU           string              `json:"sku" gorm:"column:sku;size:64;not null;uniqueIndex"`
	Price         decimal.Decimal     `json:"price" gorm:"type:decimal(10,2);not null"`
	CostPrice     decimal.NullDecimal `json:"costPrice" gorm:"type:decimal(10,2)"`
	CategoryID    *uint64             `json:"categoryId" gorm:"index"`
	StockQuantity int64               `json:"stockQuantity" gorm:"not null;default:0"`
	ImageURL      string              `json:"imageUrl" gorm:"size:512"`
	IsActive      bool                `json:"isActive" gorm:"not null;default:true"`
	CreatedAt     time.Time           `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time           `json:"updatedAt" gorm:"autoUpdateTime"`
}
