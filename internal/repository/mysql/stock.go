package mysql

import (
	"fmt"
	"time"

	"checkout-service/internal/domain"

	"gorm.io/gorm"
)

// adjustStock applies delta to a product's stock with a single conditional
// UPDATE. Decrements only match rows that still hold enough stock, so two
// writers racing for the last units cannot both succeed. A missing product
// is reported as not found, whatever the sign of delta.
func adjustStock(tx *gorm.DB, productID uint64, delta int64, now time.Time) error {
	q := tx.Model(&domain.Product{}).Where("id = ?", productID)
	if delta < 0 {
		q = q.Where("stock_quantity >= ?", -delta)
	}

	res := q.Updates(map[string]any{
		"stock_quantity": gorm.Expr("stock_quantity + ?", delta),
		"updated_at":     now,
	})
	if res.Error != nil {
		return fmt.Errorf("adjust stock of product %d: %w", productID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var found int64
	if err := tx.Model(&domain.Product{}).Where("id = ?", productID).Count(&found).Error; err != nil {
		return fmt.Errorf("look up product %d: %w", productID, err)
	}
	if found == 0 {
		return fmt.Errorf("adjust stock of product %d: %w", productID, domain.ErrProductNotFound)
	}
	return &domain.InsufficientStockError{ProductID: productID, Requested: -delta}
}
