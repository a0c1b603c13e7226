package mysql

import (
	"context"
	"fmt"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type inventoryRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewInventoryRepository(db *gorm.DB) repository.InventoryRepository {
	return &inventoryRepo{db: db, now: time.Now}
}

func (r *inventoryRepo) Create(ctx context.Context, t *domain.InventoryTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return translate("insert inventory transaction", err)
		}
		return adjustStock(tx, t.ProductID, t.Quantity, r.now())
	})
}

func (r *inventoryRepo) List(ctx context.Context, filter domain.InventoryFilter) ([]domain.InventoryTransaction, error) {
	limit, offset := domain.Page(filter.Limit, filter.Offset)
	q := r.db.WithContext(ctx).Preload("Product")
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.StartDate != nil {
		q = q.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("created_at <= ?", *filter.EndDate)
	}

	out := []domain.InventoryTransaction{}
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list inventory transactions: %w", err)
	}
	return out, nil
}
