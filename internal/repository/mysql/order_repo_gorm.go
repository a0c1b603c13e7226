package mysql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"checkout-service/internal/config"
	"checkout-service/internal/domain"
	"checkout-service/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type orderRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db, now: time.Now}
}

// Create inserts the order, its items and every stock decrement in one
// transaction. Any failure rolls all of it back.
func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	items := order.Items
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order.Items = nil
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return translate("insert order", err)
		}
		if order.ID == 0 {
			return errors.New("insert order: no id assigned")
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return translate("insert order items", err)
		}

		// Fixed product order keeps concurrent orders from deadlocking
		// on each other's rows.
		now := r.now()
		qty := (&domain.Order{Items: items}).Quantities()
		ids := make([]uint64, 0, len(qty))
		for id := range qty {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			if err := adjustStock(tx, id, -qty[id], now); err != nil {
				return err
			}
		}
		return nil
	})
	order.Items = items
	if err != nil {
		order.ID = 0
		config.GetLogger().WithField("orderNumber", order.OrderNumber).Warnf("order create rolled back: %v", err)
		return err
	}

	config.GetLogger().WithField("orderId", order.ID).Info("order saved")
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	err := r.withRelations(r.db.WithContext(ctx)).First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order %d: %w", id, err)
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	limit, offset := domain.Page(filter.Limit, filter.Offset)
	q := r.withRelations(r.db.WithContext(ctx))
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.StartDate != nil {
		q = q.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("created_at <= ?", *filter.EndDate)
	}

	out := []domain.Order{}
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

// UpdateStatus moves the order from its current status to `to`. The
// WHERE on the old status makes a concurrent change surface as a conflict
// instead of being overwritten. With restock set, every line is returned to
// stock and logged as a return inventory transaction.
func (r *orderRepo) UpdateStatus(ctx context.Context, order *domain.Order, to domain.OrderStatus, restock bool) error {
	now := r.now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(map[string]any{"status": to, "updated_at": now})
		if res.Error != nil {
			return fmt.Errorf("update order %d status: %w", order.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %d changed concurrently: %w", order.ID, domain.ErrConflict)
		}

		if !restock {
			return nil
		}
		for _, it := range order.Items {
			if err := adjustStock(tx, it.ProductID, it.Quantity, now); err != nil {
				return err
			}
			ret := domain.InventoryTransaction{
				ProductID: it.ProductID,
				Type:      domain.InventoryReturn,
				Quantity:  it.Quantity,
				Reference: order.OrderNumber,
				Notes:     "order canceled",
			}
			if err := tx.Omit(clause.Associations).Create(&ret).Error; err != nil {
				return translate("insert restock transaction", err)
			}
		}
		return nil
	})
}

func (r *orderRepo) withRelations(q *gorm.DB) *gorm.DB {
	return q.Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Product")
}
