package mysql

import (
	"context"
	"errors"
	"fmt"

	"checkout-service/internal/config"
	"checkout-service/internal/domain"
	"checkout-service/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) repository.PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return translate("insert payment", err)
	}
	return nil
}

func (r *paymentRepo) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.WithContext(ctx).Where("provider_order_id = ?", providerOrderID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find payment %s: %w", providerOrderID, err)
	}
	return &p, nil
}

// RecordVerification stores a verified payment and, when the payment is
// linked to a pending order it pays for in full, moves that order to
// processing. Both writes share one transaction. A payment linked to a
// canceled order is still stored and flagged for refund.
func (r *paymentRepo) RecordVerification(ctx context.Context, v domain.PaymentVerification) (*domain.VerificationOutcome, error) {
	out := &domain.VerificationOutcome{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Payment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("provider_order_id = ?", v.ProviderOrderID).
			First(&p).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			p = domain.Payment{
				ProviderOrderID: v.ProviderOrderID,
				Currency:        domain.DefaultCurrency,
				Status:          domain.PaymentCreated,
			}
		case err != nil:
			return fmt.Errorf("lock payment %s: %w", v.ProviderOrderID, err)
		}

		if p.Status == domain.PaymentVerified {
			if p.ProviderPaymentID != nil && *p.ProviderPaymentID == v.ProviderPaymentID {
				out.Payment = &p
				out.Replayed = true
				return nil
			}
			return fmt.Errorf("provider order %s already settled by another payment: %w", v.ProviderOrderID, domain.ErrConflict)
		}

		var order *domain.Order
		if v.OrderID != nil {
			if p.OrderID != nil && *p.OrderID != *v.OrderID {
				return fmt.Errorf("provider order %s is linked to order %d: %w", v.ProviderOrderID, *p.OrderID, domain.ErrConflict)
			}
			if p.OrderID == nil {
				// Linking from the callback is only allowed for a payment of
				// the order's exact total.
				if order, err = lockOrder(tx, *v.OrderID); err != nil {
					return err
				}
				if !p.Covers(order) {
					return fmt.Errorf("provider order %s (%d %s) for order %d: %w",
						v.ProviderOrderID, p.Amount, p.Currency, order.ID, domain.ErrPaymentMismatch)
				}
				p.OrderID = v.OrderID
			}
		}

		paymentID := v.ProviderPaymentID
		verifiedAt := v.VerifiedAt
		p.ProviderPaymentID = &paymentID
		p.Status = domain.PaymentVerified
		p.VerifiedAt = &verifiedAt
		if err := tx.Save(&p).Error; err != nil {
			return translate("save payment", err)
		}
		out.Payment = &p

		if p.OrderID == nil {
			return nil
		}
		if order == nil {
			if order, err = lockOrder(tx, *p.OrderID); err != nil {
				return err
			}
		}
		return settleOrder(tx, &p, order, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func lockOrder(tx *gorm.DB, id uint64) (*domain.Order, error) {
	var o domain.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %d: %w", id, domain.ErrOrderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock order %d: %w", id, err)
	}
	return &o, nil
}

// settleOrder moves a pending order the payment covers to processing.
// Orders already past pending are left alone.
func settleOrder(tx *gorm.DB, p *domain.Payment, o *domain.Order, out *domain.VerificationOutcome) error {
	log := config.GetLogger().WithFields(logrus.Fields{
		"orderId":         o.ID,
		"providerOrderId": p.ProviderOrderID,
		"amount":          p.Amount,
	})

	switch o.Status {
	case domain.StatusPending:
		if !p.Covers(o) {
			log.WithField("orderTotal", o.Total.StringFixed(2)).Warn("payment does not cover order, status left unchanged")
			return nil
		}
		err := tx.Model(o).Updates(map[string]any{"status": domain.StatusProcessing, "updated_at": *p.VerifiedAt}).Error
		if err != nil {
			return fmt.Errorf("advance order %d: %w", o.ID, err)
		}
		out.OrderAdvanced = true
	case domain.StatusCanceled:
		log.Warn("payment verified for a canceled order, refund required")
		out.OrderCanceled = true
	}
	return nil
}
