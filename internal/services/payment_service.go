package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"checkout-service/internal/config"
	"checkout-service/internal/domain"
	"checkout-service/internal/infra"
	rabbit "checkout-service/internal/infra/rabbitmq"
	"checkout-service/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PaymentLocker serializes work on one key across service instances.
type PaymentLocker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

type PaymentIntentRequest struct {
	Amount   decimal.Decimal
	Currency string
	Receipt  string
	Notes    map[string]string
	OrderID  *uint64
}

type PaymentVerificationRequest struct {
	ProviderOrderID   string
	ProviderPaymentID string
	Signature         string
	OrderID           *uint64
}

type PaymentService struct {
	cfg       config.RazorpayConfig
	provider  infra.PaymentProviderInterface
	payments  repository.PaymentRepository
	orders    repository.OrderRepository
	publisher rabbit.PublisherInterface
	locker    PaymentLocker
	now       func() time.Time
}

func NewPaymentService(cfg config.RazorpayConfig, provider infra.PaymentProviderInterface, payments repository.PaymentRepository, orders repository.OrderRepository, pub rabbit.PublisherInterface) *PaymentService {
	return &PaymentService{
		cfg:       cfg,
		provider:  provider,
		payments:  payments,
		orders:    orders,
		publisher: pub,
		now:       time.Now,
	}
}

// SetLocker enables cross-instance locking of verification callbacks.
func (s *PaymentService) SetLocker(l PaymentLocker) {
	s.locker = l
}

func (s *PaymentService) PublicKey() (string, error) {
	if !s.cfg.Configured() {
		return "", domain.ErrPaymentNotConfigured
	}
	return s.cfg.KeyID, nil
}

// CreatePaymentIntent opens a provider order for amount (major units) and
// returns the provider's order object.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, in PaymentIntentRequest) (*infra.ProviderOrder, error) {
	if !s.cfg.Configured() || s.provider == nil {
		return nil, domain.ErrPaymentNotConfigured
	}
	if !in.Amount.IsPositive() {
		return nil, domain.FieldError("amount", "gt=0")
	}
	minor := domain.MinorUnits(in.Amount)
	if minor <= 0 {
		return nil, domain.FieldError("amount", "gt=0")
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	receipt := strings.TrimSpace(in.Receipt)
	if receipt == "" {
		receipt = "receipt_" + strconv.FormatInt(s.now().UnixMilli(), 10)
	}

	notes := make(map[string]string, len(in.Notes)+1)
	for k, v := range in.Notes {
		notes[k] = v
	}
	if in.OrderID != nil {
		o, err := s.orders.FindByID(ctx, *in.OrderID)
		if err != nil {
			return nil, err
		}
		if o == nil {
			return nil, fmt.Errorf("order %d: %w", *in.OrderID, domain.ErrOrderNotFound)
		}
		// The intent must pay for the whole order so verification can settle it.
		if minor != domain.MinorUnits(o.Total) {
			return nil, domain.FieldError("amount", "eq=order.total")
		}
		if currency != domain.DefaultCurrency {
			return nil, domain.FieldError("currency", "eq="+domain.DefaultCurrency)
		}
		if _, ok := notes["orderId"]; !ok {
			notes["orderId"] = strconv.FormatUint(o.ID, 10)
		}
	}

	po, err := s.provider.CreateOrder(ctx, infra.CreateOrderRequest{
		Amount:   minor,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		config.LogError(config.GetLogger(), "PaymentService", "CreatePaymentIntent", "provider order failed",
			logrus.Fields{"amount": minor, "currency": currency, "receipt": receipt}, err)
		return nil, err
	}

	record := &domain.Payment{
		ProviderOrderID: po.ID,
		OrderID:         in.OrderID,
		Amount:          minor,
		Currency:        currency,
		Receipt:         receipt,
		Status:          domain.PaymentCreated,
	}
	if err := s.payments.Create(ctx, record); err != nil {
		// The provider order already exists; verification recreates the record.
		config.LogError(config.GetLogger(), "PaymentService", "CreatePaymentIntent", "persist payment record",
			logrus.Fields{"providerOrderId": po.ID}, err)
	}

	return po, nil
}

// VerifyPayment checks the checkout signature and, when it matches, records
// the payment and advances a pending linked order it fully pays for. A bad
// signature is reported as ErrInvalidSignature and writes nothing.
func (s *PaymentService) VerifyPayment(ctx context.Context, in PaymentVerificationRequest) (*domain.VerificationOutcome, error) {
	if !s.cfg.Configured() {
		return nil, domain.ErrPaymentNotConfigured
	}

	verr := domain.NewValidationError()
	if strings.TrimSpace(in.ProviderOrderID) == "" {
		verr.Add("razorpay_order_id", "required")
	}
	if strings.TrimSpace(in.ProviderPaymentID) == "" {
		verr.Add("razorpay_payment_id", "required")
	}
	if strings.TrimSpace(in.Signature) == "" {
		verr.Add("razorpay_signature", "required")
	}
	if !verr.Empty() {
		return nil, verr
	}

	if !infra.VerifySignature(s.cfg.KeySecret, in.ProviderOrderID, in.ProviderPaymentID, in.Signature) {
		config.GetLogger().WithField("providerOrderId", in.ProviderOrderID).Warn("payment signature mismatch")
		return nil, domain.ErrInvalidSignature
	}

	if s.locker != nil {
		release, err := s.locker.Lock(ctx, "lock:payment:"+in.ProviderOrderID)
		switch {
		case errors.Is(err, domain.ErrConflict):
			return nil, fmt.Errorf("payment %s is being verified: %w", in.ProviderOrderID, err)
		case err != nil:
			config.GetLogger().WithField("providerOrderId", in.ProviderOrderID).Warnf("payment lock unavailable, continuing: %v", err)
		default:
			defer release()
		}
	}

	outcome, err := s.payments.RecordVerification(ctx, domain.PaymentVerification{
		ProviderOrderID:   in.ProviderOrderID,
		ProviderPaymentID: in.ProviderPaymentID,
		OrderID:           in.OrderID,
		VerifiedAt:        s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	log := config.GetLogger().WithFields(logrus.Fields{
		"providerOrderId":   in.ProviderOrderID,
		"providerPaymentId": in.ProviderPaymentID,
		"orderAdvanced":     outcome.OrderAdvanced,
		"orderCanceled":     outcome.OrderCanceled,
	})
	if outcome.Replayed {
		log.Info("payment verification replayed")
		return outcome, nil
	}
	if outcome.OrderCanceled {
		log.Warn("payment verified for a canceled order, refund required")
	} else {
		log.Info("payment verified")
	}

	p := outcome.Payment
	evt := domain.PaymentVerifiedEvent{
		ProviderOrderID:   in.ProviderOrderID,
		ProviderPaymentID: in.ProviderPaymentID,
		RequiresRefund:    outcome.OrderCanceled,
	}
	if p != nil {
		evt.OrderID = p.OrderID
		evt.Amount = p.Amount
		evt.Currency = p.Currency
		if p.VerifiedAt != nil {
			evt.VerifiedAt = *p.VerifiedAt
		}
	}
	publishEvent(ctx, s.publisher, domain.EventPaymentVerified, evt)

	return outcome, nil
}
