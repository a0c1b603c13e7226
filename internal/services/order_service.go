package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"checkout-service/internal/config"
	"checkout-service/internal/domain"
	rabbit "checkout-service/internal/infra/rabbitmq"
	"checkout-service/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	publisher rabbit.PublisherInterface
	now       func() time.Time
}

func NewOrderService(o repository.OrderRepository, p repository.ProductRepository, c repository.CustomerRepository, pub rabbit.PublisherInterface) *OrderService {
	return &OrderService{
		orders:    o,
		products:  p,
		customers: c,
		publisher: pub,
		now:       time.Now,
	}
}

// CreateOrder validates the order, checks every reference and then stores
// the order, its items and the stock decrements as one unit.
func (u *OrderService) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	order.ID = 0
	order.Status = domain.StatusPending
	if strings.TrimSpace(order.OrderNumber) == "" {
		order.OrderNumber = u.newOrderNumber()
	}

	if order.CustomerID != nil {
		c, err := u.customers.FindByID(ctx, *order.CustomerID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("customer %d: %w", *order.CustomerID, domain.ErrCustomerNotFound)
		}
	}

	if err := u.ensureProducts(ctx, order); err != nil {
		return nil, err
	}

	if err := u.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	saved, err := u.orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("order %d vanished after commit: %w", order.ID, domain.ErrOrderNotFound)
	}

	publishEvent(ctx, u.publisher, domain.EventOrderCreated, domain.OrderCreatedEvent{
		OrderID:     saved.ID,
		OrderNumber: saved.OrderNumber,
		CustomerID:  saved.CustomerID,
		Total:       saved.Total.StringFixed(2),
		ItemCount:   len(saved.Items),
		CreatedAt:   saved.CreatedAt,
	})

	return saved, nil
}

func (u *OrderService) ensureProducts(ctx context.Context, order *domain.Order) error {
	qty := order.Quantities()
	ids := make([]uint64, 0, len(qty))
	for _, it := range order.Items {
		if _, seen := qty[it.ProductID]; seen {
			ids = append(ids, it.ProductID)
			delete(qty, it.ProductID)
		}
	}

	found, err := u.products.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	known := make(map[uint64]struct{}, len(found))
	for _, p := range found {
		known[p.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("product %d: %w", id, domain.ErrProductNotFound)
		}
	}
	return nil
}

func (u *OrderService) newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("ORD-%s-%s", u.now().UTC().Format("20060102"), suffix)
}

func (u *OrderService) GetOrderByID(ctx context.Context, id uint64) (*domain.Order, error) {
	o, err := u.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (u *OrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return nil, domain.FieldError("startDate", "ltefield=endDate")
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, domain.FieldError("status", "oneof=pending processing shipped delivered canceled")
	}
	filter.Limit, filter.Offset = domain.Page(filter.Limit, filter.Offset)
	return u.orders.List(ctx, filter)
}

// UpdateOrderStatus applies one step of the status lifecycle. Canceling an
// order whose goods have not shipped puts them back in stock.
func (u *OrderService) UpdateOrderStatus(ctx context.Context, id uint64, status string) (*domain.Order, error) {
	if strings.TrimSpace(status) == "" {
		return nil, domain.FieldError("status", "required")
	}
	to, ok := domain.ParseOrderStatus(status)
	if !ok {
		return nil, domain.FieldError("status", "oneof=pending processing shipped delivered canceled")
	}

	order, err := u.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if from == to {
		return order, nil
	}
	if !from.CanTransitionTo(to) {
		return nil, &domain.TransitionError{From: from, To: to}
	}

	restock := to == domain.StatusCanceled && from.RestocksOnCancel()
	if err := u.orders.UpdateStatus(ctx, order, to, restock); err != nil {
		if !errors.Is(err, domain.ErrConflict) {
			config.LogError(config.GetLogger(), "OrderService", "UpdateOrderStatus", "status update failed",
				logrus.Fields{"orderId": id, "from": from, "to": to}, err)
		}
		return nil, err
	}

	updated, err := u.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	config.GetLogger().WithFields(logrus.Fields{
		"orderId":   id,
		"from":      from,
		"to":        to,
		"restocked": restock,
	}).Info("order status changed")

	publishEvent(ctx, u.publisher, domain.EventOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:   id,
		From:      from,
		To:        to,
		Restocked: restock,
		ChangedAt: updated.UpdatedAt,
	})

	return updated, nil
}
