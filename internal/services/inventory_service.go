package services

import (
	"context"
	"fmt"

	"checkout-service/internal/config"
	"checkout-service/internal/domain"
	"checkout-service/internal/repository"

	"github.com/sirupsen/logrus"
)

type InventoryService struct {
	inventory repository.InventoryRepository
	products  repository.ProductRepository
}

func NewInventoryService(i repository.InventoryRepository, p repository.ProductRepository) *InventoryService {
	return &InventoryService{inventory: i, products: p}
}

// RecordTransaction stores a stock movement and applies it to the product.
// Outbound movements never take stock below zero.
func (s *InventoryService) RecordTransaction(ctx context.Context, t *domain.InventoryTransaction) (*domain.InventoryTransaction, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.ID = 0

	if _, err := s.GetProduct(ctx, t.ProductID); err != nil {
		return nil, err
	}

	if err := s.inventory.Create(ctx, t); err != nil {
		return nil, err
	}

	p, err := s.products.FindByID(ctx, t.ProductID)
	if err != nil {
		config.LogError(config.GetLogger(), "InventoryService", "RecordTransaction", "reload product",
			logrus.Fields{"productId": t.ProductID}, err)
	} else {
		t.Product = p
	}

	config.GetLogger().WithFields(logrus.Fields{
		"productId": t.ProductID,
		"type":      t.Type,
		"quantity":  t.Quantity,
	}).Info("inventory transaction recorded")
	return t, nil
}

func (s *InventoryService) ListTransactions(ctx context.Context, filter domain.InventoryFilter) ([]domain.InventoryTransaction, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return nil, domain.FieldError("startDate", "ltefield=endDate")
	}
	filter.Limit, filter.Offset = domain.Page(filter.Limit, filter.Offset)
	return s.inventory.List(ctx, filter)
}

func (s *InventoryService) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrProductNotFound)
	}
	return p, nil
}
