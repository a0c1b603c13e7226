package mysql

import (
	"context"
	"testing"

	"checkout-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryRepo_Create_ReceivesStock(t *testing.T) {
	db := newTestDB(t)
	repo := NewInventoryRepository(db)
	p := seedProduct(t, db, "SKU-1", "10.00", 10)

	tx := &domain.InventoryTransaction{ProductID: p.ID, Type: domain.InventoryReceived, Quantity: 50, Reference: "PO-7"}
	require.NoError(t, repo.Create(context.Background(), tx))

	assert.NotZero(t, tx.ID)
	assert.Equal(t, int64(60), stockOf(t, db, p.ID))

	var rows []domain.InventoryTransaction
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(50), rows[0].Quantity)
}

func TestInventoryRepo_Create_NeverGoesNegative(t *testing.T) {
	db := newTestDB(t)
	repo := NewInventoryRepository(db)
	p := seedProduct(t, db, "SKU-1", "10.00", 4)

	err := repo.Create(context.Background(), &domain.InventoryTransaction{ProductID: p.ID, Type: domain.InventoryAdjustment, Quantity: -5})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(4), stockOf(t, db, p.ID))
	assert.Equal(t, int64(0), count(t, db, &domain.InventoryTransaction{}))

	require.NoError(t, repo.Create(context.Background(), &domain.InventoryTransaction{ProductID: p.ID, Type: domain.InventoryShipped, Quantity: -4}))
	assert.Equal(t, int64(0), stockOf(t, db, p.ID))
}

func TestInventoryRepo_Create_UnknownProduct(t *testing.T) {
	db := newTestDB(t)
	repo := NewInventoryRepository(db)

	err := repo.Create(context.Background(), &domain.InventoryTransaction{ProductID: 404, Type: domain.InventoryReceived, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, int64(0), count(t, db, &domain.InventoryTransaction{}))
}

func TestInventoryRepo_Create_OutboundForUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	repo := NewInventoryRepository(db)

	err := repo.Create(context.Background(), &domain.InventoryTransaction{ProductID: 404, Type: domain.InventoryShipped, Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(0), count(t, db, &domain.InventoryTransaction{}))
}

func TestInventoryRepo_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewInventoryRepository(db)
	p1 := seedProduct(t, db, "SKU-1", "10.00", 10)
	p2 := seedProduct(t, db, "SKU-2", "10.00", 10)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.InventoryTransaction{ProductID: p1.ID, Type: domain.InventoryReceived, Quantity: 5}))
	require.NoError(t, repo.Create(ctx, &domain.InventoryTransaction{ProductID: p1.ID, Type: domain.InventoryAdjustment, Quantity: -2}))
	require.NoError(t, repo.Create(ctx, &domain.InventoryTransaction{ProductID: p2.ID, Type: domain.InventoryReceived, Quantity: 1}))

	all, err := repo.List(ctx, domain.InventoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.NotNil(t, all[0].Product)
	assert.Equal(t, p2.ID, all[0].ProductID)

	forP1, err := repo.List(ctx, domain.InventoryFilter{ProductID: &p1.ID})
	require.NoError(t, err)
	assert.Len(t, forP1, 2)

	received := domain.InventoryReceived
	byType, err := repo.List(ctx, domain.InventoryFilter{Type: &received})
	require.NoError(t, err)
	assert.Len(t, byType, 2)
}

func TestProductAndCustomerRepos(t *testing.T) {
	db := newTestDB(t)
	products := NewProductRepository(db)
	customers := NewCustomerRepository(db)
	p1 := seedProduct(t, db, "SKU-1", "10.00", 1)
	p2 := seedProduct(t, db, "SKU-2", "10.00", 1)
	c := seedCustomer(t, db, "a@example.com")
	ctx := context.Background()

	got, err := products.FindByID(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, "SKU-1", got.SKU)

	none, err := products.FindByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, none)

	many, err := products.FindByIDs(ctx, []uint64{p2.ID, 999, p1.ID})
	require.NoError(t, err)
	require.Len(t, many, 2)
	assert.Equal(t, p1.ID, many[0].ID)

	empty, err := products.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	cust, err := customers.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", cust.Email)

	noCust, err := customers.FindByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, noCust)
}
