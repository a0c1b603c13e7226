package mysql

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"checkout-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestOrderRepo_Create_DecrementsStock(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	p := seedProduct(t, db, "SKU-1", "10.00", 5)

	order := newOrder("ORD-1", nil, orderLine{p.ID, 2, "10.00"})
	require.NoError(t, repo.Create(context.Background(), order))

	assert.NotZero(t, order.ID)
	assert.Equal(t, int64(3), stockOf(t, db, p.ID))
	assert.Equal(t, int64(1), count(t, db, &domain.OrderItem{}))
	require.Len(t, order.Items, 1)
	assert.Equal(t, order.ID, order.Items[0].OrderID)
}

func TestOrderRepo_Create_InsufficientStockRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	p1 := seedProduct(t, db, "SKU-1", "10.00", 5)
	p2 := seedProduct(t, db, "SKU-2", "4.00", 1)

	order := newOrder("ORD-1", nil, orderLine{p1.ID, 2, "10.00"}, orderLine{p2.ID, 5, "4.00"})
	err := repo.Create(context.Background(), order)

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, p2.ID, stockErr.ProductID)
	assert.Zero(t, order.ID)

	assert.Equal(t, int64(0), count(t, db, &domain.Order{}))
	assert.Equal(t, int64(0), count(t, db, &domain.OrderItem{}))
	assert.Equal(t, int64(5), stockOf(t, db, p1.ID))
	assert.Equal(t, int64(1), stockOf(t, db, p2.ID))
}

func TestOrderRepo_Create_ItemInsertFailureRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	p := seedProduct(t, db, "SKU-1", "10.00", 5)

	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_items", func(tx *gorm.DB) {
		if tx.Statement.Table == "order_items" {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))

	err := repo.Create(context.Background(), newOrder("ORD-1", nil, orderLine{p.ID, 2, "10.00"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Equal(t, int64(0), count(t, db, &domain.Order{}))
	assert.Equal(t, int64(0), count(t, db, &domain.OrderItem{}))
	assert.Equal(t, int64(5), stockOf(t, db, p.ID))
}

func TestOrderRepo_Create_DuplicateOrderNumber(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	p := seedProduct(t, db, "SKU-1", "10.00", 5)

	require.NoError(t, repo.Create(context.Background(), newOrder("ORD-DUP", nil, orderLine{p.ID, 1, "10.00"})))
	err := repo.Create(context.Background(), newOrder("ORD-DUP", nil, orderLine{p.ID, 1, "10.00"}))

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int64(4), stockOf(t, db, p.ID))
	assert.Equal(t, int64(1), count(t, db, &domain.Order{}))
}

func TestOrderRepo_Create_SameProductOnTwoLines(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	p := seedProduct(t, db, "SKU-1", "10.00", 3)

	err := repo.Create(context.Background(), newOrder("ORD-1", nil, orderLine{p.ID, 2, "10.00"}, orderLine{p.ID, 2, "10.00"}))

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(3), stockOf(t, db, p.ID))
}

func TestOrderRepo_Create_ConcurrentOrdersNeverOversell(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	p := seedProduct(t, db, "SKU-1", "1.00", 10)

	const buyers = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Create(context.Background(), newOrder(fmt.Sprintf("ORD-%02d", i), nil, orderLine{p.ID, 1, "1.00"}))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, buyers-10, rejected)
	assert.Equal(t, int64(0), stockOf(t, db, p.ID))
	assert.Equal(t, int64(10), count(t, db, &domain.Order{}))
}

func TestOrderRepo_FindByID_LoadsRelations(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	c := seedCustomer(t, db, "buyer@example.com")
	p1 := seedProduct(t, db, "SKU-1", "10.00", 5)
	p2 := seedProduct(t, db, "SKU-2", "2.50", 5)

	order := newOrder("ORD-1", &c.ID, orderLine{p2.ID, 2, "2.50"}, orderLine{p1.ID, 1, "10.00"})
	order.ShippingAddress = datatypes.JSON(`{"city":"Pune"}`)
	require.NoError(t, repo.Create(context.Background(), order))

	got, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, domain.StatusPending, got.Status)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "buyer@example.com", got.Customer.Email)
	require.Len(t, got.Items, 2)
	assert.Equal(t, p2.ID, got.Items[0].ProductID)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "SKU-2", got.Items[0].Product.SKU)
	assert.True(t, dec("15.00").Equal(got.Total))
	assert.JSONEq(t, `{"city":"Pune"}`, string(got.ShippingAddress))

	missing, err := repo.FindByID(context.Background(), 9999)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOrderRepo_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	c := seedCustomer(t, db, "buyer@example.com")
	p := seedProduct(t, db, "SKU-1", "1.00", 100)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		var cid *uint64
		if i%2 == 0 {
			cid = &c.ID
		}
		require.NoError(t, repo.Create(ctx, newOrder(fmt.Sprintf("ORD-%d", i), cid, orderLine{p.ID, 1, "1.00"})))
	}
	require.NoError(t, db.Model(&domain.Order{}).Where("order_number = ?", "ORD-4").Update("status", domain.StatusShipped).Error)

	all, err := repo.List(ctx, domain.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "ORD-4", all[0].OrderNumber)

	byCustomer, err := repo.List(ctx, domain.OrderFilter{CustomerID: &c.ID})
	require.NoError(t, err)
	assert.Len(t, byCustomer, 3)

	shipped := domain.StatusShipped
	byStatus, err := repo.List(ctx, domain.OrderFilter{Status: &shipped})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "ORD-4", byStatus[0].OrderNumber)

	page, err := repo.List(ctx, domain.OrderFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "ORD-2", page[0].OrderNumber)

	future := time.Now().Add(time.Hour)
	none, err := repo.List(ctx, domain.OrderFilter{StartDate: &future})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderRepo_UpdateStatus(t *testing.T) {
	t.Run("cancel with restock writes return transactions", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewOrderRepository(db)
		p1 := seedProduct(t, db, "SKU-1", "10.00", 5)
		p2 := seedProduct(t, db, "SKU-2", "1.00", 5)
		ctx := context.Background()

		order := newOrder("ORD-1", nil, orderLine{p1.ID, 2, "10.00"}, orderLine{p2.ID, 3, "1.00"})
		require.NoError(t, repo.Create(ctx, order))
		assert.Equal(t, int64(3), stockOf(t, db, p1.ID))

		loaded, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateStatus(ctx, loaded, domain.StatusCanceled, true))

		assert.Equal(t, int64(5), stockOf(t, db, p1.ID))
		assert.Equal(t, int64(5), stockOf(t, db, p2.ID))

		var returns []domain.InventoryTransaction
		require.NoError(t, db.Order("product_id").Find(&returns).Error)
		require.Len(t, returns, 2)
		assert.Equal(t, domain.InventoryReturn, returns[0].Type)
		assert.Equal(t, int64(2), returns[0].Quantity)
		assert.Equal(t, "ORD-1", returns[0].Reference)

		after, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCanceled, after.Status)
	})

	t.Run("plain transition leaves stock alone", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewOrderRepository(db)
		p := seedProduct(t, db, "SKU-1", "10.00", 5)
		ctx := context.Background()

		order := newOrder("ORD-1", nil, orderLine{p.ID, 2, "10.00"})
		require.NoError(t, repo.Create(ctx, order))
		loaded, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)

		require.NoError(t, repo.UpdateStatus(ctx, loaded, domain.StatusProcessing, false))
		assert.Equal(t, int64(3), stockOf(t, db, p.ID))
		assert.Equal(t, int64(0), count(t, db, &domain.InventoryTransaction{}))
	})

	t.Run("stale status is a conflict", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewOrderRepository(db)
		p := seedProduct(t, db, "SKU-1", "10.00", 5)
		ctx := context.Background()

		order := newOrder("ORD-1", nil, orderLine{p.ID, 2, "10.00"})
		require.NoError(t, repo.Create(ctx, order))
		stale, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)

		fresh, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateStatus(ctx, fresh, domain.StatusCanceled, true))

		err = repo.UpdateStatus(ctx, stale, domain.StatusCanceled, true)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, int64(5), stockOf(t, db, p.ID))
		assert.Equal(t, int64(1), count(t, db, &domain.InventoryTransaction{}))
	})
}

func TestStockLedgerBalances(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db)
	inventory := NewInventoryRepository(db)
	p := seedProduct(t, db, "SKU-1", "5.00", 20)
	ctx := context.Background()

	require.NoError(t, orders.Create(ctx, newOrder("ORD-1", nil, orderLine{p.ID, 3, "5.00"})))
	second := newOrder("ORD-2", nil, orderLine{p.ID, 4, "5.00"})
	require.NoError(t, orders.Create(ctx, second))
	require.NoError(t, inventory.Create(ctx, &domain.InventoryTransaction{ProductID: p.ID, Type: domain.InventoryReceived, Quantity: 10}))
	require.NoError(t, inventory.Create(ctx, &domain.InventoryTransaction{ProductID: p.ID, Type: domain.InventoryAdjustment, Quantity: -2}))
	assert.ErrorIs(t, orders.Create(ctx, newOrder("ORD-3", nil, orderLine{p.ID, 100, "5.00"})), domain.ErrInsufficientStock)

	loaded, err := orders.FindByID(ctx, second.ID)
	require.NoError(t, err)
	require.NoError(t, orders.UpdateStatus(ctx, loaded, domain.StatusCanceled, true))

	var txSum, itemSum int64
	require.NoError(t, db.Model(&domain.InventoryTransaction{}).Where("product_id = ?", p.ID).Select("COALESCE(SUM(quantity), 0)").Scan(&txSum).Error)
	require.NoError(t, db.Model(&domain.OrderItem{}).Where("product_id = ?", p.ID).Select("COALESCE(SUM(quantity), 0)").Scan(&itemSum).Error)

	assert.Equal(t, int64(20)+txSum-itemSum, stockOf(t, db, p.ID))
	assert.Equal(t, int64(25), stockOf(t, db, p.ID))
}
