package mysql

import (
	"fmt"
	"testing"

	"checkout-service/internal/domain"
	dbinfra "checkout-service/internal/infra/mysql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a private in-memory SQLite database with the full schema.
// One connection keeps every goroutine on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), dbinfra.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(dbinfra.Models()...))
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedProduct(t *testing.T, db *gorm.DB, sku string, price string, stock int64) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: "Product " + sku, SKU: sku, Price: dec(price), StockQuantity: stock, IsActive: true}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedCustomer(t *testing.T, db *gorm.DB, email string) *domain.Customer {
	t.Helper()
	c := &domain.Customer{Email: email, FullName: "Test Customer"}
	require.NoError(t, db.Create(c).Error)
	return c
}

func stockOf(t *testing.T, db *gorm.DB, productID uint64) int64 {
	t.Helper()
	var p domain.Product
	require.NoError(t, db.First(&p, productID).Error)
	return p.StockQuantity
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

// newOrder builds a pending order; lines are (productID, quantity, unit price).
func newOrder(number string, customerID *uint64, lines ...orderLine) *domain.Order {
	o := &domain.Order{
		OrderNumber: number,
		CustomerID:  customerID,
		Status:      domain.StatusPending,
	}
	total := decimal.Zero
	for _, l := range lines {
		lineTotal := dec(l.price).Mul(decimal.NewFromInt(l.qty))
		o.Items = append(o.Items, domain.OrderItem{
			ProductID: l.productID,
			Quantity:  l.qty,
			Price:     dec(l.price),
			Total:     lineTotal,
		})
		total = total.Add(lineTotal)
	}
	o.Total = total
	return o
}

type orderLine struct {
	productID uint64
	qty       int64
	price     string
}
