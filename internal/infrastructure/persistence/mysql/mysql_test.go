package mysql

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/rental/internal/domain/booking"
	"github.com/xiebiao/rental/internal/domain/inventory"
	"github.com/xiebiao/rental/internal/domain/order"
	apperrors "github.com/xiebiao/rental/pkg/errors"
)

// testDB opens RENTAL_TEST_MYSQL_DSN and migrates it, skipping when unset.
// e.g. root:secret@tcp(127.0.0.1:3306)/rental_test?charset=utf8mb4&parseTime=True&loc=Local
func testDB(t *testing.T) *gorm.DB {
	dsn := os.Getenv("RENTAL_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("RENTAL_TEST_MYSQL_DSN not set")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// seedStock creates a fresh product with quantity units and removes it after the test.
func seedStock(t *testing.T, db *gorm.DB, quantity int) uint {
	t.Helper()
	productID := uint(time.Now().UnixNano() % 1_000_000_000)
	inv, err := inventory.NewInventory(productID, quantity)
	require.NoError(t, err)
	require.NoError(t, NewInventoryRepository(db).Create(context.Background(), inv))
	t.Cleanup(func() {
		db.Where("product_id = ?", productID).Delete(&InventoryModel{})
	})
	return productID
}

func TestInventory_ConcurrentReserveOneWins(t *testing.T) {
	db := testDB(t)
	repo := NewInventoryRepository(db)
	tx := NewTxManager(db)
	productID := seedStock(t, db, 5)

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = tx.Transaction(context.Background(), func(ctx context.Context) error {
				_, err := repo.Reserve(ctx, productID, 5)
				return err
			})
		}(i)
	}
	close(start)
	wg.Wait()

	var failed error
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		failed = err
	}
	require.Equal(t, 1, succeeded, "errors: %v", errs)
	require.ErrorIs(t, failed, inventory.ErrInsufficientStock)
	assert.Equal(t, []inventory.Shortfall{{ProductID: productID, Requested: 5, Available: 0}},
		apperrors.GetAppError(failed).Data)

	inv, err := repo.GetByProductID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 5, inv.Reserved)
	assert.Equal(t, 0, inv.Available)
	assert.NoError(t, inv.Validate())
}

func TestInventory_LockedReserveSerialises(t *testing.T) {
	db := testDB(t)
	repo := NewInventoryRepository(db)
	tx := NewTxManager(db)
	productID := seedStock(t, db, 5)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- tx.Transaction(context.Background(), func(ctx context.Context) error {
				locked, err := repo.LockByProductIDs(ctx, []uint{productID})
				if err != nil {
					return err
				}
				if !locked[productID].CanReserve(5) {
					return inventory.InsufficientStock([]inventory.Shortfall{{
						ProductID: productID, Requested: 5, Available: locked[productID].Available,
					}})
				}
				_, err = repo.Reserve(ctx, productID, 5)
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)

	var rejected int
	for err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
			rejected++
		}
	}
	assert.Equal(t, 1, rejected)
}

func TestInventory_ConditionalUpdates(t *testing.T) {
	db := testDB(t)
	repo := NewInventoryRepository(db)
	ctx := context.Background()
	productID := seedStock(t, db, 5)

	_, err := repo.Reserve(ctx, productID, 6)
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
	assert.Equal(t, []inventory.Shortfall{{ProductID: productID, Requested: 6, Available: 5}},
		apperrors.GetAppError(err).Data)

	inv, err := repo.Reserve(ctx, productID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, inv.Reserved)
	assert.Equal(t, 2, inv.Available)

	_, err = repo.Release(ctx, productID, 4)
	require.ErrorIs(t, err, inventory.ErrInsufficientReserved)
	inv, err = repo.GetByProductID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 3, inv.Reserved, "failed release leaves the row alone")

	inv, err = repo.Release(ctx, productID, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Reserved)
	assert.Equal(t, 5, inv.Available)

	_, err = repo.Reserve(ctx, 0, 1)
	assert.ErrorIs(t, err, inventory.ErrInventoryNotFound)
	_, err = repo.Release(ctx, 0, 1)
	assert.ErrorIs(t, err, inventory.ErrInventoryNotFound)
}

func TestInventory_RollbackOnError(t *testing.T) {
	db := testDB(t)
	repo := NewInventoryRepository(db)
	productID := seedStock(t, db, 5)

	err := NewTxManager(db).Transaction(context.Background(), func(ctx context.Context) error {
		if _, err := repo.Reserve(ctx, productID, 2); err != nil {
			return err
		}
		_, err := repo.Reserve(ctx, productID, 4)
		return err
	})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	inv, err := repo.GetByProductID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Reserved)
	assert.Equal(t, 5, inv.Available)
}

func TestUpdate_UnchangedRowIsNotMissing(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	bookings := NewBookingRepository(db)
	start := time.Now().Add(time.Hour)
	b, err := booking.NewBooking(booking.GenerateBookingNo(), 1, start, start.Add(24*time.Hour),
		[]booking.Item{{ProductID: 1, Quantity: 1, UnitPrice: 100, TotalPrice: 100}}, 100, 1)
	require.NoError(t, err)
	require.NoError(t, bookings.Create(ctx, b))
	t.Cleanup(func() {
		db.Where("booking_id = ?", b.ID).Delete(&BookingItemModel{})
		db.Unscoped().Delete(&BookingModel{}, b.ID)
	})

	require.NoError(t, bookings.Update(ctx, b))
	require.NoError(t, bookings.Update(ctx, b), "identical values")
	missing := *b
	missing.ID = 0
	assert.ErrorIs(t, bookings.Update(ctx, &missing), booking.ErrBookingNotFound)

	orders := NewOrderRepository(db)
	o, err := order.NewOrder(order.GenerateOrderNo(), b.ID, []order.Item{{ProductID: 1, Quantity: 1}}, nil,
		order.Pricing{TotalAmount: 100}, 0, 1)
	require.NoError(t, err)
	require.NoError(t, orders.Create(ctx, o))
	t.Cleanup(func() {
		db.Where("order_id = ?", o.ID).Delete(&OrderItemModel{})
		db.Unscoped().Delete(&OrderModel{}, o.ID)
	})

	require.NoError(t, orders.Update(ctx, o))
	require.NoError(t, orders.Update(ctx, o), "identical values")
	missingOrder := *o
	missingOrder.ID = 0
	assert.ErrorIs(t, orders.Update(ctx, &missingOrder), order.ErrOrderNotFound)
}
