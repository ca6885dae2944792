package inventory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/rental/pkg/errors"
)

func TestNewInventory(t *testing.T) {
	inv, err := NewInventory(1, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, inv.Quantity)
	assert.Equal(t, 10, inv.Available)
	assert.Zero(t, inv.Reserved)
	assert.NoError(t, inv.Validate())

	_, err = NewInventory(0, 10)
	assert.ErrorIs(t, err, ErrInvalidProductID)

	_, err = NewInventory(1, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestInventory_ReserveRelease(t *testing.T) {
	inv, _ := NewInventory(7, 5)

	require.NoError(t, inv.Reserve(3))
	assert.Equal(t, 2, inv.Available)
	assert.Equal(t, 3, inv.Reserved)
	assert.NoError(t, inv.Validate())

	err := inv.Reserve(3)
	require.ErrorIs(t, err, ErrInsufficientStock)
	appErr := apperrors.GetAppError(err)
	assert.Equal(t, []Shortfall{{ProductID: 7, Requested: 3, Available: 2}}, appErr.Data)
	assert.Equal(t, 2, inv.Available, "failed reserve leaves counters untouched")

	require.NoError(t, inv.Release(3))
	assert.Equal(t, 5, inv.Available)
	assert.Zero(t, inv.Reserved)

	assert.ErrorIs(t, inv.Release(1), ErrInsufficientReserved)
	assert.ErrorIs(t, inv.Reserve(0), ErrInvalidQuantity)
}

func TestInventory_Restock(t *testing.T) {
	inv, _ := NewInventory(1, 5)
	require.NoError(t, inv.Reserve(5))
	require.NoError(t, inv.Restock(4))

	assert.Equal(t, 9, inv.Quantity)
	assert.Equal(t, 4, inv.Available)
	assert.Equal(t, 5, inv.Reserved)
	assert.NoError(t, inv.Validate())
}

func TestInventory_Validate(t *testing.T) {
	tests := []struct {
		name string
		inv  Inventory
		want error
	}{
		{"ok", Inventory{ProductID: 1, Quantity: 5, Reserved: 2, Available: 3}, nil},
		{"negative available", Inventory{ProductID: 1, Quantity: 1, Reserved: 2, Available: -1}, ErrNegativeStock},
		{"inconsistent", Inventory{ProductID: 1, Quantity: 5, Reserved: 2, Available: 2}, ErrInconsistentStock},
		{"no product", Inventory{}, ErrInvalidProductID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.inv.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want))
		})
	}
}

func TestInventory_Check(t *testing.T) {
	inv := &Inventory{ProductID: 3, Quantity: 10, Reserved: 6, Available: 4}
	assert.Equal(t, Availability{ProductID: 3, Available: 4, Sufficient: true}, inv.Check(4))
	assert.False(t, inv.Check(5).Sufficient)
	assert.False(t, inv.Check(0).Sufficient)
}

func TestLogs(t *testing.T) {
	after := &Inventory{ProductID: 2, Quantity: 10, Reserved: 3, Available: 7}

	reserve := NewReserveLog(after, 3, 11)
	assert.Equal(t, ChangeTypeReserve, reserve.ChangeType)
	assert.Equal(t, -3, reserve.Quantity)
	assert.Equal(t, 10, reserve.BeforeAvailable)
	assert.Equal(t, 7, reserve.AfterAvailable)
	assert.Equal(t, uint(11), reserve.OrderID)

	release := NewReleaseLog(after, 2, 11, "returned")
	assert.Equal(t, 5, release.BeforeAvailable)
	assert.Equal(t, "returned", release.Remark)

	restock := NewRestockLog(after, 7)
	assert.Equal(t, ChangeTypeRestock, restock.ChangeType)
	assert.Zero(t, restock.BeforeAvailable)
}
