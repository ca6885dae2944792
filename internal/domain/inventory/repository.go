package inventory

import "context"

// Repository inventory persistence.
// Reserve, Release and Restock are single conditional updates; they return the
// record as it is after the update. Reserve fails with ErrInsufficientStock and
// Release with ErrInsufficientReserved without touching the row.
type Repository interface {
	GetByProductID(ctx context.Context, productID uint) (*Inventory, error)

	// LockByProductIDs reads the records FOR UPDATE. Missing products are absent from the map.
	LockByProductIDs(ctx context.Context, productIDs []uint) (map[uint]*Inventory, error)

	// Create fails with ErrInventoryExists when the product already has a record.
	Create(ctx context.Context, inv *Inventory) error

	Reserve(ctx context.Context, productID uint, quantity int) (*Inventory, error)

	Release(ctx context.Context, productID uint, quantity int) (*Inventory, error)

	Restock(ctx context.Context, productID uint, quantity int) (*Inventory, error)
}

// LogRepository inventory change log.
type LogRepository interface {
	Create(ctx context.Context, log *Log) error

	// ListByProductID newest first.
	ListByProductID(ctx context.Context, productID uint, limit int) ([]*Log, error)

	ListByOrderID(ctx context.Context, orderID uint) ([]*Log, error)
}
