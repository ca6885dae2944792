package inventory

import "time"

// Log one counter change, written in the same transaction as the change.
type Log struct {
	ID              uint
	ProductID       uint
	ChangeType      ChangeType
	Quantity        int // signed change of Available
	BeforeAvailable int
	AfterAvailable  int
	OrderID         uint // zero for restocks
	Remark          string
	CreatedAt       time.Time
}

type ChangeType string

const (
	ChangeTypeReserve ChangeType = "RESERVE"
	ChangeTypeRelease ChangeType = "RELEASE"
	ChangeTypeRestock ChangeType = "RESTOCK"
)

// NewReserveLog builds the log for a reservation; after is the record after the update.
func NewReserveLog(after *Inventory, quantity int, orderID uint) *Log {
	return &Log{
		ProductID:       after.ProductID,
		ChangeType:      ChangeTypeReserve,
		Quantity:        -quantity,
		BeforeAvailable: after.Available + quantity,
		AfterAvailable:  after.Available,
		OrderID:         orderID,
		CreatedAt:       time.Now(),
	}
}

// NewReleaseLog builds the log for a release; reason says why (order update, return).
func NewReleaseLog(after *Inventory, quantity int, orderID uint, reason string) *Log {
	return &Log{
		ProductID:       after.ProductID,
		ChangeType:      ChangeTypeRelease,
		Quantity:        quantity,
		BeforeAvailable: after.Available - quantity,
		AfterAvailable:  after.Available,
		OrderID:         orderID,
		Remark:          reason,
		CreatedAt:       time.Now(),
	}
}

// NewRestockLog builds the log for a stock addition.
func NewRestockLog(after *Inventory, quantity int) *Log {
	return &Log{
		ProductID:       after.ProductID,
		ChangeType:      ChangeTypeRestock,
		Quantity:        quantity,
		BeforeAvailable: after.Available - quantity,
		AfterAvailable:  after.Available,
		CreatedAt:       time.Now(),
	}
}
