package inventory

import (
	apperrors "github.com/xiebiao/rental/pkg/errors"
)

var (
	ErrInventoryNotFound = apperrors.New(apperrors.ErrCodeInventoryNotFound, "inventory record not found")

	// ErrInsufficientStock carries []Shortfall as data.
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "insufficient stock")

	ErrInventoryExists = apperrors.New(apperrors.ErrCodeDuplicateEntry, "inventory record already exists")

	ErrInsufficientReserved = apperrors.New(apperrors.ErrCodeBusinessError, "release exceeds reserved stock")

	ErrInvalidProductID = apperrors.New(apperrors.ErrCodeInvalidParams, "invalid product id")
	ErrInvalidQuantity  = apperrors.New(apperrors.ErrCodeInvalidParams, "quantity must be greater than 0")

	ErrNegativeStock     = apperrors.New(apperrors.ErrCodeInternal, "stock counters must not be negative")
	ErrInconsistentStock = apperrors.New(apperrors.ErrCodeInternal, "available does not match quantity minus reserved")
)

// InsufficientStock builds the error reporting every shortfall of one request.
func InsufficientStock(shortfalls []Shortfall) error {
	return ErrInsufficientStock.WithData(shortfalls)
}
