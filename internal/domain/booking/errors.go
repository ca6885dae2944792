package booking

import (
	apperrors "github.com/xiebiao/rental/pkg/errors"
)

var (
	ErrBookingNotFound = apperrors.New(apperrors.ErrCodeBookingNotFound, "booking not found")

	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "booking status does not allow this operation")

	ErrInvalidCustomer = apperrors.New(apperrors.ErrCodeInvalidParams, "customer is required")
	ErrInvalidWindow   = apperrors.New(apperrors.ErrCodeInvalidParams, "booking end must be after start")
	ErrInvalidItems    = apperrors.New(apperrors.ErrCodeInvalidParams, "booking items must not be empty and need a product")
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "quantity must be greater than 0")
	ErrInvalidPrice    = apperrors.New(apperrors.ErrCodeInvalidParams, "prices must not be negative")
)
