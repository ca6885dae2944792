package order

import (
	apperrors "github.com/xiebiao/rental/pkg/errors"
)

var (
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "order not found")

	// ErrOrderAlreadyExists a booking has at most one active order.
	ErrOrderAlreadyExists = apperrors.New(apperrors.ErrCodeOrderExists, "booking already has an active order")

	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "order status does not allow this operation")

	ErrOrderHasReturns = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "order with returns cannot be edited")

	ErrInvalidBooking      = apperrors.New(apperrors.ErrCodeInvalidParams, "booking is required")
	ErrInvalidOrderItems   = apperrors.New(apperrors.ErrCodeInvalidParams, "order needs at least one valid line")
	ErrInvalidQuantity     = apperrors.New(apperrors.ErrCodeInvalidParams, "quantity must be greater than 0")
	ErrInvalidPricing      = apperrors.New(apperrors.ErrCodeInvalidParams, "prices and totals must not be negative")
	ErrInvalidDispatchItem = apperrors.New(apperrors.ErrCodeInvalidParams, "invalid dispatch item")
	ErrInvalidReturnItem   = apperrors.New(apperrors.ErrCodeInvalidParams, "invalid return item")
	ErrBelowDispatched     = apperrors.New(apperrors.ErrCodeInvalidParams, "quantity cannot fall below what was dispatched")
)
