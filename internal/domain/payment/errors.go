package payment

import (
	apperrors "github.com/xiebiao/rental/pkg/errors"
)

var (
	// ErrExceedsBalance carries the remaining balance as data.
	ErrExceedsBalance = apperrors.New(apperrors.ErrCodeExceedsBalance, "payment exceeds remaining balance")

	ErrAlreadyPaid = apperrors.New(apperrors.ErrCodeAlreadyPaid, "amount already fully paid")

	ErrRefundNotFound = apperrors.New(apperrors.ErrCodeRefundNotFound, "refund not found")

	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeBusinessError, "payment status does not allow this operation")
	ErrInvalidRefundTransition = apperrors.New(apperrors.ErrCodeRefundResolved, "refund is already resolved")
	ErrInvalidRefundSource     = apperrors.New(apperrors.ErrCodeInternal, "refund must reference a debit entry")

	ErrInvalidAmount = apperrors.New(apperrors.ErrCodeInvalidParams, "amount must be greater than 0")
	ErrInvalidTotal  = apperrors.New(apperrors.ErrCodeInvalidParams, "total amount must not be negative")
	ErrInvalidMethod = apperrors.New(apperrors.ErrCodeInvalidParams, "payment method is required")
	ErrInvalidStage  = apperrors.New(apperrors.ErrCodeInvalidParams, "invalid payment stage")
)

// BalanceData is the data attached to ErrExceedsBalance.
type BalanceData struct {
	Balance int64 `json:"balance"`
}

// ExceedsBalance reports the balance in both the message and the data.
func ExceedsBalance(balance int64) error {
	return ErrExceedsBalance.Withf("balance is %d", balance).WithData(BalanceData{Balance: balance})
}
