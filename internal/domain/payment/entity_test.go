package payment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/rental/pkg/errors"
)

func TestParseStage(t *testing.T) {
	for _, s := range []string{"booking", "order", "return", "other"} {
		st, err := ParseStage(s)
		require.NoError(t, err)
		assert.Equal(t, Stage(s), st)
	}
	_, err := ParseStage("layaway")
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestNewCredit(t *testing.T) {
	p, err := NewCredit(1, 2, 400, "card", StageOrder, StatePartial, 9)
	require.NoError(t, err)

	assert.Equal(t, TransactionCredit, p.Type)
	assert.Equal(t, StatusSuccess, p.Status)
	assert.Equal(t, StatePartial, p.State)
	assert.Equal(t, uint(2), p.OrderID)
	assert.True(t, strings.HasPrefix(p.PaymentNo, "PAY"))
	assert.Len(t, p.PaymentNo, 35)
}

func TestNewCredit_Invalid(t *testing.T) {
	_, err := NewCredit(1, 0, 0, "card", StageBooking, StatePartial, 1)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewCredit(1, 0, 10, "", StageBooking, StatePartial, 1)
	assert.ErrorIs(t, err, ErrInvalidMethod)

	_, err = NewCredit(1, 0, 10, "cash", Stage("x"), StatePartial, 1)
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestNewDebitAndRefund(t *testing.T) {
	debit, err := NewDebit(1, 2, 200, "card", StageOrder, 9)
	require.NoError(t, err)
	assert.Equal(t, TransactionDebit, debit.Type)
	assert.Equal(t, StatusRefunded, debit.Status)
	debit.ID = 77

	refund, err := NewRefund(debit, OverpaymentReason)
	require.NoError(t, err)
	assert.Equal(t, RefundPending, refund.Status)
	assert.Equal(t, uint(77), refund.PaymentID)
	assert.Equal(t, int64(200), refund.Amount)
	assert.Equal(t, uint(1), refund.BookingID)
	assert.True(t, strings.HasPrefix(refund.RefundNo, "RF"))

	credit, _ := NewCredit(1, 2, 10, "card", StageOrder, StatePartial, 1)
	_, err = NewRefund(credit, "x")
	assert.ErrorIs(t, err, ErrInvalidRefundSource)
}

func TestPaymentStatusTransitions(t *testing.T) {
	p := &Payment{Status: StatusSuccess}
	require.NoError(t, p.transitionTo(StatusRefunded))
	assert.ErrorIs(t, p.transitionTo(StatusSuccess), ErrInvalidStatusTransition)

	p = &Payment{Status: StatusFailed}
	assert.Error(t, p.transitionTo(StatusSuccess))
}

func TestRefund_Resolve(t *testing.T) {
	r := &Refund{Status: RefundPending}
	require.NoError(t, r.Resolve(true, 4))
	assert.Equal(t, RefundApproved, r.Status)
	assert.Equal(t, uint(4), r.ResolvedBy)
	require.NotNil(t, r.ResolvedAt)

	err := r.Resolve(false, 4)
	assert.ErrorIs(t, err, ErrInvalidRefundTransition)
	assert.Equal(t, apperrors.ErrCodeRefundResolved, apperrors.GetAppError(err).Code)

	r = &Refund{Status: RefundPending}
	require.NoError(t, r.Resolve(false, 4))
	assert.Equal(t, RefundRejected, r.Status)
}

func TestStateFor(t *testing.T) {
	assert.Equal(t, StatePartial, StateFor(400, 1000))
	assert.Equal(t, StateComplete, StateFor(1000, 1000))
	assert.Equal(t, StateComplete, StateFor(0, 0))
}

func TestExceedsBalance(t *testing.T) {
	err := ExceedsBalance(600)
	assert.ErrorIs(t, err, ErrExceedsBalance)

	appErr := apperrors.GetAppError(err)
	assert.Equal(t, apperrors.ErrCodeExceedsBalance, appErr.Code)
	assert.Contains(t, appErr.Message, "600")
	assert.Equal(t, BalanceData{Balance: 600}, appErr.Data)
}
