package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	apppayment "github.com/xiebiao/rental/internal/application/payment"
	"github.com/xiebiao/rental/internal/interface/http/dto"
	"github.com/xiebiao/rental/internal/interface/http/middleware"
	"github.com/xiebiao/rental/pkg/response"
)

// PaymentHandler payments, refunds and their listings.
type PaymentHandler struct {
	add          *apppayment.AddPaymentUseCase
	update       *apppayment.UpdatePaymentUseCase
	resolve      *apppayment.ResolveRefundUseCase
	listPayments *apppayment.ListPaymentsUseCase
	listRefunds  *apppayment.ListRefundsUseCase
}

func NewPaymentHandler(
	add *apppayment.AddPaymentUseCase,
	update *apppayment.UpdatePaymentUseCase,
	resolve *apppayment.ResolveRefundUseCase,
	listPayments *apppayment.ListPaymentsUseCase,
	listRefunds *apppayment.ListRefundsUseCase,
) *PaymentHandler {
	return &PaymentHandler{
		add:          add,
		update:       update,
		resolve:      resolve,
		listPayments: listPayments,
		listRefunds:  listRefunds,
	}
}

// AddPayment
// @Summary      Add payment
// @Description  Records a credit against the booking (stage booking) or its order.
// @Description  A revised total below what was paid opens a pending refund for the difference.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                true "booking id"
// @Param        request body dto.PaymentRequest true "payment"
// @Success      200 {object} response.Response{data=apppayment.PaymentResult}
// @Failure      409 {object} response.Response "already fully paid"
// @Failure      422 {object} response.Response "exceeds remaining balance (data.balance)"
// @Router       /bookings/{id}/payments [post]
func (h *PaymentHandler) AddPayment(c *gin.Context) {
	h.pay(c, h.add.Execute)
}

// UpdatePayment
// @Summary      Update payment
// @Description  Same arithmetic as AddPayment; a fully paid target is rejected.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                true "booking id"
// @Param        request body dto.PaymentRequest true "payment"
// @Success      200 {object} response.Response{data=apppayment.PaymentResult}
// @Failure      409 {object} response.Response "already fully paid"
// @Failure      422 {object} response.Response "exceeds remaining balance (data.balance)"
// @Router       /bookings/{id}/payments [put]
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	h.pay(c, h.update.Execute)
}

type payFunc func(ctx context.Context, req apppayment.PaymentRequest) (*apppayment.PaymentResult, error)

func (h *PaymentHandler) pay(c *gin.Context, execute payFunc) {
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := execute(c.Request.Context(), apppayment.PaymentRequest{
		BookingID: bookingID,
		Amount:    req.Amount,
		NewTotal:  req.NewTotal,
		Method:    req.Method,
		Stage:     req.Stage,
		Actor:     middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListPayments
// @Summary      List payments of a booking
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "booking id"
// @Success      200 {object} response.Response{data=[]apppayment.PaymentView}
// @Failure      404 {object} response.Response "booking not found"
// @Router       /bookings/{id}/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.listPayments.Execute(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListRefunds
// @Summary      List refunds of a booking
// @Tags         refunds
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "booking id"
// @Success      200 {object} response.Response{data=[]apppayment.RefundView}
// @Failure      404 {object} response.Response "booking not found"
// @Router       /bookings/{id}/refunds [get]
func (h *PaymentHandler) ListRefunds(c *gin.Context) {
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.listRefunds.Execute(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ApproveRefund
// @Summary      Approve refund
// @Tags         refunds
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "refund id"
// @Success      200 {object} response.Response{data=apppayment.RefundView}
// @Failure      404 {object} response.Response "refund not found"
// @Failure      422 {object} response.Response "refund already resolved"
// @Router       /refunds/{id}/approve [post]
func (h *PaymentHandler) ApproveRefund(c *gin.Context) {
	h.resolveRefund(c, true)
}

// RejectRefund
// @Summary      Reject refund
// @Tags         refunds
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "refund id"
// @Success      200 {object} response.Response{data=apppayment.RefundView}
// @Failure      404 {object} response.Response "refund not found"
// @Failure      422 {object} response.Response "refund already resolved"
// @Router       /refunds/{id}/reject [post]
func (h *PaymentHandler) RejectRefund(c *gin.Context) {
	h.resolveRefund(c, false)
}

func (h *PaymentHandler) resolveRefund(c *gin.Context, approve bool) {
	refundID, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.resolve.Execute(c.Request.Context(), apppayment.ResolveRefundRequest{
		RefundID: refundID,
		Approve:  approve,
		Actor:    middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
