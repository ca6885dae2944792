package handler

import (
	"github.com/gin-gonic/gin"

	appbooking "github.com/xiebiao/rental/internal/application/booking"
	"github.com/xiebiao/rental/internal/interface/http/dto"
	"github.com/xiebiao/rental/internal/interface/http/middleware"
	"github.com/xiebiao/rental/pkg/response"
)

type BookingHandler struct {
	create *appbooking.CreateBookingUseCase
	cancel *appbooking.CancelBookingUseCase
	get    *appbooking.GetBookingUseCase
}

func NewBookingHandler(
	create *appbooking.CreateBookingUseCase,
	cancel *appbooking.CancelBookingUseCase,
	get *appbooking.GetBookingUseCase,
) *BookingHandler {
	return &BookingHandler{create: create, cancel: cancel, get: get}
}

// CreateBooking
// @Summary      Create booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookingRequest true "booking"
// @Success      201 {object} response.Response{data=appbooking.BookingView}
// @Failure      400 {object} response.Response "invalid parameters"
// @Router       /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req dto.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]appbooking.ItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = appbooking.ItemInput{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		}
	}

	result, err := h.create.Execute(c.Request.Context(), appbooking.CreateBookingRequest{
		CustomerID:  req.CustomerID,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Items:       items,
		TotalAmount: req.TotalAmount,
		Actor:       middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetBooking
// @Summary      Get booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "booking id"
// @Success      200 {object} response.Response{data=appbooking.BookingView}
// @Failure      404 {object} response.Response "booking not found"
// @Router       /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CancelBooking
// @Summary      Cancel booking
// @Description  Only a pending booking can be cancelled
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "booking id"
// @Success      200 {object} response.Response{data=appbooking.BookingView}
// @Failure      404 {object} response.Response "booking not found"
// @Failure      422 {object} response.Response "booking already converted or cancelled"
// @Router       /bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.cancel.Execute(c.Request.Context(), id, middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
