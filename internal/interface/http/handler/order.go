package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/rental/internal/application/fulfillment"
	"github.com/xiebiao/rental/internal/interface/http/dto"
	"github.com/xiebiao/rental/internal/interface/http/middleware"
	"github.com/xiebiao/rental/pkg/response"
)

// OrderHandler order conversion and fulfillment.
type OrderHandler struct {
	create   *fulfillment.CreateOrderUseCase
	update   *fulfillment.UpdateOrderUseCase
	get      *fulfillment.GetOrderUseCase
	dispatch *fulfillment.RecordDispatchUseCase
	ret      *fulfillment.RecordReturnUseCase
}

func NewOrderHandler(
	create *fulfillment.CreateOrderUseCase,
	update *fulfillment.UpdateOrderUseCase,
	get *fulfillment.GetOrderUseCase,
	dispatch *fulfillment.RecordDispatchUseCase,
	ret *fulfillment.RecordReturnUseCase,
) *OrderHandler {
	return &OrderHandler{
		create:   create,
		update:   update,
		get:      get,
		dispatch: dispatch,
		ret:      ret,
	}
}

// CreateOrder
// @Summary      Create order from booking
// @Description  Reserves stock for every owned line in one transaction (SELECT FOR UPDATE + conditional update).
// @Description  One short line rejects the whole order; data lists every shortfall.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "order"
// @Success      201 {object} response.Response{data=fulfillment.OrderView}
// @Failure      400 {object} response.Response "invalid parameters"
// @Failure      404 {object} response.Response "booking or inventory not found"
// @Failure      409 {object} response.Response "booking already has an order"
// @Failure      422 {object} response.Response "insufficient stock"
// @Router       /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	items, outsourced := toLineInputs(req.Items, req.OutsourcedItems)
	result, err := h.create.Execute(c.Request.Context(), fulfillment.CreateOrderRequest{
		BookingID:       req.BookingID,
		Items:           items,
		OutsourcedItems: outsourced,
		Pricing:         toPricingInput(req.Pricing),
		Actor:           middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetOrder
// @Summary      Get order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "order id"
// @Success      200 {object} response.Response{data=fulfillment.OrderView}
// @Failure      404 {object} response.Response "order not found"
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
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

// UpdateOrder
// @Summary      Update order lines and pricing
// @Description  Releases removed quantity and reserves added quantity. Orders with returns are read only.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                    true "order id"
// @Param        request body dto.UpdateOrderRequest true "new lines"
// @Success      200 {object} response.Response{data=fulfillment.OrderView}
// @Failure      422 {object} response.Response "insufficient stock or order has returns"
// @Router       /orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	items, outsourced := toLineInputs(req.Items, req.OutsourcedItems)
	result, err := h.update.Execute(c.Request.Context(), fulfillment.UpdateOrderRequest{
		OrderID:         id,
		Items:           items,
		OutsourcedItems: outsourced,
		Pricing:         toPricingInput(req.Pricing),
		Actor:           middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RecordDispatch
// @Summary      Record dispatch
// @Description  Dispatched quantity per line can never exceed the ordered quantity.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                    true "order id"
// @Param        request body dto.FulfillmentRequest true "dispatch batch"
// @Success      200 {object} response.Response{data=fulfillment.OrderView}
// @Failure      400 {object} response.Response "invalid dispatch item"
// @Router       /orders/{id}/dispatches [post]
func (h *OrderHandler) RecordDispatch(c *gin.Context) {
	h.fulfill(c, h.dispatch.Execute)
}

// RecordReturn
// @Summary      Record return
// @Description  Returned owned units are released back to available stock.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                    true "order id"
// @Param        request body dto.FulfillmentRequest true "return batch"
// @Success      200 {object} response.Response{data=fulfillment.OrderView}
// @Failure      400 {object} response.Response "invalid return item"
// @Router       /orders/{id}/returns [post]
func (h *OrderHandler) RecordReturn(c *gin.Context) {
	h.fulfill(c, h.ret.Execute)
}

type fulfillFunc func(ctx context.Context, req fulfillment.FulfillmentRequest) (*fulfillment.OrderView, error)

func (h *OrderHandler) fulfill(c *gin.Context, execute fulfillFunc) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.FulfillmentRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]fulfillment.FulfillmentInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = fulfillment.FulfillmentInput{
			ProductID:           it.ProductID,
			OutsourcedProductID: it.OutsourcedProductID,
			Quantity:            it.Quantity,
			Date:                it.Date,
			Time:                it.Time,
		}
	}

	result, err := execute(c.Request.Context(), fulfillment.FulfillmentRequest{
		OrderID: id,
		Items:   items,
		Actor:   middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func toLineInputs(items []dto.OrderLine, outsourced []dto.OutsourcedOrderLine) ([]fulfillment.LineInput, []fulfillment.OutsourcedLineInput) {
	lines := make([]fulfillment.LineInput, len(items))
	for i, it := range items {
		lines[i] = fulfillment.LineInput{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		}
	}
	outLines := make([]fulfillment.OutsourcedLineInput, len(outsourced))
	for i, it := range outsourced {
		outLines[i] = fulfillment.OutsourcedLineInput{
			OutsourcedProductID: it.OutsourcedProductID,
			Quantity:            it.Quantity,
			UnitPrice:           it.UnitPrice,
			TotalPrice:          it.TotalPrice,
		}
	}
	return lines, outLines
}

func toPricingInput(p dto.Pricing) fulfillment.PricingInput {
	return fulfillment.PricingInput{
		SubTotal:    p.SubTotal,
		Discount:    p.Discount,
		Tax:         p.Tax,
		TotalAmount: p.TotalAmount,
	}
}
