package handler

import (
	"github.com/gin-gonic/gin"

	appinventory "github.com/xiebiao/rental/internal/application/inventory"
	"github.com/xiebiao/rental/internal/interface/http/dto"
	"github.com/xiebiao/rental/internal/interface/http/middleware"
	"github.com/xiebiao/rental/pkg/response"
)

type InventoryHandler struct {
	addStock          *appinventory.AddStockUseCase
	checkAvailability *appinventory.CheckAvailabilityUseCase
	listLogs          *appinventory.ListLogsUseCase
}

func NewInventoryHandler(
	addStock *appinventory.AddStockUseCase,
	checkAvailability *appinventory.CheckAvailabilityUseCase,
	listLogs *appinventory.ListLogsUseCase,
) *InventoryHandler {
	return &InventoryHandler{
		addStock:          addStock,
		checkAvailability: checkAvailability,
		listLogs:          listLogs,
	}
}

// AddStock onboard or restock a product
// @Summary      Add stock
// @Description  Creates the inventory record on first addition, otherwise raises quantity and available
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddStockRequest true "stock addition"
// @Success      200 {object} response.Response{data=appinventory.InventoryView}
// @Failure      400 {object} response.Response "invalid parameters"
// @Failure      401 {object} response.Response "login required"
// @Router       /inventory [post]
func (h *InventoryHandler) AddStock(c *gin.Context) {
	var req dto.AddStockRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.addStock.Execute(c.Request.Context(), appinventory.AddStockRequest{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Actor:     middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CheckAvailability
// @Summary      Check availability
// @Description  Reports available units and whether the requested quantity fits. Read only.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path  int true  "product id"
// @Param        quantity   query int true  "requested quantity"
// @Success      200 {object} response.Response{data=inventory.Availability}
// @Failure      404 {object} response.Response "inventory record not found"
// @Router       /inventory/{product_id} [get]
func (h *InventoryHandler) CheckAvailability(c *gin.Context) {
	productID, ok := pathID(c, "product_id")
	if !ok {
		return
	}
	var q dto.AvailabilityQuery
	if !bindQuery(c, &q) {
		return
	}

	result, err := h.checkAvailability.Execute(c.Request.Context(), productID, q.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListLogs
// @Summary      Inventory audit log
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        product_id path  int true  "product id"
// @Param        limit      query int false "max entries (default 50)"
// @Success      200 {object} response.Response{data=[]appinventory.LogView}
// @Failure      404 {object} response.Response "inventory record not found"
// @Router       /inventory/{product_id}/logs [get]
func (h *InventoryHandler) ListLogs(c *gin.Context) {
	productID, ok := pathID(c, "product_id")
	if !ok {
		return
	}
	var q dto.ListLogsQuery
	if !bindQuery(c, &q) {
		return
	}

	result, err := h.listLogs.Execute(c.Request.Context(), productID, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
