package dto

// AddStockRequest onboard a product or restock it.
type AddStockRequest struct {
	ProductID uint `json:"product_id" binding:"required,min=1" example:"101"`
	Quantity  int  `json:"quantity" binding:"required,min=1" example:"20"`
}

// AvailabilityQuery GET /inventory/:product_id?quantity=5
type AvailabilityQuery struct {
	Quantity int `form:"quantity" binding:"required,min=1" example:"5"`
}

// ListLogsQuery limit defaults to 50, capped at 500.
type ListLogsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500" example:"50"`
}
