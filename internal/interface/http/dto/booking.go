package dto

import "time"

// CreateBookingRequest prices are minor units (cents).
type CreateBookingRequest struct {
	CustomerID  uint                 `json:"customer_id" binding:"required,min=1" example:"12"`
	StartAt     time.Time            `json:"start_at" binding:"required" example:"2026-11-02T09:00:00Z"`
	EndAt       time.Time            `json:"end_at" binding:"required" example:"2026-11-05T18:00:00Z"`
	Items       []BookingItemRequest `json:"items" binding:"required,min=1,dive"`
	TotalAmount int64                `json:"total_amount" binding:"min=0" example:"150000"`
}

type BookingItemRequest struct {
	ProductID  uint  `json:"product_id" binding:"required,min=1" example:"101"`
	Quantity   int   `json:"quantity" binding:"required,min=1" example:"2"`
	UnitPrice  int64 `json:"unit_price" binding:"min=0" example:"25000"`
	TotalPrice int64 `json:"total_price" binding:"min=0" example:"50000"`
}
