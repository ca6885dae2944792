package dto

// OrderLine an owned product line.
type OrderLine struct {
	ProductID  uint  `json:"product_id" binding:"required,min=1" example:"101"`
	Quantity   int   `json:"quantity" binding:"required,min=1" example:"4"`
	UnitPrice  int64 `json:"unit_price" binding:"min=0" example:"25000"`
	TotalPrice int64 `json:"total_price" binding:"min=0" example:"100000"`
}

// OutsourcedOrderLine a supplier-sourced line; no stock is reserved for it.
type OutsourcedOrderLine struct {
	OutsourcedProductID uint  `json:"outsourced_product_id" binding:"required,min=1" example:"900"`
	Quantity            int   `json:"quantity" binding:"required,min=1" example:"1"`
	UnitPrice           int64 `json:"unit_price" binding:"min=0" example:"30000"`
	TotalPrice          int64 `json:"total_price" binding:"min=0" example:"30000"`
}

// Pricing totals are taken as given, amounts in minor units.
type Pricing struct {
	SubTotal    int64 `json:"sub_total" binding:"min=0" example:"130000"`
	Discount    int64 `json:"discount" binding:"min=0" example:"0"`
	Tax         int64 `json:"tax" binding:"min=0" example:"0"`
	TotalAmount int64 `json:"total_amount" binding:"min=0" example:"130000"`
}

type CreateOrderRequest struct {
	BookingID       uint                  `json:"booking_id" binding:"required,min=1" example:"1"`
	Items           []OrderLine           `json:"items" binding:"dive"`
	OutsourcedItems []OutsourcedOrderLine `json:"outsourced_items" binding:"dive"`
	Pricing
}

type UpdateOrderRequest struct {
	Items           []OrderLine           `json:"items" binding:"dive"`
	OutsourcedItems []OutsourcedOrderLine `json:"outsourced_items" binding:"dive"`
	Pricing
}

// FulfillmentLine one dispatch or return line.
// Exactly one of product_id and outsourced_product_id is set.
type FulfillmentLine struct {
	ProductID           uint   `json:"product_id" example:"101"`
	OutsourcedProductID uint   `json:"outsourced_product_id" example:"0"`
	Quantity            int    `json:"quantity" binding:"required,min=1" example:"4"`
	Date                string `json:"date" binding:"required" example:"2026-11-02"`
	Time                string `json:"time" binding:"required" example:"09:30"`
}

type FulfillmentRequest struct {
	Items []FulfillmentLine `json:"items" binding:"required,min=1,dive"`
}
