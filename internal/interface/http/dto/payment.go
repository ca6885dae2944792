package dto

// PaymentRequest add or revise a payment.
// Stage is one of booking, order, return, other. Amount may be 0 on update
// when only the total is revised.
type PaymentRequest struct {
	Amount   int64  `json:"amount" binding:"min=0" example:"40000"`
	NewTotal int64  `json:"new_total" binding:"min=0" example:"100000"`
	Method   string `json:"method" binding:"required,max=30" example:"card"`
	Stage    string `json:"stage" binding:"required,oneof=booking order return other" example:"order"`
}
