package fulfillment

import (
	"github.com/xiebiao/rental/internal/domain/order"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
	clockLayout     = "15:04"
)

// OrderView response DTO of every order operation (also the cached form).
type OrderView struct {
	ID              uint                 `json:"id"`
	OrderNo         string               `json:"order_no"`
	BookingID       uint                 `json:"booking_id"`
	Status          string               `json:"status"`
	Items           []ItemView           `json:"items"`
	OutsourcedItems []OutsourcedItemView `json:"outsourced_items"`
	Dispatches      []FulfillmentView    `json:"dispatches"`
	Returns         []FulfillmentView    `json:"returns"`
	SubTotal        int64                `json:"sub_total"`
	Discount        int64                `json:"discount"`
	Tax             int64                `json:"tax"`
	TotalAmount     int64                `json:"total_amount"`
	AmountPaid      int64                `json:"amount_paid"`
	Balance         int64                `json:"balance"`
	CreatedBy       uint                 `json:"created_by"`
	UpdatedBy       uint                 `json:"updated_by"`
	CreatedAt       string               `json:"created_at"`
	UpdatedAt       string               `json:"updated_at"`
}

type ItemView struct {
	ProductID  uint  `json:"product_id"`
	Quantity   int   `json:"quantity"`
	UnitPrice  int64 `json:"unit_price"`
	TotalPrice int64 `json:"total_price"`
	Dispatched int   `json:"dispatched"`
	Returned   int   `json:"returned"`
}

type OutsourcedItemView struct {
	OutsourcedProductID uint  `json:"outsourced_product_id"`
	Quantity            int   `json:"quantity"`
	UnitPrice           int64 `json:"unit_price"`
	TotalPrice          int64 `json:"total_price"`
	Dispatched          int   `json:"dispatched"`
	Returned            int   `json:"returned"`
}

type FulfillmentView struct {
	ID                  uint   `json:"id"`
	ProductID           uint   `json:"product_id,omitempty"`
	OutsourcedProductID uint   `json:"outsourced_product_id,omitempty"`
	Quantity            int    `json:"quantity"`
	Date                string `json:"date"`
	Time                string `json:"time"`
	Actor               uint   `json:"actor"`
	Status              string `json:"status"`
}

// NewOrderView flattens the aggregate, adding per-line progress.
func NewOrderView(o *order.Order) *OrderView {
	v := &OrderView{
		ID:              o.ID,
		OrderNo:         o.OrderNo,
		BookingID:       o.BookingID,
		Status:          o.Status.String(),
		Items:           make([]ItemView, 0, len(o.Items)),
		OutsourcedItems: make([]OutsourcedItemView, 0, len(o.OutsourcedItems)),
		Dispatches:      fulfillmentViews(o.Dispatches),
		Returns:         fulfillmentViews(o.Returns),
		SubTotal:        o.SubTotal,
		Discount:        o.Discount,
		Tax:             o.Tax,
		TotalAmount:     o.TotalAmount,
		AmountPaid:      o.AmountPaid,
		Balance:         o.Balance(),
		CreatedBy:       o.CreatedBy,
		UpdatedBy:       o.UpdatedBy,
		CreatedAt:       o.CreatedAt.Format(timestampLayout),
		UpdatedAt:       o.UpdatedAt.Format(timestampLayout),
	}
	for _, it := range o.Items {
		ref := order.LineRef{ID: it.ProductID}
		v.Items = append(v.Items, ItemView{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
			Dispatched: o.Dispatched(ref),
			Returned:   o.Returned(ref),
		})
	}
	for _, it := range o.OutsourcedItems {
		ref := order.LineRef{Outsourced: true, ID: it.OutsourcedProductID}
		v.OutsourcedItems = append(v.OutsourcedItems, OutsourcedItemView{
			OutsourcedProductID: it.OutsourcedProductID,
			Quantity:            it.Quantity,
			UnitPrice:           it.UnitPrice,
			TotalPrice:          it.TotalPrice,
			Dispatched:          o.Dispatched(ref),
			Returned:            o.Returned(ref),
		})
	}
	return v
}

func fulfillmentViews(records []order.Fulfillment) []FulfillmentView {
	views := make([]FulfillmentView, 0, len(records))
	for _, r := range records {
		views = append(views, FulfillmentView{
			ID:                  r.ID,
			ProductID:           r.ProductID,
			OutsourcedProductID: r.OutsourcedProductID,
			Quantity:            r.Quantity,
			Date:                r.At.Format(dateLayout),
			Time:                r.At.Format(clockLayout),
			Actor:               r.Actor,
			Status:              string(r.Status),
		})
	}
	return views
}

// LineInput an owned product line of a create or update request.
type LineInput struct {
	ProductID  uint
	Quantity   int
	UnitPrice  int64
	TotalPrice int64
}

// OutsourcedLineInput a supplier-sourced line of a create or update request.
type OutsourcedLineInput struct {
	OutsourcedProductID uint
	Quantity            int
	UnitPrice           int64
	TotalPrice          int64
}

// PricingInput caller supplied totals.
type PricingInput struct {
	SubTotal    int64
	Discount    int64
	Tax         int64
	TotalAmount int64
}

func (p PricingInput) toPricing() order.Pricing {
	return order.Pricing{
		SubTotal:    p.SubTotal,
		Discount:    p.Discount,
		Tax:         p.Tax,
		TotalAmount: p.TotalAmount,
	}
}

// toLines converts and merges request lines.
func toLines(items []LineInput, outsourced []OutsourcedLineInput) ([]order.Item, []order.OutsourcedItem) {
	owned := make([]order.Item, 0, len(items))
	for _, it := range items {
		owned = append(owned, order.Item{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}
	sourced := make([]order.OutsourcedItem, 0, len(outsourced))
	for _, it := range outsourced {
		sourced = append(sourced, order.OutsourcedItem{
			OutsourcedProductID: it.OutsourcedProductID,
			Quantity:            it.Quantity,
			UnitPrice:           it.UnitPrice,
			TotalPrice:          it.TotalPrice,
		})
	}
	return order.MergeItems(owned), order.MergeOutsourcedItems(sourced)
}
