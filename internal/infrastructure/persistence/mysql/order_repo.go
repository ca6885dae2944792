package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/rental/internal/domain/order"
	apperrors "github.com/xiebiao/rental/pkg/errors"
)

// orderRepository the order aggregate over three tables.
// Design notes:
// 1. orders + order_items are saved together, owned and outsourced lines share order_items
// 2. reads Preload lines and fulfillments to avoid N+1
// 3. fulfillment rows are insert-only
type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)
	if err := r.getDB(ctx).Omit("Fulfillments").Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return order.ErrOrderAlreadyExists
		}
		return apperrors.Wrap(err, "create order failed")
	}
	o.ID = model.ID
	setLineIDs(o, model.Items)
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.first(r.getDB(ctx).Where("id = ?", id))
}

// LockByID SELECT ... FOR UPDATE on the order row.
func (r *orderRepository) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.first(r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (r *orderRepository) FindActiveByBookingID(ctx context.Context, bookingID uint) (*order.Order, error) {
	return r.first(r.getDB(ctx).Where("booking_id = ?", bookingID).Order("id DESC"))
}

func (r *orderRepository) first(query *gorm.DB) (*order.Order, error) {
	var model OrderModel
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Fulfillments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "query order failed")
	}
	return toOrderEntity(&model), nil
}

func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	result := r.getDB(ctx).Model(&OrderModel{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
		"status":       int(o.Status),
		"sub_total":    o.SubTotal,
		"discount":     o.Discount,
		"tax":          o.Tax,
		"total_amount": o.TotalAmount,
		"amount_paid":  o.AmountPaid,
		"updated_by":   o.UpdatedBy,
		"updated_at":   o.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "update order failed")
	}
	if err := checkUpdated(r.getDB(ctx), result, &OrderModel{}, o.ID, order.ErrOrderNotFound); err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return err
		}
		return apperrors.Wrap(err, "update order failed")
	}
	return nil
}

// ReplaceLines deletes the stored lines and inserts the current ones.
func (r *orderRepository) ReplaceLines(ctx context.Context, o *order.Order) error {
	db := r.getDB(ctx)
	if err := db.Where("order_id = ?", o.ID).Delete(&OrderItemModel{}).Error; err != nil {
		return apperrors.Wrap(err, "delete order lines failed")
	}
	items := toOrderModel(o).Items
	if len(items) == 0 {
		return nil
	}
	if err := db.Create(&items).Error; err != nil {
		return apperrors.Wrap(err, "insert order lines failed")
	}
	setLineIDs(o, items)
	return nil
}

func (r *orderRepository) AddFulfillments(ctx context.Context, records []order.Fulfillment) error {
	if len(records) == 0 {
		return nil
	}
	models := make([]FulfillmentModel, len(records))
	for i, rec := range records {
		models[i] = FulfillmentModel{
			OrderID:             rec.OrderID,
			Kind:                string(rec.Kind),
			ProductID:           rec.ProductID,
			OutsourcedProductID: rec.OutsourcedProductID,
			Quantity:            rec.Quantity,
			At:                  rec.At,
			Actor:               rec.Actor,
			Status:              string(rec.Status),
			CreatedAt:           rec.CreatedAt,
		}
	}
	if err := r.getDB(ctx).Create(&models).Error; err != nil {
		return apperrors.Wrap(err, "insert fulfillment records failed")
	}
	for i := range records {
		records[i].ID = models[i].ID
	}
	return nil
}

func (r *orderRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db)
}

// toOrderModel owned lines first, then outsourced lines.
func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, 0, len(o.Items)+len(o.OutsourcedItems))
	for _, it := range o.Items {
		items = append(items, OrderItemModel{
			OrderID:    o.ID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}
	for _, it := range o.OutsourcedItems {
		items = append(items, OrderItemModel{
			OrderID:             o.ID,
			OutsourcedProductID: it.OutsourcedProductID,
			Quantity:            it.Quantity,
			UnitPrice:           it.UnitPrice,
			TotalPrice:          it.TotalPrice,
		})
	}
	return &OrderModel{
		ID:          o.ID,
		OrderNo:     o.OrderNo,
		BookingID:   o.BookingID,
		Status:      int(o.Status),
		SubTotal:    o.SubTotal,
		Discount:    o.Discount,
		Tax:         o.Tax,
		TotalAmount: o.TotalAmount,
		AmountPaid:  o.AmountPaid,
		CreatedBy:   o.CreatedBy,
		UpdatedBy:   o.UpdatedBy,
		Items:       items,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// setLineIDs copies generated ids back, in toOrderModel's line order.
func setLineIDs(o *order.Order, models []OrderItemModel) {
	for i := range o.Items {
		o.Items[i].ID = models[i].ID
		o.Items[i].OrderID = models[i].OrderID
	}
	offset := len(o.Items)
	for i := range o.OutsourcedItems {
		o.OutsourcedItems[i].ID = models[offset+i].ID
		o.OutsourcedItems[i].OrderID = models[offset+i].OrderID
	}
}

func toOrderEntity(m *OrderModel) *order.Order {
	o := &order.Order{
		ID:          m.ID,
		OrderNo:     m.OrderNo,
		BookingID:   m.BookingID,
		Status:      order.Status(m.Status),
		SubTotal:    m.SubTotal,
		Discount:    m.Discount,
		Tax:         m.Tax,
		TotalAmount: m.TotalAmount,
		AmountPaid:  m.AmountPaid,
		CreatedBy:   m.CreatedBy,
		UpdatedBy:   m.UpdatedBy,
		DeletedAt:   deletedAt(m.DeletedAt),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for _, it := range m.Items {
		if it.OutsourcedProductID != 0 {
			o.OutsourcedItems = append(o.OutsourcedItems, order.OutsourcedItem{
				ID:                  it.ID,
				OrderID:             it.OrderID,
				OutsourcedProductID: it.OutsourcedProductID,
				Quantity:            it.Quantity,
				UnitPrice:           it.UnitPrice,
				TotalPrice:          it.TotalPrice,
			})
			continue
		}
		o.Items = append(o.Items, order.Item{
			ID:         it.ID,
			OrderID:    it.OrderID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}
	for _, f := range m.Fulfillments {
		rec := order.Fulfillment{
			ID:                  f.ID,
			OrderID:             f.OrderID,
			Kind:                order.Kind(f.Kind),
			ProductID:           f.ProductID,
			OutsourcedProductID: f.OutsourcedProductID,
			Quantity:            f.Quantity,
			At:                  f.At,
			Actor:               f.Actor,
			Status:              order.RecordStatus(f.Status),
			CreatedAt:           f.CreatedAt,
		}
		if rec.Kind == order.KindReturn {
			o.Returns = append(o.Returns, rec)
		} else {
			o.Dispatches = append(o.Dispatches, rec)
		}
	}
	return o
}
