package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/rental/internal/domain/booking"
	apperrors "github.com/xiebiao/rental/pkg/errors"
)

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) booking.Repository {
	return &bookingRepository{db: db}
}

// Create saves the booking with its items in one statement batch.
func (r *bookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	model := toBookingModel(b)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "booking number already exists")
		}
		return apperrors.Wrap(err, "create booking failed")
	}
	b.ID = model.ID
	for i := range b.Items {
		b.Items[i].ID = model.Items[i].ID
		b.Items[i].BookingID = model.ID
	}
	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*booking.Booking, error) {
	return r.find(r.getDB(ctx), id)
}

// LockByID SELECT ... FOR UPDATE on the booking row; items are read without a lock.
func (r *bookingRepository) LockByID(ctx context.Context, id uint) (*booking.Booking, error) {
	return r.find(r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *bookingRepository) find(db *gorm.DB, id uint) (*booking.Booking, error) {
	var model BookingModel
	if err := db.Preload("Items").First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, apperrors.Wrap(err, "query booking failed")
	}
	return toBookingEntity(&model), nil
}

func (r *bookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	result := r.getDB(ctx).Model(&BookingModel{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"status":       int(b.Status),
		"amount_paid":  b.AmountPaid,
		"total_amount": b.TotalAmount,
		"updated_by":   b.UpdatedBy,
		"updated_at":   b.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "update booking failed")
	}
	if err := checkUpdated(r.getDB(ctx), result, &BookingModel{}, b.ID, booking.ErrBookingNotFound); err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			return err
		}
		return apperrors.Wrap(err, "update booking failed")
	}
	return nil
}

func (r *bookingRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db)
}

func toBookingModel(b *booking.Booking) *BookingModel {
	items := make([]BookingItemModel, len(b.Items))
	for i, it := range b.Items {
		items[i] = BookingItemModel{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		}
	}
	return &BookingModel{
		ID:          b.ID,
		BookingNo:   b.BookingNo,
		CustomerID:  b.CustomerID,
		StartAt:     b.StartAt,
		EndAt:       b.EndAt,
		Status:      int(b.Status),
		AmountPaid:  b.AmountPaid,
		TotalAmount: b.TotalAmount,
		CreatedBy:   b.CreatedBy,
		UpdatedBy:   b.UpdatedBy,
		Items:       items,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toBookingEntity(m *BookingModel) *booking.Booking {
	items := make([]booking.Item, len(m.Items))
	for i, it := range m.Items {
		items[i] = booking.Item{
			ID:         it.ID,
			BookingID:  it.BookingID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		}
	}
	return &booking.Booking{
		ID:          m.ID,
		BookingNo:   m.BookingNo,
		CustomerID:  m.CustomerID,
		StartAt:     m.StartAt,
		EndAt:       m.EndAt,
		Items:       items,
		Status:      booking.Status(m.Status),
		AmountPaid:  m.AmountPaid,
		TotalAmount: m.TotalAmount,
		CreatedBy:   m.CreatedBy,
		UpdatedBy:   m.UpdatedBy,
		DeletedAt:   deletedAt(m.DeletedAt),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
