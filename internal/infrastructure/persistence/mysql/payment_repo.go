package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/rental/internal/domain/payment"
	apperrors "github.com/xiebiao/rental/pkg/errors"
)

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := toPaymentModel(p)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "create payment failed")
	}
	p.ID = model.ID
	return nil
}

func (r *paymentRepository) ListByBookingID(ctx context.Context, bookingID uint) ([]*payment.Payment, error) {
	var models []PaymentModel
	if err := dbFrom(ctx, r.db).Where("booking_id = ?", bookingID).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "query payments failed")
	}
	payments := make([]*payment.Payment, len(models))
	for i := range models {
		payments[i] = toPaymentEntity(&models[i])
	}
	return payments, nil
}

type refundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) payment.RefundRepository {
	return &refundRepository{db: db}
}

func (r *refundRepository) Create(ctx context.Context, rf *payment.Refund) error {
	model := toRefundModel(rf)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "create refund failed")
	}
	rf.ID = model.ID
	return nil
}

func (r *refundRepository) LockByID(ctx context.Context, id uint) (*payment.Refund, error) {
	var model RefundModel
	err := dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrRefundNotFound
		}
		return nil, apperrors.Wrap(err, "query refund failed")
	}
	return toRefundEntity(&model), nil
}

func (r *refundRepository) Update(ctx context.Context, rf *payment.Refund) error {
	result := dbFrom(ctx, r.db).Model(&RefundModel{}).Where("id = ?", rf.ID).Updates(map[string]interface{}{
		"status":      string(rf.Status),
		"resolved_by": rf.ResolvedBy,
		"resolved_at": rf.ResolvedAt,
		"updated_at":  rf.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "update refund failed")
	}
	if err := checkUpdated(dbFrom(ctx, r.db), result, &RefundModel{}, rf.ID, payment.ErrRefundNotFound); err != nil {
		if errors.Is(err, payment.ErrRefundNotFound) {
			return err
		}
		return apperrors.Wrap(err, "update refund failed")
	}
	return nil
}

func (r *refundRepository) ListByBookingID(ctx context.Context, bookingID uint) ([]*payment.Refund, error) {
	var models []RefundModel
	if err := dbFrom(ctx, r.db).Where("booking_id = ?", bookingID).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "query refunds failed")
	}
	refunds := make([]*payment.Refund, len(models))
	for i := range models {
		refunds[i] = toRefundEntity(&models[i])
	}
	return refunds, nil
}

func toPaymentModel(p *payment.Payment) *PaymentModel {
	return &PaymentModel{
		ID:        p.ID,
		PaymentNo: p.PaymentNo,
		BookingID: p.BookingID,
		OrderID:   p.OrderID,
		Amount:    p.Amount,
		Method:    p.Method,
		Type:      string(p.Type),
		State:     string(p.State),
		Status:    string(p.Status),
		Stage:     string(p.Stage),
		Actor:     p.Actor,
		CreatedAt: p.CreatedAt,
	}
}

func toPaymentEntity(m *PaymentModel) *payment.Payment {
	return &payment.Payment{
		ID:        m.ID,
		PaymentNo: m.PaymentNo,
		BookingID: m.BookingID,
		OrderID:   m.OrderID,
		Amount:    m.Amount,
		Method:    m.Method,
		Type:      payment.TransactionType(m.Type),
		State:     payment.State(m.State),
		Status:    payment.Status(m.Status),
		Stage:     payment.Stage(m.Stage),
		Actor:     m.Actor,
		CreatedAt: m.CreatedAt,
	}
}

func toRefundModel(rf *payment.Refund) *RefundModel {
	return &RefundModel{
		ID:         rf.ID,
		RefundNo:   rf.RefundNo,
		PaymentID:  rf.PaymentID,
		BookingID:  rf.BookingID,
		Amount:     rf.Amount,
		Reason:     rf.Reason,
		Status:     string(rf.Status),
		ResolvedBy: rf.ResolvedBy,
		ResolvedAt: rf.ResolvedAt,
		CreatedAt:  rf.CreatedAt,
		UpdatedAt:  rf.UpdatedAt,
	}
}

func toRefundEntity(m *RefundModel) *payment.Refund {
	return &payment.Refund{
		ID:         m.ID,
		RefundNo:   m.RefundNo,
		PaymentID:  m.PaymentID,
		BookingID:  m.BookingID,
		Amount:     m.Amount,
		Reason:     m.Reason,
		Status:     payment.RefundStatus(m.Status),
		ResolvedBy: m.ResolvedBy,
		ResolvedAt: m.ResolvedAt,
		DeletedAt:  deletedAt(m.DeletedAt),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
