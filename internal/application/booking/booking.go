package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/rental/internal/application/port"
	"github.com/xiebiao/rental/internal/domain/booking"
)

const timestampLayout = "2006-01-02 15:04:05"

// BookingView response DTO.
type BookingView struct {
	ID          uint       `json:"id"`
	BookingNo   string     `json:"booking_no"`
	CustomerID  uint       `json:"customer_id"`
	StartAt     string     `json:"start_at"`
	EndAt       string     `json:"end_at"`
	Items       []ItemView `json:"items"`
	Status      string     `json:"status"`
	AmountPaid  int64      `json:"amount_paid"`
	TotalAmount int64      `json:"total_amount"`
	Balance     int64      `json:"balance"`
	CreatedBy   uint       `json:"created_by"`
	UpdatedBy   uint       `json:"updated_by"`
	CreatedAt   string     `json:"created_at"`
}

type ItemView struct {
	ProductID  uint  `json:"product_id"`
	Quantity   int   `json:"quantity"`
	UnitPrice  int64 `json:"unit_price"`
	TotalPrice int64 `json:"total_price"`
}

func NewBookingView(b *booking.Booking) *BookingView {
	v := &BookingView{
		ID:          b.ID,
		BookingNo:   b.BookingNo,
		CustomerID:  b.CustomerID,
		StartAt:     b.StartAt.Format(timestampLayout),
		EndAt:       b.EndAt.Format(timestampLayout),
		Items:       make([]ItemView, 0, len(b.Items)),
		Status:      b.Status.String(),
		AmountPaid:  b.AmountPaid,
		TotalAmount: b.TotalAmount,
		Balance:     b.Balance(),
		CreatedBy:   b.CreatedBy,
		UpdatedBy:   b.UpdatedBy,
		CreatedAt:   b.CreatedAt.Format(timestampLayout),
	}
	for _, it := range b.Items {
		v.Items = append(v.Items, ItemView{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}
	return v
}

// CreateBookingUseCase records a customer's reservation intent.
// No stock is held until the booking is converted into an order.
type CreateBookingUseCase struct {
	bookingRepo booking.Repository
	logger      *zap.Logger
}

func NewCreateBookingUseCase(bookingRepo booking.Repository, logger *zap.Logger) *CreateBookingUseCase {
	return &CreateBookingUseCase{bookingRepo: bookingRepo, logger: logger}
}

type CreateBookingRequest struct {
	CustomerID  uint
	StartAt     time.Time
	EndAt       time.Time
	Items       []ItemInput
	TotalAmount int64
	Actor       uint
}

type ItemInput struct {
	ProductID  uint
	Quantity   int
	UnitPrice  int64
	TotalPrice int64
}

func (uc *CreateBookingUseCase) Execute(ctx context.Context, req CreateBookingRequest) (*BookingView, error) {
	items := make([]booking.Item, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, booking.Item{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}

	b, err := booking.NewBooking(booking.GenerateBookingNo(), req.CustomerID, req.StartAt, req.EndAt, items, req.TotalAmount, req.Actor)
	if err != nil {
		return nil, err
	}
	if err := uc.bookingRepo.Create(ctx, b); err != nil {
		return nil, err
	}

	uc.logger.Info("booking created",
		zap.Uint("booking_id", b.ID),
		zap.String("booking_no", b.BookingNo),
		zap.Uint("customer_id", b.CustomerID),
	)
	return NewBookingView(b), nil
}

// CancelBookingUseCase withdraws a booking that was not converted yet.
type CancelBookingUseCase struct {
	bookingRepo booking.Repository
	txManager   port.TxManager
	logger      *zap.Logger
}

func NewCancelBookingUseCase(bookingRepo booking.Repository, txManager port.TxManager, logger *zap.Logger) *CancelBookingUseCase {
	return &CancelBookingUseCase{bookingRepo: bookingRepo, txManager: txManager, logger: logger}
}

func (uc *CancelBookingUseCase) Execute(ctx context.Context, bookingID, actor uint) (*BookingView, error) {
	var cancelled *booking.Booking
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		b, err := uc.bookingRepo.LockByID(txCtx, bookingID)
		if err != nil {
			return err
		}
		if err := b.Cancel(actor); err != nil {
			return err
		}
		if err := uc.bookingRepo.Update(txCtx, b); err != nil {
			return err
		}
		cancelled = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("booking cancelled", zap.Uint("booking_id", bookingID), zap.Uint("actor", actor))
	return NewBookingView(cancelled), nil
}

type GetBookingUseCase struct {
	bookingRepo booking.Repository
}

func NewGetBookingUseCase(bookingRepo booking.Repository) *GetBookingUseCase {
	return &GetBookingUseCase{bookingRepo: bookingRepo}
}

func (uc *GetBookingUseCase) Execute(ctx context.Context, bookingID uint) (*BookingView, error) {
	b, err := uc.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return NewBookingView(b), nil
}
