package payment

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/rental/internal/application/port"
	"github.com/xiebiao/rental/internal/domain/payment"
	"github.com/xiebiao/rental/pkg/metrics"
)

// ResolveRefundUseCase manual approval of a pending refund.
// The debit entry it references stays untouched.
type ResolveRefundUseCase struct {
	refundRepo payment.RefundRepository
	txManager  port.TxManager
	notifier   port.Notifier
	logger     *zap.Logger
}

func NewResolveRefundUseCase(refundRepo payment.RefundRepository, txManager port.TxManager, notifier port.Notifier, logger *zap.Logger) *ResolveRefundUseCase {
	return &ResolveRefundUseCase{
		refundRepo: refundRepo,
		txManager:  txManager,
		notifier:   notifier,
		logger:     logger,
	}
}

type ResolveRefundRequest struct {
	RefundID uint
	Approve  bool
	Actor    uint
}

func (uc *ResolveRefundUseCase) Execute(ctx context.Context, req ResolveRefundRequest) (*RefundView, error) {
	var resolved *payment.Refund
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		r, err := uc.refundRepo.LockByID(txCtx, req.RefundID)
		if err != nil {
			return err
		}
		if err := r.Resolve(req.Approve, req.Actor); err != nil {
			return err
		}
		if err := uc.refundRepo.Update(txCtx, r); err != nil {
			return err
		}
		resolved = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCounterVec(metrics.RefundsResolvedTotal, map[string]string{"status": string(resolved.Status)})
	uc.logger.Info("refund resolved",
		zap.Uint("refund_id", resolved.ID),
		zap.String("status", string(resolved.Status)),
		zap.Uint("actor", req.Actor),
	)
	view := NewRefundView(resolved)
	uc.notifier.Notify(ctx, port.NewEvent(port.EventRefundResolved, view))
	return view, nil
}
