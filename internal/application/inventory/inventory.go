package inventory

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/rental/internal/application/port"
	"github.com/xiebiao/rental/internal/domain/inventory"
	"github.com/xiebiao/rental/pkg/metrics"
)

const timestampLayout = "2006-01-02 15:04:05"

type InventoryView struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Reserved  int    `json:"reserved"`
	Available int    `json:"available"`
	UpdatedAt string `json:"updated_at"`
}

func NewInventoryView(inv *inventory.Inventory) *InventoryView {
	return &InventoryView{
		ProductID: inv.ProductID,
		Quantity:  inv.Quantity,
		Reserved:  inv.Reserved,
		Available: inv.Available,
		UpdatedAt: inv.UpdatedAt.Format(timestampLayout),
	}
}

// AddStockUseCase onboards a product or restocks it.
type AddStockUseCase struct {
	inventoryRepo inventory.Repository
	logRepo       inventory.LogRepository
	txManager     port.TxManager
	notifier      port.Notifier
	logger        *zap.Logger
}

func NewAddStockUseCase(
	inventoryRepo inventory.Repository,
	logRepo inventory.LogRepository,
	txManager port.TxManager,
	notifier port.Notifier,
	logger *zap.Logger,
) *AddStockUseCase {
	return &AddStockUseCase{
		inventoryRepo: inventoryRepo,
		logRepo:       logRepo,
		txManager:     txManager,
		notifier:      notifier,
		logger:        logger,
	}
}

type AddStockRequest struct {
	ProductID uint
	Quantity  int
	Actor     uint
}

// Execute creates the record on first addition, otherwise raises quantity and
// available together. Two first additions racing on the same product: the
// loser hits the unique key and is replayed as a restock.
func (uc *AddStockUseCase) Execute(ctx context.Context, req AddStockRequest) (*InventoryView, error) {
	if req.ProductID == 0 {
		return nil, inventory.ErrInvalidProductID
	}
	if req.Quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	inv, err := uc.add(ctx, req)
	if errors.Is(err, inventory.ErrInventoryExists) {
		inv, err = uc.add(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	metrics.AddCounter(metrics.InventoryRestockedUnits, float64(req.Quantity))
	uc.logger.Info("stock added",
		zap.Uint("product_id", req.ProductID),
		zap.Int("quantity", req.Quantity),
		zap.Int("available", inv.Available),
		zap.Uint("actor", req.Actor),
	)
	view := NewInventoryView(inv)
	uc.notifier.Notify(ctx, port.NewEvent(port.EventInventoryAdded, view))
	return view, nil
}

func (uc *AddStockUseCase) add(ctx context.Context, req AddStockRequest) (*inventory.Inventory, error) {
	var result *inventory.Inventory
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		records, err := uc.inventoryRepo.LockByProductIDs(txCtx, []uint{req.ProductID})
		if err != nil {
			return err
		}

		inv, exists := records[req.ProductID]
		if exists {
			if inv, err = uc.inventoryRepo.Restock(txCtx, req.ProductID, req.Quantity); err != nil {
				return err
			}
		} else {
			if inv, err = inventory.NewInventory(req.ProductID, req.Quantity); err != nil {
				return err
			}
			if err := uc.inventoryRepo.Create(txCtx, inv); err != nil {
				return err
			}
		}

		if err := uc.logRepo.Create(txCtx, inventory.NewRestockLog(inv, req.Quantity)); err != nil {
			return err
		}
		result = inv
		return nil
	})
	return result, err
}

// CheckAvailabilityUseCase answers whether quantity units of a product are free.
type CheckAvailabilityUseCase struct {
	inventoryRepo inventory.Repository
}

func NewCheckAvailabilityUseCase(inventoryRepo inventory.Repository) *CheckAvailabilityUseCase {
	return &CheckAvailabilityUseCase{inventoryRepo: inventoryRepo}
}

func (uc *CheckAvailabilityUseCase) Execute(ctx context.Context, productID uint, quantity int) (*inventory.Availability, error) {
	if quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	inv, err := uc.inventoryRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	a := inv.Check(quantity)
	return &a, nil
}

type LogView struct {
	ID              uint   `json:"id"`
	ProductID       uint   `json:"product_id"`
	ChangeType      string `json:"change_type"`
	Quantity        int    `json:"quantity"`
	BeforeAvailable int    `json:"before_available"`
	AfterAvailable  int    `json:"after_available"`
	OrderID         uint   `json:"order_id,omitempty"`
	Remark          string `json:"remark,omitempty"`
	CreatedAt       string `json:"created_at"`
}

const defaultLogLimit = 50

// ListLogsUseCase newest counter changes of a product.
type ListLogsUseCase struct {
	inventoryRepo inventory.Repository
	logRepo       inventory.LogRepository
}

func NewListLogsUseCase(inventoryRepo inventory.Repository, logRepo inventory.LogRepository) *ListLogsUseCase {
	return &ListLogsUseCase{inventoryRepo: inventoryRepo, logRepo: logRepo}
}

func (uc *ListLogsUseCase) Execute(ctx context.Context, productID uint, limit int) ([]*LogView, error) {
	if _, err := uc.inventoryRepo.GetByProductID(ctx, productID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = defaultLogLimit
	}
	logs, err := uc.logRepo.ListByProductID(ctx, productID, limit)
	if err != nil {
		return nil, err
	}
	views := make([]*LogView, 0, len(logs))
	for _, l := range logs {
		views = append(views, &LogView{
			ID:              l.ID,
			ProductID:       l.ProductID,
			ChangeType:      string(l.ChangeType),
			Quantity:        l.Quantity,
			BeforeAvailable: l.BeforeAvailable,
			AfterAvailable:  l.AfterAvailable,
			OrderID:         l.OrderID,
			Remark:          l.Remark,
			CreatedAt:       l.CreatedAt.Format(timestampLayout),
		})
	}
	return views, nil
}
