package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/rental/internal/domain/inventory"
	apperrors "github.com/xiebiao/rental/pkg/errors"
)

// inventoryRepository stock counters.
// Design notes:
// 1. every counter change is one conditional UPDATE, the WHERE clause is the guard
// 2. RowsAffected == 0 means the guard failed; a re-read tells missing row from short stock
// 3. the row is read back after the update so the caller can log before/after
type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) inventory.Repository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) GetByProductID(ctx context.Context, productID uint) (*inventory.Inventory, error) {
	var model InventoryModel
	if err := r.getDB(ctx).First(&model, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrInventoryNotFound
		}
		return nil, apperrors.Wrap(err, "query inventory failed")
	}
	return toInventoryEntity(&model), nil
}

// LockByProductIDs SELECT ... FOR UPDATE in product id order.
func (r *inventoryRepository) LockByProductIDs(ctx context.Context, productIDs []uint) (map[uint]*inventory.Inventory, error) {
	found := make(map[uint]*inventory.Inventory, len(productIDs))
	if len(productIDs) == 0 {
		return found, nil
	}
	var models []InventoryModel
	err := r.getDB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id IN ?", productIDs).
		Order("product_id").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "lock inventory failed")
	}
	for i := range models {
		found[models[i].ProductID] = toInventoryEntity(&models[i])
	}
	return found, nil
}

func (r *inventoryRepository) Create(ctx context.Context, inv *inventory.Inventory) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	model := toInventoryModel(inv)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return inventory.ErrInventoryExists
		}
		return apperrors.Wrap(err, "create inventory failed")
	}
	inv.CreatedAt = model.CreatedAt
	inv.UpdatedAt = model.UpdatedAt
	return nil
}

// Reserve UPDATE inventory SET available = available - q, reserved = reserved + q
// WHERE product_id = ? AND available >= q
func (r *inventoryRepository) Reserve(ctx context.Context, productID uint, quantity int) (*inventory.Inventory, error) {
	if quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	result := r.getDB(ctx).Model(&InventoryModel{}).
		Where("product_id = ? AND available >= ?", productID, quantity).
		Updates(map[string]interface{}{
			"available":  gorm.Expr("available - ?", quantity),
			"reserved":   gorm.Expr("reserved + ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, apperrors.Wrap(result.Error, "reserve stock failed")
	}
	if result.RowsAffected == 0 {
		current, err := r.GetByProductID(ctx, productID)
		if err != nil {
			return nil, err
		}
		return nil, inventory.InsufficientStock([]inventory.Shortfall{{
			ProductID: productID,
			Requested: quantity,
			Available: current.Available,
		}})
	}
	return r.GetByProductID(ctx, productID)
}

// Release UPDATE inventory SET available = available + q, reserved = reserved - q
// WHERE product_id = ? AND reserved >= q
func (r *inventoryRepository) Release(ctx context.Context, productID uint, quantity int) (*inventory.Inventory, error) {
	if quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	result := r.getDB(ctx).Model(&InventoryModel{}).
		Where("product_id = ? AND reserved >= ?", productID, quantity).
		Updates(map[string]interface{}{
			"available":  gorm.Expr("available + ?", quantity),
			"reserved":   gorm.Expr("reserved - ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, apperrors.Wrap(result.Error, "release stock failed")
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByProductID(ctx, productID); err != nil {
			return nil, err
		}
		return nil, inventory.ErrInsufficientReserved
	}
	return r.GetByProductID(ctx, productID)
}

func (r *inventoryRepository) Restock(ctx context.Context, productID uint, quantity int) (*inventory.Inventory, error) {
	if quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	result := r.getDB(ctx).Model(&InventoryModel{}).
		Where("product_id = ?", productID).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"available":  gorm.Expr("available + ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, apperrors.Wrap(result.Error, "restock failed")
	}
	if result.RowsAffected == 0 {
		return nil, inventory.ErrInventoryNotFound
	}
	return r.GetByProductID(ctx, productID)
}

func (r *inventoryRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db)
}

func toInventoryEntity(m *InventoryModel) *inventory.Inventory {
	return &inventory.Inventory{
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		Reserved:  m.Reserved,
		Available: m.Available,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toInventoryModel(inv *inventory.Inventory) *InventoryModel {
	return &InventoryModel{
		ProductID: inv.ProductID,
		Quantity:  inv.Quantity,
		Reserved:  inv.Reserved,
		Available: inv.Available,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
}

type inventoryLogRepository struct {
	db *gorm.DB
}

func NewInventoryLogRepository(db *gorm.DB) inventory.LogRepository {
	return &inventoryLogRepository{db: db}
}

func (r *inventoryLogRepository) Create(ctx context.Context, log *inventory.Log) error {
	model := &InventoryLogModel{
		ProductID:       log.ProductID,
		ChangeType:      string(log.ChangeType),
		Quantity:        log.Quantity,
		BeforeAvailable: log.BeforeAvailable,
		AfterAvailable:  log.AfterAvailable,
		OrderID:         log.OrderID,
		Remark:          log.Remark,
		CreatedAt:       log.CreatedAt,
	}
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "write inventory log failed")
	}
	log.ID = model.ID
	return nil
}

func (r *inventoryLogRepository) ListByProductID(ctx context.Context, productID uint, limit int) ([]*inventory.Log, error) {
	var models []InventoryLogModel
	query := dbFrom(ctx, r.db).Where("product_id = ?", productID).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "query inventory logs failed")
	}
	return toLogEntities(models), nil
}

func (r *inventoryLogRepository) ListByOrderID(ctx context.Context, orderID uint) ([]*inventory.Log, error) {
	var models []InventoryLogModel
	if err := dbFrom(ctx, r.db).Where("order_id = ?", orderID).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "query inventory logs failed")
	}
	return toLogEntities(models), nil
}

func toLogEntities(models []InventoryLogModel) []*inventory.Log {
	logs := make([]*inventory.Log, len(models))
	for i, m := range models {
		logs[i] = &inventory.Log{
			ID:              m.ID,
			ProductID:       m.ProductID,
			ChangeType:      inventory.ChangeType(m.ChangeType),
			Quantity:        m.Quantity,
			BeforeAvailable: m.BeforeAvailable,
			AfterAvailable:  m.AfterAvailable,
			OrderID:         m.OrderID,
			Remark:          m.Remark,
			CreatedAt:       m.CreatedAt,
		}
	}
	return logs
}
