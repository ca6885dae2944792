package memory

import (
	"context"
	"sort"
	"time"

	"github.com/xiebiao/rental/internal/domain/inventory"
)

type inventoryRepository struct {
	store *Store
}

func NewInventoryRepository(store *Store) inventory.Repository {
	return &inventoryRepository{store: store}
}

func (r *inventoryRepository) GetByProductID(ctx context.Context, productID uint) (*inventory.Inventory, error) {
	var found *inventory.Inventory
	err := r.store.run(ctx, func(st *state) error {
		inv, ok := st.inventories[productID]
		if !ok {
			return inventory.ErrInventoryNotFound
		}
		found = copyInventory(inv)
		return nil
	})
	return found, err
}

// LockByProductIDs the store lock already serialises writers.
func (r *inventoryRepository) LockByProductIDs(ctx context.Context, productIDs []uint) (map[uint]*inventory.Inventory, error) {
	found := make(map[uint]*inventory.Inventory, len(productIDs))
	err := r.store.run(ctx, func(st *state) error {
		for _, id := range productIDs {
			if inv, ok := st.inventories[id]; ok {
				found[id] = copyInventory(inv)
			}
		}
		return nil
	})
	return found, err
}

func (r *inventoryRepository) Create(ctx context.Context, inv *inventory.Inventory) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	return r.store.run(ctx, func(st *state) error {
		if _, ok := st.inventories[inv.ProductID]; ok {
			return inventory.ErrInventoryExists
		}
		st.inventories[inv.ProductID] = copyInventory(inv)
		return nil
	})
}

func (r *inventoryRepository) Reserve(ctx context.Context, productID uint, quantity int) (*inventory.Inventory, error) {
	return r.apply(ctx, productID, func(inv *inventory.Inventory) error { return inv.Reserve(quantity) })
}

func (r *inventoryRepository) Release(ctx context.Context, productID uint, quantity int) (*inventory.Inventory, error) {
	return r.apply(ctx, productID, func(inv *inventory.Inventory) error { return inv.Release(quantity) })
}

func (r *inventoryRepository) Restock(ctx context.Context, productID uint, quantity int) (*inventory.Inventory, error) {
	return r.apply(ctx, productID, func(inv *inventory.Inventory) error { return inv.Restock(quantity) })
}

// apply mutates a copy and stores it only when the change succeeded,
// the in-memory form of a conditional UPDATE.
func (r *inventoryRepository) apply(ctx context.Context, productID uint, change func(inv *inventory.Inventory) error) (*inventory.Inventory, error) {
	var after *inventory.Inventory
	err := r.store.run(ctx, func(st *state) error {
		current, ok := st.inventories[productID]
		if !ok {
			return inventory.ErrInventoryNotFound
		}
		next := copyInventory(current)
		if err := change(next); err != nil {
			return err
		}
		st.inventories[productID] = next
		after = copyInventory(next)
		return nil
	})
	return after, err
}

type inventoryLogRepository struct {
	store *Store
}

func NewInventoryLogRepository(store *Store) inventory.LogRepository {
	return &inventoryLogRepository{store: store}
}

func (r *inventoryLogRepository) Create(ctx context.Context, log *inventory.Log) error {
	return r.store.run(ctx, func(st *state) error {
		log.ID = st.nextID("inventory_logs")
		if log.CreatedAt.IsZero() {
			log.CreatedAt = time.Now()
		}
		cp := *log
		st.invLogs = append(st.invLogs, &cp)
		return nil
	})
}

func (r *inventoryLogRepository) ListByProductID(ctx context.Context, productID uint, limit int) ([]*inventory.Log, error) {
	var logs []*inventory.Log
	err := r.store.run(ctx, func(st *state) error {
		for i := len(st.invLogs) - 1; i >= 0 && (limit <= 0 || len(logs) < limit); i-- {
			if l := st.invLogs[i]; l.ProductID == productID {
				cp := *l
				logs = append(logs, &cp)
			}
		}
		return nil
	})
	return logs, err
}

func (r *inventoryLogRepository) ListByOrderID(ctx context.Context, orderID uint) ([]*inventory.Log, error) {
	var logs []*inventory.Log
	err := r.store.run(ctx, func(st *state) error {
		for _, l := range st.invLogs {
			if l.OrderID == orderID {
				cp := *l
				logs = append(logs, &cp)
			}
		}
		sort.SliceStable(logs, func(i, j int) bool { return logs[i].ID < logs[j].ID })
		return nil
	})
	return logs, err
}
