package fulfillment

import (
	"context"
	"sort"

	"github.com/xiebiao/rental/internal/domain/inventory"
	"github.com/xiebiao/rental/pkg/metrics"
)

// Release reasons written to the inventory log.
const (
	releaseOrderUpdate = "order update"
	releaseReturn      = "returned"
)

// stockLedger reservation steps shared by the order use cases.
// Must run inside a transaction.
type stockLedger struct {
	inventories inventory.Repository
	logs        inventory.LogRepository
}

// productIDs in ascending order so concurrent transactions lock rows in the same order.
func productIDs(quantities map[uint]int) []uint {
	ids := make([]uint, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ensureAvailable locks the records of every requested product and reports
// all shortfalls at once.
func (s stockLedger) ensureAvailable(ctx context.Context, want map[uint]int, operation string) error {
	if len(want) == 0 {
		return nil
	}
	ids := productIDs(want)
	records, err := s.inventories.LockByProductIDs(ctx, ids)
	if err != nil {
		return err
	}

	var shortfalls []inventory.Shortfall
	for _, id := range ids {
		inv, ok := records[id]
		if !ok {
			return inventory.ErrInventoryNotFound.Withf("product %d", id)
		}
		if a := inv.Check(want[id]); !a.Sufficient {
			shortfalls = append(shortfalls, inventory.Shortfall{
				ProductID: id,
				Requested: want[id],
				Available: a.Available,
			})
		}
	}
	if len(shortfalls) > 0 {
		metrics.AddCounterVec(metrics.StockShortfallsTotal, map[string]string{"operation": operation}, float64(len(shortfalls)))
		return inventory.InsufficientStock(shortfalls)
	}
	return nil
}

// reserve takes every quantity out of available stock and logs it against the order.
func (s stockLedger) reserve(ctx context.Context, want map[uint]int, orderID uint) error {
	for _, id := range productIDs(want) {
		inv, err := s.inventories.Reserve(ctx, id, want[id])
		if err != nil {
			return err
		}
		if err := s.logs.Create(ctx, inventory.NewReserveLog(inv, want[id], orderID)); err != nil {
			return err
		}
	}
	return nil
}

// release puts quantities back into available stock.
func (s stockLedger) release(ctx context.Context, give map[uint]int, orderID uint, reason string) error {
	for _, id := range productIDs(give) {
		inv, err := s.inventories.Release(ctx, id, give[id])
		if err != nil {
			return err
		}
		if err := s.logs.Create(ctx, inventory.NewReleaseLog(inv, give[id], orderID, reason)); err != nil {
			return err
		}
	}
	return nil
}

// splitDelta separates a per-product change into units to reserve and units to release.
func splitDelta(delta map[uint]int) (reserve, release map[uint]int) {
	reserve = make(map[uint]int)
	release = make(map[uint]int)
	for id, d := range delta {
		if d > 0 {
			reserve[id] = d
		} else if d < 0 {
			release[id] = -d
		}
	}
	return reserve, release
}
