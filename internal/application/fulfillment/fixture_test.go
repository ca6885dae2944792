package fulfillment

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xiebiao/rental/internal/application/port"
	"github.com/xiebiao/rental/internal/domain/booking"
	"github.com/xiebiao/rental/internal/domain/inventory"
	"github.com/xiebiao/rental/internal/domain/order"
	"github.com/xiebiao/rental/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/rental/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.InitMetrics()
	os.Exit(m.Run())
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []port.Event
}

func (n *recordingNotifier) Notify(_ context.Context, e port.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	types := make([]string, 0, len(n.events))
	for _, e := range n.events {
		types = append(types, e.Type)
	}
	return types
}

type mapCache struct {
	mu   sync.Mutex
	data map[uint]string
	hits int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[uint]string)}
}

func (c *mapCache) GetOrder(_ context.Context, id uint) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[id]
	if ok {
		c.hits++
	}
	return v, nil
}

func (c *mapCache) SetOrder(_ context.Context, id uint, data string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[id] = data
	return nil
}

func (c *mapCache) DeleteOrder(_ context.Context, id uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, id)
	return nil
}

const actor = uint(7)

// fixture one store and every order use case wired against it.
type fixture struct {
	bookings    booking.Repository
	orders      order.Repository
	inventories inventory.Repository
	logs        inventory.LogRepository
	notifier    *recordingNotifier
	cache       *mapCache

	create   *CreateOrderUseCase
	update   *UpdateOrderUseCase
	dispatch *RecordDispatchUseCase
	ret      *RecordReturnUseCase
	get      *GetOrderUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	tx := memory.NewTxManager(store)
	logger := zaptest.NewLogger(t)

	f := &fixture{
		bookings:    memory.NewBookingRepository(store),
		orders:      memory.NewOrderRepository(store),
		inventories: memory.NewInventoryRepository(store),
		logs:        memory.NewInventoryLogRepository(store),
		notifier:    &recordingNotifier{},
		cache:       newMapCache(),
	}
	f.create = NewCreateOrderUseCase(f.orders, f.bookings, f.inventories, f.logs, tx, f.notifier, f.cache, time.Minute, logger)
	f.update = NewUpdateOrderUseCase(f.orders, f.inventories, f.logs, tx, f.notifier, f.cache, logger)
	f.dispatch = NewRecordDispatchUseCase(f.orders, tx, f.notifier, f.cache, logger)
	f.ret = NewRecordReturnUseCase(f.orders, f.inventories, f.logs, tx, f.notifier, f.cache, logger)
	f.get = NewGetOrderUseCase(f.orders, f.cache, time.Minute, logger)
	return f
}

func (f *fixture) stock(t *testing.T, productID uint, qty int) {
	t.Helper()
	inv, err := inventory.NewInventory(productID, qty)
	require.NoError(t, err)
	require.NoError(t, f.inventories.Create(context.Background(), inv))
}

func (f *fixture) inventory(t *testing.T, productID uint) *inventory.Inventory {
	t.Helper()
	inv, err := f.inventories.GetByProductID(context.Background(), productID)
	require.NoError(t, err)
	require.NoError(t, inv.Validate())
	return inv
}

func (f *fixture) booking(t *testing.T, paid int64) *booking.Booking {
	t.Helper()
	start := time.Now().Add(24 * time.Hour)
	b, err := booking.NewBooking(booking.GenerateBookingNo(), 11, start, start.Add(72*time.Hour),
		[]booking.Item{{ProductID: 1, Quantity: 1}}, 1000, actor)
	require.NoError(t, err)
	b.AmountPaid = paid
	require.NoError(t, f.bookings.Create(context.Background(), b))
	return b
}

// order creates an order with one line per entry of lines (product -> qty).
func (f *fixture) order(t *testing.T, lines map[uint]int) *OrderView {
	t.Helper()
	b := f.booking(t, 0)
	req := CreateOrderRequest{BookingID: b.ID, Actor: actor, Pricing: PricingInput{TotalAmount: 1000}}
	for _, id := range productIDs(lines) {
		req.Items = append(req.Items, LineInput{ProductID: id, Quantity: lines[id], UnitPrice: 10, TotalPrice: int64(10 * lines[id])})
	}
	view, err := f.create.Execute(context.Background(), req)
	require.NoError(t, err)
	return view
}

func dispatchOf(productID uint, qty int) FulfillmentInput {
	return FulfillmentInput{ProductID: productID, Quantity: qty, Date: "2026-03-02", Time: "09:30"}
}
