// Package memory is an in-process store with the same transactional contract
// as the MySQL store. Transactions are serialised by one store-wide lock and
// roll back by restoring a snapshot.
package memory

import (
	"context"
	"sync"

	"github.com/xiebiao/rental/internal/domain/booking"
	"github.com/xiebiao/rental/internal/domain/inventory"
	"github.com/xiebiao/rental/internal/domain/order"
	"github.com/xiebiao/rental/internal/domain/payment"
)

type txKey struct{}

// Store holds every table. Use NewTxManager and the New*Repository
// constructors to get the ports the use cases need.
type Store struct {
	mu   sync.Mutex
	data *state
}

func NewStore() *Store {
	return &Store{data: newState()}
}

type state struct {
	seq         map[string]uint
	inventories map[uint]*inventory.Inventory
	invLogs     []*inventory.Log
	bookings    map[uint]*booking.Booking
	orders      map[uint]*order.Order
	payments    []*payment.Payment
	refunds     map[uint]*payment.Refund
}

func newState() *state {
	return &state{
		seq:         make(map[string]uint),
		inventories: make(map[uint]*inventory.Inventory),
		bookings:    make(map[uint]*booking.Booking),
		orders:      make(map[uint]*order.Order),
		refunds:     make(map[uint]*payment.Refund),
	}
}

func (s *state) nextID(table string) uint {
	s.seq[table]++
	return s.seq[table]
}

// clone deep copies every table.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.seq {
		c.seq[k] = v
	}
	for id, inv := range s.inventories {
		c.inventories[id] = copyInventory(inv)
	}
	c.invLogs = make([]*inventory.Log, len(s.invLogs))
	for i, l := range s.invLogs {
		cp := *l
		c.invLogs[i] = &cp
	}
	for id, b := range s.bookings {
		c.bookings[id] = copyBooking(b)
	}
	for id, o := range s.orders {
		c.orders[id] = copyOrder(o)
	}
	c.payments = make([]*payment.Payment, len(s.payments))
	for i, p := range s.payments {
		cp := *p
		c.payments[i] = &cp
	}
	for id, r := range s.refunds {
		c.refunds[id] = copyRefund(r)
	}
	return c
}

// run executes fn against the live state, taking the store lock unless ctx
// already belongs to one of this store's transactions.
func (s *Store) run(ctx context.Context, fn func(st *state) error) error {
	if owner, _ := ctx.Value(txKey{}).(*Store); owner == s {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// TxManager memory implementation of the unit of work.
type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Transaction runs fn holding the store lock; an error restores the state
// as it was before fn. Nested calls join the outer transaction.
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s := m.store
	if owner, _ := ctx.Value(txKey{}).(*Store); owner == s {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func copyInventory(inv *inventory.Inventory) *inventory.Inventory {
	cp := *inv
	return &cp
}

func copyBooking(b *booking.Booking) *booking.Booking {
	cp := *b
	cp.Items = append([]booking.Item(nil), b.Items...)
	if b.DeletedAt != nil {
		t := *b.DeletedAt
		cp.DeletedAt = &t
	}
	return &cp
}

func copyOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Items = append([]order.Item(nil), o.Items...)
	cp.OutsourcedItems = append([]order.OutsourcedItem(nil), o.OutsourcedItems...)
	cp.Dispatches = append([]order.Fulfillment(nil), o.Dispatches...)
	cp.Returns = append([]order.Fulfillment(nil), o.Returns...)
	if o.DeletedAt != nil {
		t := *o.DeletedAt
		cp.DeletedAt = &t
	}
	return &cp
}

func copyRefund(r *payment.Refund) *payment.Refund {
	cp := *r
	if r.ResolvedAt != nil {
		t := *r.ResolvedAt
		cp.ResolvedAt = &t
	}
	if r.DeletedAt != nil {
		t := *r.DeletedAt
		cp.DeletedAt = &t
	}
	return &cp
}
