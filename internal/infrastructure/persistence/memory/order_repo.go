package memory

import (
	"context"

	"github.com/xiebiao/rental/internal/domain/order"
)

type orderRepository struct {
	store *Store
}

func NewOrderRepository(store *Store) order.Repository {
	return &orderRepository{store: store}
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.store.run(ctx, func(st *state) error {
		for _, existing := range st.orders {
			if existing.OrderNo == o.OrderNo {
				return order.ErrOrderAlreadyExists
			}
		}
		o.ID = st.nextID("orders")
		assignLineIDs(st, o)
		st.orders[o.ID] = copyOrder(o)
		return nil
	})
}

func assignLineIDs(st *state, o *order.Order) {
	for i := range o.Items {
		o.Items[i].ID = st.nextID("order_items")
		o.Items[i].OrderID = o.ID
	}
	for i := range o.OutsourcedItems {
		o.OutsourcedItems[i].ID = st.nextID("order_items")
		o.OutsourcedItems[i].OrderID = o.ID
	}
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var found *order.Order
	err := r.store.run(ctx, func(st *state) error {
		o, ok := st.orders[id]
		if !ok || !o.IsActive() {
			return order.ErrOrderNotFound
		}
		found = copyOrder(o)
		return nil
	})
	return found, err
}

func (r *orderRepository) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *orderRepository) FindActiveByBookingID(ctx context.Context, bookingID uint) (*order.Order, error) {
	var found *order.Order
	err := r.store.run(ctx, func(st *state) error {
		for _, o := range st.orders {
			if o.BookingID == bookingID && o.IsActive() {
				found = copyOrder(o)
				return nil
			}
		}
		return order.ErrOrderNotFound
	})
	return found, err
}

func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	return r.store.run(ctx, func(st *state) error {
		current, ok := st.orders[o.ID]
		if !ok || !current.IsActive() {
			return order.ErrOrderNotFound
		}
		next := copyOrder(current)
		next.Status = o.Status
		next.SubTotal = o.SubTotal
		next.Discount = o.Discount
		next.Tax = o.Tax
		next.TotalAmount = o.TotalAmount
		next.AmountPaid = o.AmountPaid
		next.UpdatedBy = o.UpdatedBy
		next.UpdatedAt = o.UpdatedAt
		st.orders[o.ID] = next
		return nil
	})
}

func (r *orderRepository) ReplaceLines(ctx context.Context, o *order.Order) error {
	return r.store.run(ctx, func(st *state) error {
		current, ok := st.orders[o.ID]
		if !ok || !current.IsActive() {
			return order.ErrOrderNotFound
		}
		assignLineIDs(st, o)
		next := copyOrder(current)
		next.Items = append([]order.Item(nil), o.Items...)
		next.OutsourcedItems = append([]order.OutsourcedItem(nil), o.OutsourcedItems...)
		st.orders[o.ID] = next
		return nil
	})
}

func (r *orderRepository) AddFulfillments(ctx context.Context, records []order.Fulfillment) error {
	return r.store.run(ctx, func(st *state) error {
		for i := range records {
			current, ok := st.orders[records[i].OrderID]
			if !ok || !current.IsActive() {
				return order.ErrOrderNotFound
			}
			records[i].ID = st.nextID("order_fulfillments")
			next := copyOrder(current)
			if records[i].Kind == order.KindReturn {
				next.Returns = append(next.Returns, records[i])
			} else {
				next.Dispatches = append(next.Dispatches, records[i])
			}
			st.orders[next.ID] = next
		}
		return nil
	})
}
