package order

import (
	"fmt"
	"time"

	apperrors "github.com/xiebiao/rental/pkg/errors"
)

// Kind separates dispatch from return records (one table, one column).
type Kind string

const (
	KindDispatch Kind = "dispatch"
	KindReturn   Kind = "return"
)

// RecordStatus status stamped on a fulfillment record.
type RecordStatus string

const (
	RecordDispatched RecordStatus = "dispatched"
	RecordInReturn   RecordStatus = "inreturn"
)

// Fulfillment one dispatch or return of a quantity of one line.
// Exactly one of ProductID and OutsourcedProductID is set.
type Fulfillment struct {
	ID                  uint
	OrderID             uint
	Kind                Kind
	ProductID           uint
	OutsourcedProductID uint
	Quantity            int
	At                  time.Time // dispatch/return date and time
	Actor               uint
	Status              RecordStatus
	CreatedAt           time.Time
}

// LineRef identifies an ordered or outsourced line.
type LineRef struct {
	Outsourced bool
	ID         uint
}

func (r LineRef) String() string {
	if r.Outsourced {
		return fmt.Sprintf("outsourced product %d", r.ID)
	}
	return fmt.Sprintf("product %d", r.ID)
}

// Ref returns the line the record refers to.
func (f Fulfillment) Ref() LineRef {
	if f.OutsourcedProductID != 0 {
		return LineRef{Outsourced: true, ID: f.OutsourcedProductID}
	}
	return LineRef{ID: f.ProductID}
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ParseMoment combines a YYYY-MM-DD date and an HH:MM (or HH:MM:SS) time in loc.
func ParseMoment(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD", date)
	}
	c, err := time.Parse(timeLayout, clock)
	if err != nil {
		if c, err = time.Parse(timeLayout+":05", clock); err != nil {
			return time.Time{}, fmt.Errorf("time %q: want HH:MM", clock)
		}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc), nil
}

// ordered quantity per line.
func (o *Order) ordered() map[LineRef]int {
	q := make(map[LineRef]int, len(o.Items)+len(o.OutsourcedItems))
	for _, it := range o.Items {
		q[LineRef{ID: it.ProductID}] += it.Quantity
	}
	for _, it := range o.OutsourcedItems {
		q[LineRef{Outsourced: true, ID: it.OutsourcedProductID}] += it.Quantity
	}
	return q
}

func sumByRef(records []Fulfillment) map[LineRef]int {
	q := make(map[LineRef]int)
	for _, r := range records {
		q[r.Ref()] += r.Quantity
	}
	return q
}

// Dispatched total dispatched quantity of a line.
func (o *Order) Dispatched(ref LineRef) int {
	return sumByRef(o.Dispatches)[ref]
}

// Returned total returned quantity of a line.
func (o *Order) Returned(ref LineRef) int {
	return sumByRef(o.Returns)[ref]
}

// validateBatch checks shape and line membership of every record before any is applied.
func (o *Order) validateBatch(batch []Fulfillment, invalid *apperrors.AppError) error {
	if len(batch) == 0 {
		return invalid.Withf("no items")
	}
	ordered := o.ordered()
	for i, r := range batch {
		if (r.ProductID == 0) == (r.OutsourcedProductID == 0) {
			return invalid.Withf("item %d: exactly one of product_id and outsourced_product_id is required", i)
		}
		if r.Quantity <= 0 {
			return invalid.Withf("item %d: quantity must be greater than 0", i)
		}
		if r.At.IsZero() {
			return invalid.Withf("item %d: date and time are required", i)
		}
		if _, ok := ordered[r.Ref()]; !ok {
			return invalid.Withf("item %d: %s is not on the order", i, r.Ref())
		}
	}
	return nil
}

// RecordDispatches validates and appends a dispatch batch, then derives the status.
// The whole batch is rejected when any record is invalid or would dispatch
// more than was ordered.
func (o *Order) RecordDispatches(batch []Fulfillment, actor uint) error {
	if o.Status != StatusCreated && o.Status != StatusInitiated {
		return ErrInvalidStatusTransition.Withf("cannot dispatch a %s order", o.Status)
	}
	if err := o.validateBatch(batch, ErrInvalidDispatchItem); err != nil {
		return err
	}

	ordered := o.ordered()
	total := sumByRef(o.Dispatches)
	for i, r := range batch {
		total[r.Ref()] += r.Quantity
		if total[r.Ref()] > ordered[r.Ref()] {
			return ErrInvalidDispatchItem.Withf("item %d: %s dispatched %d exceeds ordered %d",
				i, r.Ref(), total[r.Ref()], ordered[r.Ref()])
		}
	}

	now := time.Now()
	for _, r := range batch {
		r.OrderID = o.ID
		r.Kind = KindDispatch
		r.Status = RecordDispatched
		r.Actor = actor
		r.CreatedAt = now
		o.Dispatches = append(o.Dispatches, r)
	}

	if err := o.TransitionTo(o.dispatchStatus()); err != nil {
		return err
	}
	o.touch(actor)
	return nil
}

// RecordReturns validates and appends a return batch, then derives the status.
// Returns start once every line is dispatched. It returns the owned-product
// quantities of the batch, which go back to available stock.
func (o *Order) RecordReturns(batch []Fulfillment, actor uint) (map[uint]int, error) {
	switch o.Status {
	case StatusDelivered, StatusInReturn:
	default:
		return nil, ErrInvalidStatusTransition.Withf("cannot return items of a %s order", o.Status)
	}
	if err := o.validateBatch(batch, ErrInvalidReturnItem); err != nil {
		return nil, err
	}

	dispatched := sumByRef(o.Dispatches)
	total := sumByRef(o.Returns)
	for i, r := range batch {
		total[r.Ref()] += r.Quantity
		if total[r.Ref()] > dispatched[r.Ref()] {
			return nil, ErrInvalidReturnItem.Withf("item %d: %s returned %d exceeds dispatched %d",
				i, r.Ref(), total[r.Ref()], dispatched[r.Ref()])
		}
	}

	now := time.Now()
	release := make(map[uint]int)
	for _, r := range batch {
		r.OrderID = o.ID
		r.Kind = KindReturn
		r.Status = RecordInReturn
		r.Actor = actor
		r.CreatedAt = now
		o.Returns = append(o.Returns, r)
		if r.ProductID != 0 {
			release[r.ProductID] += r.Quantity
		}
	}

	if err := o.TransitionTo(o.returnStatus()); err != nil {
		return nil, err
	}
	o.touch(actor)
	return release, nil
}

// ReplaceLines applies an order update and returns the per-product change of
// the owned quantities (new - old, zero entries omitted). Positive deltas must
// be reserved, negative ones released.
func (o *Order) ReplaceLines(items []Item, outsourced []OutsourcedItem, pricing Pricing, actor uint) (map[uint]int, error) {
	if o.HasReturns() {
		return nil, ErrOrderHasReturns
	}
	if err := ValidateLines(items, outsourced); err != nil {
		return nil, err
	}
	if err := pricing.validate(); err != nil {
		return nil, err
	}

	next := &Order{Items: items, OutsourcedItems: outsourced, Dispatches: o.Dispatches}
	nextOrdered := next.ordered()
	for ref, qty := range sumByRef(o.Dispatches) {
		if nextOrdered[ref] < qty {
			return nil, ErrBelowDispatched.Withf("%s already dispatched %d", ref, qty)
		}
	}

	target := o.Status
	if len(o.Dispatches) > 0 {
		target = next.dispatchStatus()
		if target != o.Status && !o.CanTransitionTo(target) {
			return nil, ErrInvalidStatusTransition.Withf("%s -> %s", o.Status, target)
		}
	}

	delta := make(map[uint]int)
	for id, qty := range productQuantities(items) {
		delta[id] += qty
	}
	for id, qty := range o.ProductQuantities() {
		delta[id] -= qty
	}
	for id, d := range delta {
		if d == 0 {
			delete(delta, id)
		}
	}

	for i := range items {
		items[i].OrderID = o.ID
	}
	for i := range outsourced {
		outsourced[i].OrderID = o.ID
	}
	o.Items = items
	o.OutsourcedItems = outsourced
	o.SubTotal = pricing.SubTotal
	o.Discount = pricing.Discount
	o.Tax = pricing.Tax
	o.TotalAmount = pricing.TotalAmount

	if err := o.TransitionTo(target); err != nil {
		return nil, err
	}
	o.touch(actor)
	return delta, nil
}

// dispatchStatus Delivered when every line is fully dispatched, else Initiated.
func (o *Order) dispatchStatus() Status {
	dispatched := sumByRef(o.Dispatches)
	for ref, qty := range o.ordered() {
		if dispatched[ref] < qty {
			return StatusInitiated
		}
	}
	return StatusDelivered
}

// returnStatus Returned when every line is fully returned, else InReturn.
func (o *Order) returnStatus() Status {
	returned := sumByRef(o.Returns)
	for ref, qty := range o.ordered() {
		if returned[ref] < qty {
			return StatusInReturn
		}
	}
	return StatusReturned
}
