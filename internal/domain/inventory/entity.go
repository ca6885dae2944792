package inventory

import "time"

// Inventory stock counters of one product.
// Invariants (checked by Validate, kept by the conditional updates in the repository):
//   - Available == Quantity - Reserved
//   - Available >= 0, Reserved >= 0
//
// A record is created on first stock addition and never deleted.
type Inventory struct {
	ProductID uint
	Quantity  int // total owned
	Reserved  int // committed to active orders
	Available int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewInventory creates the record for a product onboarded with quantity units.
func NewInventory(productID uint, quantity int) (*Inventory, error) {
	if productID == 0 {
		return nil, ErrInvalidProductID
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now()
	return &Inventory{
		ProductID: productID,
		Quantity:  quantity,
		Available: quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate checks the counter invariants.
func (i *Inventory) Validate() error {
	if i.ProductID == 0 {
		return ErrInvalidProductID
	}
	if i.Available < 0 || i.Reserved < 0 {
		return ErrNegativeStock
	}
	if i.Available != i.Quantity-i.Reserved {
		return ErrInconsistentStock
	}
	return nil
}

// CanReserve reports whether quantity units are free.
func (i *Inventory) CanReserve(quantity int) bool {
	return quantity > 0 && i.Available >= quantity
}

// Reserve moves quantity units from available to reserved.
// Used by the in-memory store; the SQL store does the same in one conditional UPDATE.
func (i *Inventory) Reserve(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.Available < quantity {
		return ErrInsufficientStock.WithData([]Shortfall{{
			ProductID: i.ProductID,
			Requested: quantity,
			Available: i.Available,
		}})
	}
	i.Available -= quantity
	i.Reserved += quantity
	i.UpdatedAt = time.Now()
	return nil
}

// Release is the inverse of Reserve.
func (i *Inventory) Release(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.Reserved < quantity {
		return ErrInsufficientReserved
	}
	i.Available += quantity
	i.Reserved -= quantity
	i.UpdatedAt = time.Now()
	return nil
}

// Restock adds quantity owned units, all of them available.
func (i *Inventory) Restock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	i.Quantity += quantity
	i.Available += quantity
	i.UpdatedAt = time.Now()
	return nil
}

// Shortfall one line that could not be reserved.
type Shortfall struct {
	ProductID uint `json:"product_id"`
	Requested int  `json:"requested"`
	Available int  `json:"available"`
}

// Availability answer of an availability check.
type Availability struct {
	ProductID  uint `json:"product_id"`
	Available  int  `json:"available"`
	Sufficient bool `json:"sufficient"`
}

// Check compares the record against a requested quantity.
func (i *Inventory) Check(requested int) Availability {
	return Availability{
		ProductID:  i.ProductID,
		Available:  i.Available,
		Sufficient: requested > 0 && i.Available >= requested,
	}
}
