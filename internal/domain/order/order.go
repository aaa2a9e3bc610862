package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("order: not found")
	ErrConflict         = errors.New("order: already exists")
	ErrEmptyItems       = errors.New("order: at least one item is required")
	ErrInvalidCustomer  = errors.New("order: customer id is required")
	ErrInvalidProduct   = errors.New("order: product id is required")
	ErrInvalidQuantity  = errors.New("order: quantity must be greater than zero")
	ErrInvalidState     = errors.New("order: transition not allowed from current status")
	ErrVendorNotInOrder = errors.New("order: vendor not associated with this order")
	ErrBadVendorStatus  = errors.New("order: unknown vendor status")
)

// Item is a single order line. Name and unit price are snapshots taken at
// placement time so later product edits never rewrite historical orders.
type Item struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   float64
}

type Address struct {
	Street  string
	City    string
	ZipCode string
}

// VendorOrderStatus tracks fulfilment of one vendor's share of an order.
// VendorName is resolved at read time and never persisted.
type VendorOrderStatus struct {
	VendorID   string
	VendorName string
	Status     VendorStatus
	Rated      bool
}

// Order is the aggregate root of the order lifecycle. Code is the
// human-facing identifier (EC- plus eight digits), distinct from ID.
// CustomerName is resolved at read time and never persisted.
type Order struct {
	ID              string
	Code            string
	CustomerID      string
	CustomerName    string
	Status          Status
	Items           []Item
	TotalAmount     float64
	ShippingAddress Address
	VendorStatus    []VendorOrderStatus
	PlacedAt        time.Time
	UpdatedAt       time.Time

	// Version is bumped by the store on every write. Repository.Update only
	// matches the version the caller read, so a read-modify-write racing any
	// other write loses instead of silently clobbering it.
	Version int64
}

// New builds a Pending order from validated item snapshots. vendors holds
// the distinct vendor ids covering the items, in first-seen order; one
// vendor entry is created per id, initialised to Processing.
func New(id, code, customerID string, items []Item, vendors []string, addr Address) (*Order, error) {
	if customerID == "" {
		return nil, ErrInvalidCustomer
	}
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	var total float64
	for _, it := range items {
		if it.ProductID == "" {
			return nil, ErrInvalidProduct
		}
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		total += float64(it.Quantity) * it.UnitPrice
	}

	vs := make([]VendorOrderStatus, 0, len(vendors))
	for _, v := range vendors {
		vs = append(vs, VendorOrderStatus{VendorID: v, Status: VendorProcessing})
	}

	now := time.Now().UTC()
	return &Order{
		ID:              id,
		Code:            code,
		CustomerID:      customerID,
		Status:          StatusPending,
		Items:           items,
		TotalAmount:     total,
		ShippingAddress: addr,
		VendorStatus:    vs,
		PlacedAt:        now,
		UpdatedAt:       now,
	}, nil
}

// VendorEntry returns the fulfilment entry for vendorID, or nil.
func (o *Order) VendorEntry(vendorID string) *VendorOrderStatus {
	for i := range o.VendorStatus {
		if o.VendorStatus[i].VendorID == vendorID {
			return &o.VendorStatus[i]
		}
	}
	return nil
}

// SetVendorStatus updates one vendor's sub-status and recomputes the
// order-level roll-up. It returns true when the change completed delivery
// of the whole order.
func (o *Order) SetVendorStatus(vendorID string, status VendorStatus) (delivered bool, err error) {
	entry := o.VendorEntry(vendorID)
	if entry == nil {
		return false, ErrVendorNotInOrder
	}
	entry.Status = status

	all, any := true, false
	for i := range o.VendorStatus {
		if o.VendorStatus[i].Status == VendorDelivered {
			any = true
		} else {
			all = false
		}
	}
	switch {
	case all:
		delivered = o.Status != StatusDelivered
		o.Status = StatusDelivered
	case any:
		o.Status = StatusPartiallyDelivered
	}
	o.touch()
	return delivered, nil
}

// ReplaceItems swaps the order lines for a re-validated set, recomputing
// the total and reconciling vendor entries: vendors still present keep
// their sub-status and rated flag, new vendors start at Processing.
func (o *Order) ReplaceItems(items []Item, vendors []string) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	var total float64
	for _, it := range items {
		if it.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		total += float64(it.Quantity) * it.UnitPrice
	}

	vs := make([]VendorOrderStatus, 0, len(vendors))
	for _, v := range vendors {
		if prev := o.VendorEntry(v); prev != nil {
			vs = append(vs, *prev)
			continue
		}
		vs = append(vs, VendorOrderStatus{VendorID: v, Status: VendorProcessing})
	}

	o.Items = items
	o.TotalAmount = total
	o.VendorStatus = vs
	o.touch()
	return nil
}

// SetShippingAddress replaces the shipping address.
func (o *Order) SetShippingAddress(addr Address) {
	o.ShippingAddress = addr
	o.touch()
}

// Touch bumps the updated-at timestamp.
func (o *Order) Touch() {
	o.touch()
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]Item(nil), o.Items...)
	clone.VendorStatus = append([]VendorOrderStatus(nil), o.VendorStatus...)
	return &clone
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
