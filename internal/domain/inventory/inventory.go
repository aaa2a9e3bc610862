package inventory

import (
	"errors"
	"time"
)

// LowStockThreshold is the quantity below which a vendor alert fires.
const LowStockThreshold = 10

var (
	ErrNotFound          = errors.New("inventory: not found")
	ErrConflict          = errors.New("inventory: already exists")
	ErrInvalidProduct    = errors.New("inventory: product id is required")
	ErrNegativeQuantity  = errors.New("inventory: stock quantity cannot be negative")
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	ErrHasOpenOrders     = errors.New("inventory: product is referenced by open orders")
)

// Record holds the stock position for one product (1:1 with the product).
// VendorID is denormalised from the product so low-stock alerts can be
// routed without a catalogue lookup.
type Record struct {
	ID            string
	ProductID     string
	VendorID      string
	StockQuantity int
	LowStockAlert bool
	LastUpdated   time.Time
}

// NewRecord creates a stock record for a product.
func NewRecord(id, productID, vendorID string, quantity int) (*Record, error) {
	if productID == "" {
		return nil, ErrInvalidProduct
	}
	if quantity < 0 {
		return nil, ErrNegativeQuantity
	}
	r := &Record{
		ID:            id,
		ProductID:     productID,
		VendorID:      vendorID,
		StockQuantity: quantity,
		LastUpdated:   time.Now().UTC(),
	}
	r.refreshAlert()
	return r, nil
}

// Apply adjusts the stock quantity by delta (negative for consumption).
// The quantity never goes below zero; a draining delta larger than the
// remaining stock fails with ErrInsufficientStock.
func (r *Record) Apply(delta int) error {
	next := r.StockQuantity + delta
	if next < 0 {
		return ErrInsufficientStock
	}
	r.StockQuantity = next
	r.refreshAlert()
	r.LastUpdated = time.Now().UTC()
	return nil
}

// SetQuantity replaces the absolute stock quantity.
func (r *Record) SetQuantity(quantity int) error {
	if quantity < 0 {
		return ErrNegativeQuantity
	}
	r.StockQuantity = quantity
	r.refreshAlert()
	r.LastUpdated = time.Now().UTC()
	return nil
}

// Low reports whether the record sits below the low-stock threshold.
func (r *Record) Low() bool {
	return r.StockQuantity < LowStockThreshold
}

func (r *Record) refreshAlert() {
	r.LowStockAlert = r.Low()
}

// Clone returns a copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}
