package rating

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("rating: not found")
	ErrInvalidRating = errors.New("rating: value must be between 1 and 5")
	ErrInvalidVendor = errors.New("rating: vendor id is required")
)

// VendorRating is a customer's rating of a vendor for a specific order.
type VendorRating struct {
	ID         string
	CustomerID string
	VendorID   string
	OrderID    string
	Rating     float64
	Comment    string
	CreatedAt  time.Time
}

func New(id, customerID, vendorID, orderID string, value float64, comment string) (*VendorRating, error) {
	if vendorID == "" {
		return nil, ErrInvalidVendor
	}
	if value < 1 || value > 5 {
		return nil, ErrInvalidRating
	}
	return &VendorRating{
		ID:         id,
		CustomerID: customerID,
		VendorID:   vendorID,
		OrderID:    orderID,
		Rating:     value,
		Comment:    comment,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Clone returns a copy of the rating.
func (r *VendorRating) Clone() *VendorRating {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}

type Repository interface {
	Insert(ctx context.Context, r *VendorRating) error
	FindByID(ctx context.Context, id string) (*VendorRating, error)
	FindByVendor(ctx context.Context, vendorID string) ([]*VendorRating, error)
	Update(ctx context.Context, r *VendorRating) error
	Delete(ctx context.Context, id string) error
}
