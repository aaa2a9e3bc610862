package product

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("product: not found")
	ErrConflict      = errors.New("product: already exists")
	ErrInvalidName   = errors.New("product: name is required")
	ErrInvalidVendor = errors.New("product: vendor id is required")
	ErrInvalidPrice  = errors.New("product: price must be zero or greater")
	ErrBadStatus     = errors.New("product: unknown product status")
)

type Status string

const (
	StatusActive      Status = "Active"
	StatusDeactivated Status = "Deactivated"
)

// Valid reports whether s is a known product status.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusDeactivated
}

type Product struct {
	ID          string
	Name        string
	Category    string
	Description string
	VendorID    string
	Price       float64
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func New(id, name, category, description, vendorID string, price float64) (*Product, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if vendorID == "" {
		return nil, ErrInvalidVendor
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}
	now := time.Now().UTC()
	return &Product{
		ID:          id,
		Name:        name,
		Category:    category,
		Description: description,
		VendorID:    vendorID,
		Price:       price,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Clone returns a copy of the product.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

type Repository interface {
	Insert(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindAll(ctx context.Context, page, pageSize int) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
