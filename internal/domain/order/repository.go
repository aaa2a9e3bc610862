package order

import "context"

// Filter narrows list queries. Zero value matches every order.
type Filter struct {
	// CustomerID matches orders placed by the customer.
	CustomerID string
	// VendorID matches orders containing a vendor entry for the vendor.
	VendorID string
}

type Repository interface {
	Insert(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	// CodeExists reports whether an order already carries the given code.
	CodeExists(ctx context.Context, code string) (bool, error)
	// Find returns a page of orders matching the filter, newest first.
	// page is 1-based.
	Find(ctx context.Context, f Filter, page, pageSize int) ([]*Order, error)
	// Update replaces the stored order, conditional on o.Version still
	// matching the stored version. Returns ErrInvalidState when another
	// write landed since the caller's read, ErrNotFound when absent.
	Update(ctx context.Context, o *Order) error
	// UpdateStatus performs a compare-and-swap on the status field.
	// It returns ErrInvalidState when the order was not observed in the
	// expected status, ErrNotFound when absent.
	UpdateStatus(ctx context.Context, id string, expected, next Status) error
	// HasOpenForProduct reports whether any order in an open status still
	// references the product among its items.
	HasOpenForProduct(ctx context.Context, productID string) (bool, error)
}
