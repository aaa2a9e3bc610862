package inventory

import "context"

type Repository interface {
	Insert(ctx context.Context, r *Record) error
	FindByID(ctx context.Context, id string) (*Record, error)
	FindByProduct(ctx context.Context, productID string) (*Record, error)
	FindAll(ctx context.Context) ([]*Record, error)
	// ApplyDelta atomically adjusts the stock quantity. The check against
	// going negative and the write are a single operation, so concurrent
	// consumers can never oversell. It returns the updated record and the
	// quantity observed immediately before the adjustment.
	ApplyDelta(ctx context.Context, id string, delta int) (updated *Record, previous int, err error)
	// Replace stores the record as-is, keyed by id.
	Replace(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id string) error
}
