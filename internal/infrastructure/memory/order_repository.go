package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/vendora/marketplace/internal/domain/order"
)

// OrderRepository is a mutex-guarded in-memory order store. Used by tests
// and as the default store when no database is configured.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	codes  map[string]string // order code -> order id
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]*domain.Order),
		codes:  make(map[string]string),
	}
}

func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	_ = ctx
	if o == nil || o.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[o.ID]; exists {
		return domain.ErrConflict
	}
	if _, exists := r.codes[o.Code]; exists {
		return domain.ErrConflict
	}

	r.orders[o.ID] = o.Clone()
	r.codes[o.Code] = o.ID
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o.Clone(), nil
}

func (r *OrderRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.codes[code]
	return ok, nil
}

func (r *OrderRepository) Find(ctx context.Context, f domain.Filter, page, pageSize int) ([]*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	matched := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		if f.VendorID != "" && o.VendorEntry(f.VendorID) == nil {
			continue
		}
		matched = append(matched, o.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PlacedAt.After(matched[j].PlacedAt)
	})

	start := (page - 1) * pageSize
	if start >= len(matched) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	_ = ctx
	if o == nil || o.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur, exists := r.orders[o.ID]
	if !exists {
		return domain.ErrNotFound
	}
	if cur.Version != o.Version {
		return domain.ErrInvalidState
	}
	next := o.Clone()
	next.Version++
	r.orders[o.ID] = next
	return nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, expected, next domain.Status) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != expected {
		return domain.ErrInvalidState
	}
	o.Status = next
	o.Version++
	o.Touch()
	return nil
}

func (r *OrderRepository) HasOpenForProduct(ctx context.Context, productID string) (bool, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if !o.Status.Open() {
			continue
		}
		for _, it := range o.Items {
			if it.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}
