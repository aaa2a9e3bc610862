package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/vendora/marketplace/internal/domain/inventory"
)

type InventoryRepository struct {
	mu        sync.RWMutex
	records   map[string]*domain.Record
	byProduct map[string]string // product id -> record id
}

func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		records:   make(map[string]*domain.Record),
		byProduct: make(map[string]string),
	}
}

func (r *InventoryRepository) Insert(ctx context.Context, rec *domain.Record) error {
	_ = ctx
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("inventory repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[rec.ID]; exists {
		return domain.ErrConflict
	}
	if _, exists := r.byProduct[rec.ProductID]; exists {
		return domain.ErrConflict
	}

	r.records[rec.ID] = rec.Clone()
	r.byProduct[rec.ProductID] = rec.ID
	return nil
}

func (r *InventoryRepository) FindByID(ctx context.Context, id string) (*domain.Record, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec.Clone(), nil
}

func (r *InventoryRepository) FindByProduct(ctx context.Context, productID string) (*domain.Record, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byProduct[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.records[id].Clone(), nil
}

func (r *InventoryRepository) FindAll(ctx context.Context) ([]*domain.Record, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// ApplyDelta holds the lock across the guard and the write, making the
// adjustment atomic with respect to concurrent consumers.
func (r *InventoryRepository) ApplyDelta(ctx context.Context, id string, delta int) (*domain.Record, int, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, 0, domain.ErrNotFound
	}
	previous := rec.StockQuantity
	if err := rec.Apply(delta); err != nil {
		return nil, 0, err
	}
	return rec.Clone(), previous, nil
}

func (r *InventoryRepository) Replace(ctx context.Context, rec *domain.Record) error {
	_ = ctx
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("inventory repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[rec.ID]; !exists {
		return domain.ErrNotFound
	}
	r.records[rec.ID] = rec.Clone()
	r.byProduct[rec.ProductID] = rec.ID
	return nil
}

func (r *InventoryRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.byProduct, rec.ProductID)
	delete(r.records, id)
	return nil
}
