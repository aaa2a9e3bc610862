package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/vendora/marketplace/internal/domain/rating"
)

type RatingRepository struct {
	mu      sync.RWMutex
	ratings map[string]*domain.VendorRating
}

func NewRatingRepository() *RatingRepository {
	return &RatingRepository{ratings: make(map[string]*domain.VendorRating)}
}

func (r *RatingRepository) Insert(ctx context.Context, vr *domain.VendorRating) error {
	_ = ctx
	if vr == nil || vr.ID == "" {
		return fmt.Errorf("rating repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.ratings[vr.ID] = vr.Clone()
	return nil
}

func (r *RatingRepository) FindByID(ctx context.Context, id string) (*domain.VendorRating, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	vr, ok := r.ratings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return vr.Clone(), nil
}

func (r *RatingRepository) FindByVendor(ctx context.Context, vendorID string) ([]*domain.VendorRating, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.VendorRating, 0)
	for _, vr := range r.ratings {
		if vr.VendorID == vendorID {
			out = append(out, vr.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *RatingRepository) Update(ctx context.Context, vr *domain.VendorRating) error {
	_ = ctx
	if vr == nil || vr.ID == "" {
		return fmt.Errorf("rating repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ratings[vr.ID]; !ok {
		return domain.ErrNotFound
	}
	r.ratings[vr.ID] = vr.Clone()
	return nil
}

func (r *RatingRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ratings[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.ratings, id)
	return nil
}
