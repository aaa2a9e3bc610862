package rating

import (
	"context"
	"fmt"

	domain "github.com/vendora/marketplace/internal/domain/rating"
	"github.com/vendora/marketplace/internal/observability"
	"github.com/vendora/marketplace/internal/observability/logctx"
)

const componentRatingService = "rating_service"

type IDGenerator interface {
	NewID() string
}

// OrderMarker flags a vendor entry on an order as rated. Satisfied by the
// order service.
type OrderMarker interface {
	MarkVendorRated(ctx context.Context, orderID, vendorID string) error
}

// Service manages customer ratings of vendors.
type Service struct {
	repo   domain.Repository
	orders OrderMarker
	idGen  IDGenerator
	tel    observability.Observability

	log observability.Logger
}

func NewService(repo domain.Repository, orders OrderMarker, idGen IDGenerator, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		repo:   repo,
		orders: orders,
		idGen:  idGen,
		tel:    tel,
		log:    tel.Logger().With(observability.F("component", componentRatingService)),
	}
}

type AddInput struct {
	CustomerID string
	VendorID   string
	OrderID    string
	Rating     float64
	Comment    string
}

// Add records a rating and marks the vendor's entry on the rated order.
// The mark is best effort: a rating against an already-deleted order still
// stands.
func (s *Service) Add(ctx context.Context, input AddInput) (*domain.VendorRating, error) {
	logger := logctx.FromOr(ctx, s.log)

	r, err := domain.New(s.idGen.NewID(), input.CustomerID, input.VendorID, input.OrderID, input.Rating, input.Comment)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, r); err != nil {
		return nil, fmt.Errorf("rating: insert: %w", err)
	}

	if input.OrderID != "" {
		if err := s.orders.MarkVendorRated(ctx, input.OrderID, input.VendorID); err != nil {
			logger.Warn("rating_order_mark_failed",
				observability.F("order_id", input.OrderID),
				observability.F("vendor_id", input.VendorID),
				observability.F("error", err.Error()),
			)
		}
	}
	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.VendorRating, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) ListByVendor(ctx context.Context, vendorID string) ([]*domain.VendorRating, error) {
	if vendorID == "" {
		return nil, domain.ErrInvalidVendor
	}
	return s.repo.FindByVendor(ctx, vendorID)
}

// Update changes the value and comment of an existing rating.
func (s *Service) Update(ctx context.Context, id string, value float64, comment string) (*domain.VendorRating, error) {
	if value < 1 || value > 5 {
		return nil, domain.ErrInvalidRating
	}
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Rating = value
	r.Comment = comment
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
