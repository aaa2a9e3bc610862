package inventory

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/vendora/marketplace/internal/domain/inventory"
	"github.com/vendora/marketplace/internal/domain/product"
	"github.com/vendora/marketplace/internal/observability"
	"github.com/vendora/marketplace/internal/observability/logctx"
)

const componentInventoryService = "inventory_service"

// OpenOrderChecker reports whether open orders still reference a product.
// Satisfied by the order repository.
type OpenOrderChecker interface {
	HasOpenForProduct(ctx context.Context, productID string) (bool, error)
}

// Notifier delivers a message to a user, best effort.
type Notifier interface {
	Notify(ctx context.Context, userID, message string)
}

type IDGenerator interface {
	NewID() string
}

// Service is the stock ledger. It owns the low-stock alerting side effect:
// whenever a write takes a product from at-or-above the threshold to below
// it, exactly one alert goes to the owning vendor.
type Service struct {
	repo     domain.Repository
	products product.Repository
	orders   OpenOrderChecker
	notifier Notifier
	idGen    IDGenerator
	tel      observability.Observability

	log observability.Logger
}

func NewService(
	repo domain.Repository,
	products product.Repository,
	orders OpenOrderChecker,
	notifier Notifier,
	idGen IDGenerator,
	tel observability.Observability,
) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		repo:     repo,
		products: products,
		orders:   orders,
		notifier: notifier,
		idGen:    idGen,
		tel:      tel,
		log:      tel.Logger().With(observability.F("component", componentInventoryService)),
	}
}

// Create registers a stock record for a product. Called alongside product
// creation; one record per product.
func (s *Service) Create(ctx context.Context, productID, vendorID string, quantity int) (*domain.Record, error) {
	rec, err := domain.NewRecord(s.idGen.NewID(), productID, vendorID, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("inventory: insert: %w", err)
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Record, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) FindByProduct(ctx context.Context, productID string) (*domain.Record, error) {
	return s.repo.FindByProduct(ctx, productID)
}

func (s *Service) List(ctx context.Context) ([]*domain.Record, error) {
	return s.repo.FindAll(ctx)
}

// ApplyDelta atomically adjusts the stock quantity (negative for
// consumption). Draining below zero fails with ErrInsufficientStock and no
// write occurs. Crossing below the low-stock threshold alerts the vendor.
func (s *Service) ApplyDelta(ctx context.Context, id string, delta int) (*domain.Record, error) {
	rec, previous, err := s.repo.ApplyDelta(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	if previous >= domain.LowStockThreshold && rec.StockQuantity < domain.LowStockThreshold {
		s.alertLowStock(ctx, rec)
	}
	return rec, nil
}

// SetQuantity replaces the absolute stock quantity, recomputing the
// low-stock flag. Crossing below the threshold alerts the vendor.
func (s *Service) SetQuantity(ctx context.Context, id string, quantity int) (*domain.Record, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := rec.StockQuantity
	if err := rec.SetQuantity(quantity); err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, rec); err != nil {
		return nil, fmt.Errorf("inventory: replace: %w", err)
	}
	if previous >= domain.LowStockThreshold && rec.StockQuantity < domain.LowStockThreshold {
		s.alertLowStock(ctx, rec)
	}
	return rec, nil
}

// Delete removes a stock record, refusing while any open order still
// references the product. Deletion cascades to the product itself; the
// cascade is part of the contract, a product cannot outlive its ledger
// entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	logger := logctx.FromOr(ctx, s.log)

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	open, err := s.orders.HasOpenForProduct(ctx, rec.ProductID)
	if err != nil {
		return fmt.Errorf("inventory: open order check: %w", err)
	}
	if open {
		return domain.ErrHasOpenOrders
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, rec.ProductID); err != nil && !errors.Is(err, product.ErrNotFound) {
		return fmt.Errorf("inventory: cascade product delete: %w", err)
	}

	logger.Info("inventory_deleted",
		observability.F("inventory_id", id),
		observability.F("product_id", rec.ProductID),
	)
	return nil
}

// DeleteByProduct removes the product's stock record, and with it the
// product, through the same open-order guard as Delete.
func (s *Service) DeleteByProduct(ctx context.Context, productID string) error {
	rec, err := s.repo.FindByProduct(ctx, productID)
	if err != nil {
		return err
	}
	return s.Delete(ctx, rec.ID)
}

func (s *Service) alertLowStock(ctx context.Context, rec *domain.Record) {
	s.notifier.Notify(ctx, rec.VendorID, fmt.Sprintf("Low stock alert for product %s.", rec.ProductID))
	s.tel.Metrics().Counter(observability.MLowStockAlerts).Add(1)
	logctx.FromOr(ctx, s.log).Warn("low_stock",
		observability.F("product_id", rec.ProductID),
		observability.F("vendor_id", rec.VendorID),
		observability.F("stock_quantity", rec.StockQuantity),
	)
}
