package product

import (
	"context"
	"fmt"
	"time"

	invdomain "github.com/vendora/marketplace/internal/domain/inventory"
	domain "github.com/vendora/marketplace/internal/domain/product"
	"github.com/vendora/marketplace/internal/observability"
	"github.com/vendora/marketplace/internal/observability/logctx"
)

const componentProductService = "product_service"

type IDGenerator interface {
	NewID() string
}

// StockRegistrar creates the inventory record that accompanies every
// product. Satisfied by the inventory service.
type StockRegistrar interface {
	Create(ctx context.Context, productID, vendorID string, quantity int) (*invdomain.Record, error)
}

// Service manages the product catalogue. Every product gets a stock record
// at creation; removal happens through the inventory ledger's guarded
// cascade, not here.
type Service struct {
	repo  domain.Repository
	stock StockRegistrar
	idGen IDGenerator
	tel   observability.Observability

	log observability.Logger
}

func NewService(repo domain.Repository, stock StockRegistrar, idGen IDGenerator, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		repo:  repo,
		stock: stock,
		idGen: idGen,
		tel:   tel,
		log:   tel.Logger().With(observability.F("component", componentProductService)),
	}
}

type CreateInput struct {
	Name         string
	Category     string
	Description  string
	VendorID     string
	Price        float64
	InitialStock int
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Product, error) {
	logger := logctx.FromOr(ctx, s.log)

	p, err := domain.New(s.idGen.NewID(), input.Name, input.Category, input.Description, input.VendorID, input.Price)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("product: insert: %w", err)
	}
	if _, err := s.stock.Create(ctx, p.ID, p.VendorID, input.InitialStock); err != nil {
		return nil, fmt.Errorf("product: register stock: %w", err)
	}

	logger.Info("product_created",
		observability.F("product_id", p.ID),
		observability.F("vendor_id", p.VendorID),
	)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) List(ctx context.Context, page, pageSize int) ([]*domain.Product, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return s.repo.FindAll(ctx, page, pageSize)
}

type UpdateInput struct {
	Name        string
	Category    string
	Description string
	Price       *float64
	Status      domain.Status
}

func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != "" {
		p.Name = input.Name
	}
	if input.Category != "" {
		p.Category = input.Category
	}
	if input.Description != "" {
		p.Description = input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, domain.ErrInvalidPrice
		}
		p.Price = *input.Price
	}
	if input.Status != "" {
		if !input.Status.Valid() {
			return nil, domain.ErrBadStatus
		}
		p.Status = input.Status
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
