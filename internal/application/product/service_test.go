package product

import (
	"context"
	"testing"

	invdomain "github.com/vendora/marketplace/internal/domain/inventory"
	domain "github.com/vendora/marketplace/internal/domain/product"
	"github.com/vendora/marketplace/internal/infrastructure/id"
	"github.com/vendora/marketplace/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stockRegistrar struct {
	repo  *memory.InventoryRepository
	idGen *id.UUIDGenerator
}

func (r *stockRegistrar) Create(ctx context.Context, productID, vendorID string, quantity int) (*invdomain.Record, error) {
	rec, err := invdomain.NewRecord(r.idGen.NewID(), productID, vendorID, quantity)
	if err != nil {
		return nil, err
	}
	if err := r.repo.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func newService() (*Service, *memory.InventoryRepository) {
	stock := memory.NewInventoryRepository()
	registrar := &stockRegistrar{repo: stock, idGen: id.NewUUIDGenerator()}
	return NewService(memory.NewProductRepository(), registrar, id.NewUUIDGenerator(), nil), stock
}

func TestCreateRegistersStock(t *testing.T) {
	svc, stock := newService()
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{
		Name:         "Walnut Desk",
		Category:     "Furniture",
		VendorID:     "v-1",
		Price:        249.99,
		InitialStock: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, p.Status)

	rec, err := stock.FindByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, rec.StockQuantity)
	assert.Equal(t, "v-1", rec.VendorID)
	assert.False(t, rec.LowStockAlert)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{VendorID: "v-1", Price: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, CreateInput{Name: "Desk", Price: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidVendor)

	_, err = svc.Create(ctx, CreateInput{Name: "Desk", VendorID: "v-1", Price: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{Name: "Walnut Desk", VendorID: "v-1", Price: 100, InitialStock: 5})
	require.NoError(t, err)

	newPrice := 90.0
	updated, err := svc.Update(ctx, p.ID, UpdateInput{Price: &newPrice, Status: domain.StatusDeactivated})
	require.NoError(t, err)
	assert.Equal(t, "Walnut Desk", updated.Name)
	assert.Equal(t, 90.0, updated.Price)
	assert.Equal(t, domain.StatusDeactivated, updated.Status)

	badPrice := -2.0
	_, err = svc.Update(ctx, p.ID, UpdateInput{Price: &badPrice})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Update(ctx, "p-ghost", UpdateInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{Name: "Walnut Desk", VendorID: "v-1", Price: 100, InitialStock: 5})
	require.NoError(t, err)

	_, err = svc.Update(ctx, p.ID, UpdateInput{Status: domain.Status("Bogus")})
	assert.ErrorIs(t, err, domain.ErrBadStatus)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
}
