package inventory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	domain "github.com/vendora/marketplace/internal/domain/inventory"
	domainOrder "github.com/vendora/marketplace/internal/domain/order"
	"github.com/vendora/marketplace/internal/domain/product"
	"github.com/vendora/marketplace/internal/infrastructure/id"
	"github.com/vendora/marketplace/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	notes map[string][]string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{notes: make(map[string][]string)}
}

func (n *recordingNotifier) Notify(_ context.Context, userID, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes[userID] = append(n.notes[userID], message)
}

func (n *recordingNotifier) messagesFor(userID string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.notes[userID]...)
}

type fixture struct {
	records  *memory.InventoryRepository
	products *memory.ProductRepository
	orders   *memory.OrderRepository
	notifier *recordingNotifier
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		records:  memory.NewInventoryRepository(),
		products: memory.NewProductRepository(),
		orders:   memory.NewOrderRepository(),
		notifier: newRecordingNotifier(),
	}
	f.svc = NewService(f.records, f.products, f.orders, f.notifier, id.NewUUIDGenerator(), nil)
	return f
}

func (f *fixture) seed(t *testing.T, productID, vendorID string, stock int) *domain.Record {
	t.Helper()

	p, err := product.New(productID, "Product "+productID, "Home", "", vendorID, 10)
	require.NoError(t, err)
	require.NoError(t, f.products.Insert(context.Background(), p))

	rec, err := f.svc.Create(context.Background(), productID, vendorID, stock)
	require.NoError(t, err)
	return rec
}

func TestApplyDeltaGuardsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.seed(t, "p-1", "v-1", 5)

	_, err := f.svc.ApplyDelta(ctx, rec.ID, -6)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := f.svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.StockQuantity)

	got, err = f.svc.ApplyDelta(ctx, rec.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity)
	assert.True(t, got.LowStockAlert)
}

func TestLowStockAlertFiresOncePerCrossing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.seed(t, "p-1", "v-1", 12)

	expected := fmt.Sprintf("Low stock alert for product %s.", rec.ProductID)

	// 12 -> 9 crosses the threshold: one alert.
	_, err := f.svc.ApplyDelta(ctx, rec.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, []string{expected}, f.notifier.messagesFor("v-1"))

	// 9 -> 7 stays below: no further alert.
	_, err = f.svc.ApplyDelta(ctx, rec.ID, -2)
	require.NoError(t, err)
	assert.Len(t, f.notifier.messagesFor("v-1"), 1)

	// Restock above and drain below again: a fresh crossing alerts anew.
	_, err = f.svc.ApplyDelta(ctx, rec.ID, 10)
	require.NoError(t, err)
	_, err = f.svc.ApplyDelta(ctx, rec.ID, -9)
	require.NoError(t, err)
	assert.Len(t, f.notifier.messagesFor("v-1"), 2)
}

func TestSetQuantityRecomputesAlert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.seed(t, "p-1", "v-1", 15)

	got, err := f.svc.SetQuantity(ctx, rec.ID, 8)
	require.NoError(t, err)
	assert.True(t, got.LowStockAlert)
	assert.Len(t, f.notifier.messagesFor("v-1"), 1)

	// Already below threshold: no second alert.
	got, err = f.svc.SetQuantity(ctx, rec.ID, 5)
	require.NoError(t, err)
	assert.True(t, got.LowStockAlert)
	assert.Len(t, f.notifier.messagesFor("v-1"), 1)

	got, err = f.svc.SetQuantity(ctx, rec.ID, 30)
	require.NoError(t, err)
	assert.False(t, got.LowStockAlert)

	_, err = f.svc.SetQuantity(ctx, rec.ID, -1)
	assert.ErrorIs(t, err, domain.ErrNegativeQuantity)
}

func TestDeleteRefusedWhileOrdersOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.seed(t, "p-1", "v-1", 20)

	ord, err := domainOrder.New("o-1", "EC-11112222", "c-1",
		[]domainOrder.Item{{ProductID: "p-1", Quantity: 2, UnitPrice: 10}},
		[]string{"v-1"}, domainOrder.Address{})
	require.NoError(t, err)
	require.NoError(t, f.orders.Insert(ctx, ord))

	assert.ErrorIs(t, f.svc.Delete(ctx, rec.ID), domain.ErrHasOpenOrders)

	// Once the order reaches a closed status the guard releases and the
	// delete cascades to the product.
	require.NoError(t, f.orders.UpdateStatus(ctx, ord.ID, domainOrder.StatusPending, domainOrder.StatusCancelled))
	require.NoError(t, f.svc.Delete(ctx, rec.ID))

	_, err = f.svc.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.products.FindByID(ctx, "p-1")
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestDeleteByProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "p-1", "v-1", 20)

	require.NoError(t, f.svc.DeleteByProduct(ctx, "p-1"))

	_, err := f.svc.FindByProduct(ctx, "p-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, f.svc.DeleteByProduct(ctx, "p-ghost"), domain.ErrNotFound)
}

func TestConcurrentApplyDeltaNeverGoesNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := f.seed(t, "p-1", "v-1", 10)

	const workers = 20
	results := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = f.svc.ApplyDelta(ctx, rec.ID, -1)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 10, succeeded)

	got, err := f.svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity)
	// The alert flag is written in the same atomic step as the quantity, so
	// after any interleaving it reflects the final quantity.
	assert.True(t, got.LowStockAlert)
}
