package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	domain "github.com/vendora/marketplace/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, repo *OrderRepository, id, code, customerID string) *domain.Order {
	t.Helper()
	o, err := domain.New(id, code, customerID,
		[]domain.Item{{ProductID: "p-1", Quantity: 1, UnitPrice: 10}},
		[]string{"v-1"}, domain.Address{})
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), o))
	return o
}

func TestOrderRepositoryInsertRejectsDuplicates(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	seedOrder(t, repo, "o-1", "EC-11112222", "c-1")

	dup, err := domain.New("o-1", "EC-99998888", "c-1",
		[]domain.Item{{ProductID: "p-1", Quantity: 1, UnitPrice: 10}},
		[]string{"v-1"}, domain.Address{})
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Insert(ctx, dup), domain.ErrConflict)

	dupCode, err := domain.New("o-2", "EC-11112222", "c-1",
		[]domain.Item{{ProductID: "p-1", Quantity: 1, UnitPrice: 10}},
		[]string{"v-1"}, domain.Address{})
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Insert(ctx, dupCode), domain.ErrConflict)

	exists, err := repo.CodeExists(ctx, "EC-11112222")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOrderRepositoryUpdateStatusIsConditional(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	seedOrder(t, repo, "o-1", "EC-11112222", "c-1")

	err := repo.UpdateStatus(ctx, "o-1", domain.StatusDispatched, domain.StatusDelivered)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	got, err := repo.FindByID(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)

	require.NoError(t, repo.UpdateStatus(ctx, "o-1", domain.StatusPending, domain.StatusDispatched))

	err = repo.UpdateStatus(ctx, "o-ghost", domain.StatusPending, domain.StatusDispatched)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderRepositoryUpdateStatusSingleWinner(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	seedOrder(t, repo, "o-1", "EC-11112222", "c-1")

	const attempts = 10
	results := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = repo.UpdateStatus(ctx, "o-1", domain.StatusPending, domain.StatusDispatched)
		}()
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidState)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestOrderRepositoryUpdateLosesAgainstNewerWrite(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	seedOrder(t, repo, "o-1", "EC-11112222", "c-1")

	first, err := repo.FindByID(ctx, "o-1")
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, "o-1")
	require.NoError(t, err)

	first.ShippingAddress.City = "Leeds"
	require.NoError(t, repo.Update(ctx, first))

	// second still carries the version it read before first's write landed.
	second.ShippingAddress.City = "York"
	assert.ErrorIs(t, repo.Update(ctx, second), domain.ErrInvalidState)

	got, err := repo.FindByID(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, "Leeds", got.ShippingAddress.City)

	// A status CAS also bumps the version, so a replace built from a
	// pre-transition snapshot cannot revert the transition.
	stale, err := repo.FindByID(ctx, "o-1")
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, "o-1", domain.StatusPending, domain.StatusDispatched))
	assert.ErrorIs(t, repo.Update(ctx, stale), domain.ErrInvalidState)

	got, err = repo.FindByID(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDispatched, got.Status)
}

func TestOrderRepositoryFindFiltersAndPaginates(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedOrder(t, repo, fmt.Sprintf("o-%d", i), fmt.Sprintf("EC-1000000%d", i), "c-1")
	}
	other, err := domain.New("o-x", "EC-20000000", "c-2",
		[]domain.Item{{ProductID: "p-2", Quantity: 1, UnitPrice: 10}},
		[]string{"v-2"}, domain.Address{})
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, other))

	orders, err := repo.Find(ctx, domain.Filter{CustomerID: "c-1"}, 1, 3)
	require.NoError(t, err)
	assert.Len(t, orders, 3)

	orders, err = repo.Find(ctx, domain.Filter{CustomerID: "c-1"}, 2, 3)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	orders, err = repo.Find(ctx, domain.Filter{VendorID: "v-2"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "o-x", orders[0].ID)

	orders, err = repo.Find(ctx, domain.Filter{CustomerID: "c-1"}, 9, 10)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderRepositoryHasOpenForProduct(t *testing.T) {
	repo := NewOrderRepository()
	ctx := context.Background()
	seedOrder(t, repo, "o-1", "EC-11112222", "c-1")

	open, err := repo.HasOpenForProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.True(t, open)

	open, err = repo.HasOpenForProduct(ctx, "p-other")
	require.NoError(t, err)
	assert.False(t, open)

	require.NoError(t, repo.UpdateStatus(ctx, "o-1", domain.StatusPending, domain.StatusCancelled))
	open, err = repo.HasOpenForProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.False(t, open)
}
