package order

import (
	"context"

	"github.com/vendora/marketplace/internal/domain/inventory"
	"github.com/vendora/marketplace/internal/domain/product"
	"github.com/vendora/marketplace/internal/domain/user"
)

type IDGenerator interface {
	NewID() string
}

// CodeGenerator draws candidate order codes (EC- plus eight digits).
// Uniqueness is enforced by the engine against the order store.
type CodeGenerator interface {
	NewCode() string
}

// ProductLookup resolves the authoritative product snapshot at placement
// and dispatch time.
type ProductLookup interface {
	FindByID(ctx context.Context, id string) (*product.Product, error)
}

// InventoryLedger is the stock ledger the engine validates against and,
// at dispatch time, deducts from. ApplyDelta is atomic; implementations
// own the low-stock alerting side effect.
type InventoryLedger interface {
	FindByProduct(ctx context.Context, productID string) (*inventory.Record, error)
	ApplyDelta(ctx context.Context, id string, delta int) (*inventory.Record, error)
}

// UserDirectory resolves display names and role-based fan-out targets.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
	FindByRole(ctx context.Context, role user.Role) ([]*user.User, error)
}

// Notifier delivers a message to a user, best effort. Implementations log
// failures; a failed notification never affects the business outcome that
// triggered it.
type Notifier interface {
	Notify(ctx context.Context, userID, message string)
}
