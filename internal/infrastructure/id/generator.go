package id

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// UUIDGenerator issues random identities for aggregates.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator { return &UUIDGenerator{} }

func (*UUIDGenerator) NewID() string { return uuid.NewString() }

// OrderCodeGenerator draws human-facing order codes: "EC-" followed by
// eight digits. Codes are candidates only; the caller checks the store for
// collisions and redraws.
type OrderCodeGenerator struct{}

func NewOrderCodeGenerator() *OrderCodeGenerator { return &OrderCodeGenerator{} }

func (*OrderCodeGenerator) NewCode() string {
	return fmt.Sprintf("EC-%d", rand.IntN(90000000)+10000000)
}
