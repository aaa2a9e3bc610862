package memory

import (
	"context"
	"testing"

	domain "github.com/vendora/marketplace/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryInsertRejectsDuplicates(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &domain.User{
		ID: "u-1", Role: domain.RoleCustomer, Name: "Avery Quinn", Status: domain.StatusActive,
	}))

	err := repo.Insert(ctx, &domain.User{
		ID: "u-1", Role: domain.RoleVendor, Name: "Impostor", Status: domain.StatusActive,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := repo.FindByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Avery Quinn", got.Name)
	assert.Equal(t, domain.RoleCustomer, got.Role)
}

func TestUserRepositoryFindByRole(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	for _, u := range []*domain.User{
		{ID: "adm-1", Role: domain.RoleAdministrator, Name: "Priya Shah"},
		{ID: "c-1", Role: domain.RoleCustomer, Name: "Avery Quinn"},
		{ID: "adm-2", Role: domain.RoleAdministrator, Name: "Tom Okafor"},
	} {
		require.NoError(t, repo.Insert(ctx, u))
	}

	admins, err := repo.FindByRole(ctx, domain.RoleAdministrator)
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, "adm-1", admins[0].ID)
	assert.Equal(t, "adm-2", admins[1].ID)
}
