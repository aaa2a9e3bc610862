package user

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("user: not found")
	ErrConflict = errors.New("user: already exists")
)

// Role distinguishes the four account types of the marketplace.
type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleCSR           Role = "CSR"
	RoleVendor        Role = "Vendor"
	RoleCustomer      Role = "Customer"
)

type Status string

const (
	StatusActive      Status = "Active"
	StatusInactive    Status = "Inactive"
	StatusDeactivated Status = "Deactivated"
)

type User struct {
	ID        string
	Role      Role
	Name      string
	Email     string
	Status    Status
	CreatedAt time.Time
}

// Clone returns a copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

type Repository interface {
	Insert(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByRole(ctx context.Context, role Role) ([]*User, error)
}
