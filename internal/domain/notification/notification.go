package notification

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("notification: not found")
	ErrInvalidUser = errors.New("notification: user id is required")
)

type Notification struct {
	ID        string
	UserID    string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

func New(id, userID, message string) (*Notification, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	return &Notification{
		ID:        id,
		UserID:    userID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Clone returns a copy of the notification.
func (n *Notification) Clone() *Notification {
	if n == nil {
		return nil
	}
	clone := *n
	return &clone
}

type Repository interface {
	Insert(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, id string) (*Notification, error)
	FindByUser(ctx context.Context, userID string) ([]*Notification, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
