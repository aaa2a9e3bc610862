package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/vendora/marketplace/internal/domain/notification"
)

type NotificationRepository struct {
	mu            sync.RWMutex
	notifications map[string]*domain.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{notifications: make(map[string]*domain.Notification)}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	_ = ctx
	if n == nil || n.ID == "" {
		return fmt.Errorf("notification repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications[n.ID] = n.Clone()
	return nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.notifications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return n.Clone(), nil
}

func (r *NotificationRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Notification, 0)
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.notifications[id]
	if !ok {
		return domain.ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notifications[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.notifications, id)
	return nil
}
