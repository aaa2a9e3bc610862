package notification

import (
	"context"

	domain "github.com/vendora/marketplace/internal/domain/notification"
	"github.com/vendora/marketplace/internal/observability"
	"github.com/vendora/marketplace/internal/observability/logctx"
)

const componentNotificationService = "notification_service"

type IDGenerator interface {
	NewID() string
}

// Service is the notification sink plus the user-facing read side.
type Service struct {
	repo  domain.Repository
	idGen IDGenerator
	tel   observability.Observability

	log observability.Logger
}

func NewService(repo domain.Repository, idGen IDGenerator, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		repo:  repo,
		idGen: idGen,
		tel:   tel,
		log:   tel.Logger().With(observability.F("component", componentNotificationService)),
	}
}

// Notify stores a notification for the user, best effort. Failures are
// logged and swallowed: a lost notification never rolls back the business
// transition that produced it.
func (s *Service) Notify(ctx context.Context, userID, message string) {
	logger := logctx.FromOr(ctx, s.log)

	n, err := domain.New(s.idGen.NewID(), userID, message)
	if err != nil {
		logger.Warn("notification_invalid", observability.F("error", err.Error()))
		return
	}
	if err := s.repo.Insert(ctx, n); err != nil {
		logger.Warn("notification_store_failed",
			observability.F("user_id", userID),
			observability.F("error", err.Error()),
		)
		return
	}
	s.tel.Metrics().Counter(observability.MNotificationsSent).Add(1)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	return s.repo.FindByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Notification, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
