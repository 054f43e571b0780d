package notification

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/chasmapasal/chasmapasal-api/internal/auth"
	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/notification"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

// Service groups the notification inbox operations. Writes triggered by
// other use cases go through notify.Dispatcher instead.
type Service struct {
	repo domain.Repository
	log  *logrus.Logger
}

func NewService(repo domain.Repository, log *logrus.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Create(ctx context.Context, userID uint, message string) (*models.Notification, error) {
	if userID == 0 || message == "" {
		return nil, httperr.ErrValidation("missing_fields", "User and message are required")
	}

	n := &models.Notification{UserID: userID, Message: message}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, userID uint) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, actor auth.Identity, id uint) (*models.Notification, error) {
	if err := s.authorize(ctx, actor, id); err != nil {
		return nil, err
	}

	n, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return nil, errNotFound(err)
	}
	return n, nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, actor auth.Identity, id uint) error {
	if err := s.authorize(ctx, actor, id); err != nil {
		return err
	}
	return errNotFound(s.repo.Delete(ctx, id))
}

func (s *Service) DeleteAll(ctx context.Context, userID uint) (int64, error) {
	n, err := s.repo.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.log.WithField("user_id", userID).Infof("deleted %d notifications", n)
	return n, nil
}

func (s *Service) authorize(ctx context.Context, actor auth.Identity, id uint) error {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return errNotFound(err)
	}
	if !actor.IsAdmin() && actor.UserID != n.UserID {
		return httperr.ErrForbidden("forbidden", "This notification belongs to another user")
	}
	return nil
}

func errNotFound(err error) error {
	if err == nil {
		return nil
	}
	return httperr.MapNotFound(err, "notification_not_found", "Notification not found")
}
