package notification

import (
	"context"

	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type Repository interface {
	Create(ctx context.Context, n *models.Notification) error

	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID uint) ([]models.Notification, error)

	Get(ctx context.Context, id uint) (*models.Notification, error)
	MarkRead(ctx context.Context, id uint) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
	DeleteAllForUser(ctx context.Context, userID uint) (int64, error)
}
