package review

import (
	"context"

	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type Repository interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)

	Create(ctx context.Context, r *models.Review) error
	Get(ctx context.Context, id uint) (*models.Review, error)
	Save(ctx context.Context, r *models.Review) error
	Delete(ctx context.Context, id uint) error

	// ListByDoctor returns newest first with authors loaded.
	ListByDoctor(ctx context.Context, doctorID uint) ([]models.Review, error)
	Count(ctx context.Context) (int64, error)
}
