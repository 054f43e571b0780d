package account

import (
	"context"

	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type Repository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Save(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id uint) error

	ListByRole(ctx context.Context, role string) ([]models.User, error)

	// CountByRole counts every user when role is empty.
	CountByRole(ctx context.Context, role string) (int64, error)
}
