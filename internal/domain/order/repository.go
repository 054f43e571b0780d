package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type Repository interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, error)

	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)

	// Save writes the order and replaces its items.
	Save(ctx context.Context, o *models.Order) error
	Delete(ctx context.Context, id uuid.UUID) error

	ListByUser(ctx context.Context, userID uint) ([]models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	Count(ctx context.Context) (int64, error)

	ClearCart(ctx context.Context, userID uint) error
}
