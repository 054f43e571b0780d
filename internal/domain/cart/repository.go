package cart

import (
	"context"

	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type Repository interface {
	// Transaction runs fn against a repository bound to one transaction.
	Transaction(ctx context.Context, fn func(repo Repository) error) error

	// Lock serialises cart writes of one user until the transaction ends.
	Lock(ctx context.Context, userID uint) error

	// GetByUser loads the cart with its products, or gorm.ErrRecordNotFound.
	GetByUser(ctx context.Context, userID uint) (*models.Cart, error)

	// Save writes the cart and replaces its items.
	Save(ctx context.Context, c *models.Cart) error

	GetProduct(ctx context.Context, id uint) (*models.Product, error)

	Clear(ctx context.Context, userID uint) error
}
