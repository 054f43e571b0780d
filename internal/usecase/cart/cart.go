package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/cart"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type GetCart struct {
	repo domain.Repository
}

func NewGetCart(repo domain.Repository) *GetCart {
	return &GetCart{repo: repo}
}

// Execute returns an empty cart when the user has none yet.
func (uc *GetCart) Execute(ctx context.Context, userID uint) (*models.Cart, error) {
	return load(ctx, uc.repo, userID)
}

type AddCartItemInput struct {
	UserID    uint
	ProductID uint

	// Quantity is a signed delta.
	Quantity int
}

type AddCartItem struct {
	repo domain.Repository
	log  *logrus.Logger
}

func NewAddCartItem(repo domain.Repository, log *logrus.Logger) *AddCartItem {
	return &AddCartItem{repo: repo, log: log}
}

func (uc *AddCartItem) Execute(ctx context.Context, in AddCartItemInput) (*models.Cart, error) {
	var c *models.Cart

	err := uc.repo.Transaction(ctx, func(repo domain.Repository) error {
		if err := repo.Lock(ctx, in.UserID); err != nil {
			return err
		}

		product, err := repo.GetProduct(ctx, in.ProductID)
		if err != nil {
			return httperr.MapNotFound(err, "product_not_found", "Product not found")
		}

		c, err = load(ctx, repo, in.UserID)
		if err != nil {
			return err
		}

		if err := domain.ApplyDelta(c, product, in.Quantity); err != nil {
			return err
		}
		domain.RecomputeBill(c)

		return repo.Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	uc.log.WithFields(logrus.Fields{
		"user_id":    in.UserID,
		"product_id": in.ProductID,
		"delta":      in.Quantity,
	}).Debug("cart updated")

	return c, nil
}

type RemoveCartItem struct {
	repo domain.Repository
}

func NewRemoveCartItem(repo domain.Repository) *RemoveCartItem {
	return &RemoveCartItem{repo: repo}
}

func (uc *RemoveCartItem) Execute(ctx context.Context, userID, itemID uint) (*models.Cart, error) {
	var c *models.Cart

	err := uc.repo.Transaction(ctx, func(repo domain.Repository) error {
		if err := repo.Lock(ctx, userID); err != nil {
			return err
		}

		var err error
		c, err = repo.GetByUser(ctx, userID)
		if err != nil {
			return httperr.MapNotFound(err, "cart_not_found", "Cart not found")
		}

		if err := domain.RemoveItem(c, itemID); err != nil {
			return err
		}
		domain.RecomputeBill(c)

		return repo.Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

type ClearCart struct {
	repo domain.Repository
}

func NewClearCart(repo domain.Repository) *ClearCart {
	return &ClearCart{repo: repo}
}

func (uc *ClearCart) Execute(ctx context.Context, userID uint) error {
	return uc.repo.Clear(ctx, userID)
}

func load(ctx context.Context, repo domain.Repository, userID uint) (*models.Cart, error) {
	c, err := repo.GetByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}, Bill: decimal.Zero}, nil
	}
	if err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return c, nil
}
