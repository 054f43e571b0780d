package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/cart"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type CartGormRepository struct {
	db *gorm.DB
}

func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func (r *CartGormRepository) Transaction(ctx context.Context, fn func(repo domain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CartGormRepository{db: tx})
	})
}

func (r *CartGormRepository) Lock(ctx context.Context, userID uint) error {
	return advisoryLock(ctx, r.db, fmt.Sprintf("cart:%d", userID))
}

func (r *CartGormRepository) GetByUser(ctx context.Context, userID uint) (*models.Cart, error) {
	var c models.Cart
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Save keeps the ids of surviving lines so clients can keep addressing them.
func (r *CartGormRepository) Save(ctx context.Context, c *models.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(c).Error; err != nil {
			return err
		}

		keep := make([]uint, 0, len(c.Items))
		for _, it := range c.Items {
			if it.ID != 0 {
				keep = append(keep, it.ID)
			}
		}

		stale := tx.Where("cart_id = ?", c.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		for i := range c.Items {
			c.Items[i].CartID = c.ID
			if err := tx.Omit("Product").Save(&c.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CartGormRepository) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CartGormRepository) Clear(ctx context.Context, userID uint) error {
	return clearCart(ctx, r.db, userID)
}

var _ domain.Repository = (*CartGormRepository)(nil)
