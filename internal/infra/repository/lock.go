package repository

import (
	"context"
	"fmt"
	"hash/fnv"

	"gorm.io/gorm"

	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

// advisoryLock takes a Postgres transaction-scoped advisory lock. It only
// serialises anything when db is inside a transaction.
func advisoryLock(ctx context.Context, db *gorm.DB, name string) error {
	h := fnv.New64a()
	h.Write([]byte(name))
	key := int64(h.Sum64())

	if err := db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", key).Error; err != nil {
		return fmt.Errorf("advisory lock %s: %w", name, err)
	}
	return nil
}

func clearCart(ctx context.Context, db *gorm.DB, userID uint) error {
	carts := db.Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)

	if err := db.WithContext(ctx).
		Where("cart_id IN (?)", carts).
		Delete(&models.CartItem{}).Error; err != nil {
		return err
	}

	return db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("user_id = ?", userID).
		Update("bill", 0).Error
}

// replaceOrderItems rewrites the order row and its lines.
func replaceOrderItems(ctx context.Context, db *gorm.DB, o *models.Order) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(o).Error; err != nil {
			return err
		}

		if err := tx.Where("order_id = ?", o.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}

		for i := range o.Items {
			o.Items[i].ID = 0
			o.Items[i].OrderID = o.ID
		}
		if len(o.Items) == 0 {
			return nil
		}
		return tx.Omit("Product").Create(&o.Items).Error
	})
}

func notFoundIfNone(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
