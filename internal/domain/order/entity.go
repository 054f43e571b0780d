package order

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Cancel(o *models.Order) error {
	switch Status(o.Status) {
	case StatusDelivered, StatusCancelled:
		return httperr.ErrConflict("cannot_cancel", "Cannot cancel this order.")
	}
	o.Status = string(StatusCancelled)
	return nil
}

// Total sums the purchase snapshot of every line.
func Total(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.PriceAtPurchase.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// SharesProducts reports whether any line of items refers to one of productIDs.
func SharesProducts(items []models.OrderItem, productIDs []uint) bool {
	for _, it := range items {
		for _, id := range productIDs {
			if it.ProductID == id {
				return true
			}
		}
	}
	return false
}

type ProductLookup interface {
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
}

// SnapshotItems checks every line and fills missing name/price from the catalog.
func SnapshotItems(ctx context.Context, products ProductLookup, items []models.OrderItem) error {
	if len(items) == 0 {
		return httperr.ErrValidation("empty_order", "Order must contain at least one item")
	}

	for i := range items {
		it := &items[i]
		if it.ProductID == 0 {
			return httperr.ErrValidation("missing_product", "Each item must include a productId.")
		}
		if it.Quantity < 1 {
			return httperr.ErrValidation("invalid_quantity", "Quantity cannot be less than 1")
		}

		p, err := products.GetProduct(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrNotFound("product_not_found", "Product not found")
			}
			return err
		}

		if it.NameAtPurchase == "" {
			it.NameAtPurchase = p.Name
		}
		if it.PriceAtPurchase.IsZero() {
			it.PriceAtPurchase = p.Price
		}
		it.Product = nil
	}
	return nil
}
