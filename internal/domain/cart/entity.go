package cart

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

// ApplyDelta adds delta units of product to the cart. A line that drops to
// zero or below is removed.
func ApplyDelta(c *models.Cart, product *models.Product, delta int) error {
	if delta == 0 {
		return httperr.ErrValidation("invalid_quantity", "Quantity must not be zero")
	}

	for i := range c.Items {
		it := &c.Items[i]
		if it.ProductID != product.ID {
			continue
		}

		qty := it.Quantity + delta
		if qty <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
		if qty > product.Stock {
			return errInsufficientStock(product)
		}
		it.Quantity = qty
		it.Product = product
		return nil
	}

	if delta < 0 {
		return httperr.ErrNotFound("item_not_found", "Item is not in the cart")
	}
	if delta > product.Stock {
		return errInsufficientStock(product)
	}

	c.Items = append(c.Items, models.CartItem{
		CartID:    c.ID,
		ProductID: product.ID,
		Product:   product,
		Quantity:  delta,
	})
	return nil
}

func RemoveItem(c *models.Cart, itemID uint) error {
	for i, it := range c.Items {
		if it.ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return httperr.ErrNotFound("item_not_found", "Item is not in the cart")
}

// RecomputeBill prices every line at the current product price.
func RecomputeBill(c *models.Cart) {
	bill := decimal.Zero
	for _, it := range c.Items {
		if it.Product == nil {
			continue
		}
		bill = bill.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	c.Bill = bill
}

func errInsufficientStock(p *models.Product) error {
	return httperr.ErrValidation("insufficient_stock", "Only "+strconv.Itoa(p.Stock)+" of "+p.Name+" left in stock")
}
