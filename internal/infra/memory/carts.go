package memory

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chasmapasal/chasmapasal-api/internal/domain/cart"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type Carts struct{ s *Store }

func NewCarts(s *Store) *Carts { return &Carts{s: s} }

var _ cart.Repository = (*Carts)(nil)

func (r *Carts) Transaction(ctx context.Context, fn func(repo cart.Repository) error) error {
	return r.s.transaction(ctx, func() error { return fn(r) })
}

// Lock is covered by Transaction.
func (r *Carts) Lock(context.Context, uint) error { return nil }

func (r *Carts) GetByUser(_ context.Context, userID uint) (*models.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.carts[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	c = cloneCart(c)
	for i := range c.Items {
		c.Items[i].Product = r.s.productRef(c.Items[i].ProductID)
	}
	return &c, nil
}

func (r *Carts) Save(_ context.Context, c *models.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c.ID == 0 {
		c.ID = r.s.nextID()
	}
	for i := range c.Items {
		c.Items[i].CartID = c.ID
		if c.Items[i].ID == 0 {
			c.Items[i].ID = r.s.nextID()
		}
	}
	c.UpdatedAt = r.s.now()

	stored := cloneCart(*c)
	for i := range stored.Items {
		stored.Items[i].Product = nil
	}
	r.s.carts[c.UserID] = stored
	return nil
}

func (r *Carts) GetProduct(_ context.Context, id uint) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.product(id)
}

func (r *Carts) Clear(_ context.Context, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.clearCart(userID)
	return nil
}

// clearCart expects s.mu to be held.
func (s *Store) clearCart(userID uint) {
	c, ok := s.carts[userID]
	if !ok {
		return
	}
	c.Items = nil
	c.Bill = decimal.Zero
	c.UpdatedAt = s.now()
	s.carts[userID] = c
}
