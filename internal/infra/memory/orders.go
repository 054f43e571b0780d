package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chasmapasal/chasmapasal-api/internal/domain/order"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type Orders struct{ s *Store }

func NewOrders(s *Store) *Orders { return &Orders{s: s} }

var _ order.Repository = (*Orders)(nil)

func (r *Orders) GetProduct(_ context.Context, id uint) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.product(id)
}

func (r *Orders) Create(_ context.Context, o *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.createOrder(o)
	return nil
}

func (r *Orders) Get(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	o = r.s.withProducts(o)
	return &o, nil
}

func (r *Orders) Save(_ context.Context, o *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.saveOrder(o)
}

func (r *Orders) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.orders, id)
	return nil
}

func (r *Orders) ListByUser(_ context.Context, userID uint) ([]models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.listOrders(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (r *Orders) List(_ context.Context) ([]models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.listOrders(func(models.Order) bool { return true }), nil
}

func (r *Orders) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.orders)), nil
}

func (r *Orders) ClearCart(_ context.Context, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.clearCart(userID)
	return nil
}

// The helpers below expect s.mu to be held.

func (s *Store) createOrder(o *models.Order) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = string(order.StatusPending)
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = string(order.PaymentPending)
	}
	for i := range o.Items {
		o.Items[i].ID = s.nextID()
		o.Items[i].OrderID = o.ID
	}
	o.CreatedAt = s.now()
	o.UpdatedAt = o.CreatedAt
	s.orders[o.ID] = s.stripProducts(*o)
}

func (s *Store) saveOrder(o *models.Order) error {
	prev, ok := s.orders[o.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range o.Items {
		o.Items[i].ID = s.nextID()
		o.Items[i].OrderID = o.ID
	}
	o.CreatedAt = prev.CreatedAt
	o.UpdatedAt = s.now()
	s.orders[o.ID] = s.stripProducts(*o)
	return nil
}

func (s *Store) stripProducts(o models.Order) models.Order {
	o = cloneOrder(o)
	for i := range o.Items {
		o.Items[i].Product = nil
	}
	return o
}

func (s *Store) withProducts(o models.Order) models.Order {
	o = cloneOrder(o)
	for i := range o.Items {
		o.Items[i].Product = s.productRef(o.Items[i].ProductID)
	}
	return o
}

func (s *Store) listOrders(keep func(models.Order) bool) []models.Order {
	out := make([]models.Order, 0)
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, s.withProducts(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
