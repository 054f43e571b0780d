package memory

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chasmapasal/chasmapasal-api/internal/domain/order"
	"github.com/chasmapasal/chasmapasal-api/internal/domain/payment"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type Payments struct{ s *Store }

func NewPayments(s *Store) *Payments { return &Payments{s: s} }

var _ payment.Repository = (*Payments)(nil)

func (r *Payments) Transaction(ctx context.Context, fn func(repo payment.Repository) error) error {
	return r.s.transaction(ctx, func() error { return fn(r) })
}

// LockCheckout is covered by Transaction.
func (r *Payments) LockCheckout(context.Context, uint) error { return nil }

func (r *Payments) GetProduct(_ context.Context, id uint) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.product(id)
}

func (r *Payments) FindPendingOrder(_ context.Context, userID uint, productIDs []uint) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var found *models.Order
	for _, o := range r.s.orders {
		if o.UserID != userID || o.Status != string(order.StatusPending) {
			continue
		}
		if !order.SharesProducts(o.Items, productIDs) {
			continue
		}
		if found == nil || o.CreatedAt.After(found.CreatedAt) {
			cp := cloneOrder(o)
			found = &cp
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return found, nil
}

func (r *Payments) CreateOrder(_ context.Context, o *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.createOrder(o)
	return nil
}

func (r *Payments) SaveOrder(_ context.Context, o *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.saveOrder(o)
}

func (r *Payments) GetOrderForUpdate(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r *Payments) UpdateOrderState(_ context.Context, id uuid.UUID, status, paymentStatus string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	o.PaymentStatus = paymentStatus
	o.UpdatedAt = r.s.now()
	r.s.orders[id] = o
	return nil
}

func (r *Payments) AttachGateway(_ context.Context, id uuid.UUID, pidx string, raw json.RawMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.KhaltiPidx = pidx
	o.KhaltiData = append(json.RawMessage(nil), raw...)
	o.UpdatedAt = r.s.now()
	r.s.orders[id] = o
	return nil
}

func (r *Payments) GetPaymentByPidx(_ context.Context, pidx string) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.payments {
		if p.Pidx == pidx {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *Payments) GetPaymentByOrder(_ context.Context, orderID uuid.UUID) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.payments {
		if p.OrderID == orderID {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *Payments) CreatePayment(_ context.Context, p *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkPayment(p); err != nil {
		return err
	}
	p.ID = r.s.nextID()
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	r.s.payments[p.ID] = *p
	return nil
}

func (r *Payments) SavePayment(_ context.Context, p *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.payments[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if err := r.s.checkPayment(p); err != nil {
		return err
	}
	p.UpdatedAt = r.s.now()
	r.s.payments[p.ID] = *p
	return nil
}

func (r *Payments) ClearCart(_ context.Context, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.clearCart(userID)
	return nil
}

// checkPayment enforces the unique indexes of the payments table.
func (s *Store) checkPayment(p *models.Payment) error {
	for _, other := range s.payments {
		if other.ID == p.ID {
			continue
		}
		switch {
		case other.Pidx == p.Pidx:
			return uniqueViolation("idx_payments_pidx")
		case other.OrderID == p.OrderID:
			return uniqueViolation("idx_payments_order_id")
		case p.TransactionID != nil && other.TransactionID != nil && *p.TransactionID == *other.TransactionID:
			return uniqueViolation("idx_payments_transaction_id")
		}
	}
	return nil
}
