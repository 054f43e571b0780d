package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/chasmapasal/chasmapasal-api/internal/auth"
	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/order"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

// UpdateOrderInput carries only the fields a caller may change. Nil means
// unchanged.
type UpdateOrderInput struct {
	Actor auth.Identity
	ID    uuid.UUID

	Status          *string
	Items           []models.OrderItem
	PaymentMethod   *string
	TotalPrice      *decimal.Decimal
	ShippingAddress *models.ShippingAddress
}

type UpdateOrder struct {
	repo domain.Repository
	log  *logrus.Logger
}

func NewUpdateOrder(repo domain.Repository, log *logrus.Logger) *UpdateOrder {
	return &UpdateOrder{repo: repo, log: log}
}

func (uc *UpdateOrder) Execute(ctx context.Context, in UpdateOrderInput) (*models.Order, error) {
	o, err := uc.repo.Get(ctx, in.ID)
	if err != nil {
		return nil, errOrderNotFound(err)
	}
	if err := owns(in.Actor, o); err != nil {
		return nil, err
	}

	if in.Status != nil {
		if !in.Actor.IsAdmin() {
			return nil, httperr.ErrForbidden("forbidden", "Only an admin can change the order status")
		}
		st, err := domain.ParseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		o.Status = string(st)
	}

	if in.Items != nil {
		if err := domain.SnapshotItems(ctx, uc.repo, in.Items); err != nil {
			return nil, err
		}
		o.Items = in.Items
	}

	if in.PaymentMethod != nil {
		method, err := domain.ParsePaymentMethod(*in.PaymentMethod)
		if err != nil {
			return nil, err
		}
		o.PaymentMethod = method
	}

	if in.TotalPrice != nil {
		if in.TotalPrice.IsNegative() {
			return nil, httperr.ErrValidation("invalid_total", "Total price cannot be negative")
		}
		o.TotalPrice = *in.TotalPrice
	}

	if in.ShippingAddress != nil {
		o.ShippingAddress = *in.ShippingAddress
	}

	if err := uc.repo.Save(ctx, o); err != nil {
		return nil, err
	}

	uc.log.WithField("order_id", o.ID).Info("order updated")
	return o, nil
}

type CancelOrder struct {
	repo domain.Repository
	log  *logrus.Logger
}

func NewCancelOrder(repo domain.Repository, log *logrus.Logger) *CancelOrder {
	return &CancelOrder{repo: repo, log: log}
}

func (uc *CancelOrder) Execute(ctx context.Context, actor auth.Identity, id uuid.UUID) error {
	o, err := uc.repo.Get(ctx, id)
	if err != nil {
		return errOrderNotFound(err)
	}
	if err := owns(actor, o); err != nil {
		return err
	}

	if err := domain.Cancel(o); err != nil {
		return err
	}

	if err := uc.repo.Save(ctx, o); err != nil {
		return err
	}

	uc.log.WithField("order_id", o.ID).Info("order cancelled")
	return nil
}

type DeleteOrder struct {
	repo domain.Repository
	log  *logrus.Logger
}

func NewDeleteOrder(repo domain.Repository, log *logrus.Logger) *DeleteOrder {
	return &DeleteOrder{repo: repo, log: log}
}

func (uc *DeleteOrder) Execute(ctx context.Context, id uuid.UUID) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return errOrderNotFound(err)
	}

	uc.log.WithField("order_id", id).Info("order deleted")
	return nil
}

func owns(actor auth.Identity, o *models.Order) error {
	if actor.IsAdmin() || actor.UserID == o.UserID {
		return nil
	}
	return httperr.ErrForbidden("forbidden", "You cannot modify this order")
}
