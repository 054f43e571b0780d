package order

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/order"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type CreateOrderInput struct {
	UserID          uint
	Items           []models.OrderItem
	PaymentMethod   string
	TotalPrice      decimal.Decimal
	ShippingAddress models.ShippingAddress
}

// CreateOrder places an order directly, typically cash on delivery, and
// empties the buyer's cart.
type CreateOrder struct {
	repo domain.Repository
	log  *logrus.Logger
}

func NewCreateOrder(repo domain.Repository, log *logrus.Logger) *CreateOrder {
	return &CreateOrder{repo: repo, log: log}
}

func (uc *CreateOrder) Execute(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	method, err := domain.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}

	if err := domain.SnapshotItems(ctx, uc.repo, in.Items); err != nil {
		return nil, err
	}

	total := in.TotalPrice
	if !total.IsPositive() {
		total = domain.Total(in.Items)
	}

	o := &models.Order{
		UserID:          in.UserID,
		Items:           in.Items,
		PaymentMethod:   method,
		TotalPrice:      total,
		ShippingAddress: in.ShippingAddress,
		Status:          string(domain.StatusPending),
		PaymentStatus:   string(domain.PaymentPending),
	}

	if err := uc.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	if err := uc.repo.ClearCart(ctx, in.UserID); err != nil {
		uc.log.Warnf("Failed to clear cart of user %d after order %s: %+v", in.UserID, o.ID, err)
	}

	uc.log.WithFields(logrus.Fields{
		"order_id": o.ID,
		"user_id":  o.UserID,
		"method":   o.PaymentMethod,
	}).Info("order created")

	return o, nil
}

func errOrderNotFound(err error) error {
	return httperr.MapNotFound(err, "order_not_found", "Order not found.")
}
