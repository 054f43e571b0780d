package payment

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type Repository interface {
	Transaction(
		ctx context.Context,
		fn func(repo Repository) error,
	) error

	// LockCheckout serialises checkouts of one user until the transaction ends.
	LockCheckout(ctx context.Context, userID uint) error

	// -------- Catalog --------
	GetProduct(ctx context.Context, id uint) (*models.Product, error)

	// -------- Order --------
	FindPendingOrder(
		ctx context.Context,
		userID uint,
		productIDs []uint,
	) (*models.Order, error)

	CreateOrder(ctx context.Context, o *models.Order) error
	SaveOrder(ctx context.Context, o *models.Order) error

	// GetOrderForUpdate locks the order row inside a transaction.
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)

	UpdateOrderState(
		ctx context.Context,
		id uuid.UUID,
		status string,
		paymentStatus string,
	) error

	AttachGateway(
		ctx context.Context,
		id uuid.UUID,
		pidx string,
		raw json.RawMessage,
	) error

	// -------- Payment --------
	GetPaymentByPidx(ctx context.Context, pidx string) (*models.Payment, error)
	GetPaymentByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	CreatePayment(ctx context.Context, p *models.Payment) error
	SavePayment(ctx context.Context, p *models.Payment) error

	// -------- Cart --------
	ClearCart(ctx context.Context, userID uint) error
}
