package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	orderdomain "github.com/chasmapasal/chasmapasal-api/internal/domain/order"
	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/payment"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type CheckoutInput struct {
	UserID          uint
	Items           []models.OrderItem
	TotalPrice      decimal.Decimal
	ShippingAddress models.ShippingAddress
}

type CheckoutResult struct {
	PaymentURL string
	Pidx       string
	OrderID    string
}

// URLs are the frontend addresses the gateway sends the customer back to.
type URLs struct {
	ReturnURL  string
	WebsiteURL string
}

// ======================================================
// USE CASE
// ======================================================

// Checkout creates or refreshes the user's pending card order and opens a
// gateway payment for it.
type Checkout struct {
	repo    domain.Repository
	gateway domain.Gateway
	urls    URLs
	log     *logrus.Logger
}

func NewCheckout(
	repo domain.Repository,
	gateway domain.Gateway,
	urls URLs,
	log *logrus.Logger,
) *Checkout {
	return &Checkout{
		repo:    repo,
		gateway: gateway,
		urls:    urls,
		log:     log,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *Checkout) Execute(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {

	// --------------------------------------------------
	// Amount, before anything is written
	// --------------------------------------------------
	amount := domain.MinorUnits(in.TotalPrice)
	if amount < domain.MinAmount {
		return nil, httperr.ErrValidation("amount_too_low", "Minimum payment amount is NPR 1.00")
	}

	// --------------------------------------------------
	// Pending order, one per user and item set
	// --------------------------------------------------
	var o *models.Order

	err := uc.repo.Transaction(ctx, func(repo domain.Repository) error {
		if err := repo.LockCheckout(ctx, in.UserID); err != nil {
			return err
		}

		if err := orderdomain.SnapshotItems(ctx, repo, in.Items); err != nil {
			return err
		}

		productIDs := make([]uint, 0, len(in.Items))
		for _, it := range in.Items {
			productIDs = append(productIDs, it.ProductID)
		}

		existing, err := repo.FindPendingOrder(ctx, in.UserID, productIDs)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			o = &models.Order{
				UserID:          in.UserID,
				Items:           in.Items,
				PaymentMethod:   orderdomain.MethodCard,
				TotalPrice:      in.TotalPrice,
				ShippingAddress: in.ShippingAddress,
				Status:          string(orderdomain.StatusPending),
				PaymentStatus:   string(orderdomain.PaymentPending),
			}
			return repo.CreateOrder(ctx, o)

		case err != nil:
			return err
		}

		if existing.PaymentMethod != orderdomain.MethodCard {
			return httperr.ErrConflict("pending_order_exists", "Pending order already exists for these items.")
		}

		existing.Items = in.Items
		existing.TotalPrice = in.TotalPrice
		existing.ShippingAddress = in.ShippingAddress
		o = existing
		return repo.SaveOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Gateway
	// --------------------------------------------------
	phone := o.ShippingAddress.Phone
	if phone == "" {
		phone = domain.DefaultPhone
	}

	orderID := o.ID.String()
	init, err := uc.gateway.Initiate(ctx, domain.InitiateRequest{
		ReturnURL:         uc.urls.ReturnURL,
		WebsiteURL:        uc.urls.WebsiteURL,
		Amount:            amount,
		PurchaseOrderID:   orderID,
		PurchaseOrderName: "Order-" + orderID[len(orderID)-6:],
		Customer: domain.Customer{
			Name:  o.ShippingAddress.Name,
			Email: o.ShippingAddress.Email,
			Phone: phone,
		},
	})
	if err != nil {
		uc.failOrder(ctx, o)
		return nil, initiateError(err)
	}

	// --------------------------------------------------
	// Payment row and gateway reference
	// --------------------------------------------------
	err = uc.repo.Transaction(ctx, func(repo domain.Repository) error {
		if err := repo.LockCheckout(ctx, o.UserID); err != nil {
			return err
		}

		p, err := repo.GetPaymentByOrder(ctx, o.ID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			p = &models.Payment{
				OrderID:        o.ID,
				Amount:         o.TotalPrice,
				Pidx:           init.Pidx,
				PaymentGateway: domain.GatewayKhalti,
				Status:         string(domain.StatusPending),
			}
			if err := repo.CreatePayment(ctx, p); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			p.Amount = o.TotalPrice
			p.Pidx = init.Pidx
			p.Status = string(domain.StatusPending)
			if err := repo.SavePayment(ctx, p); err != nil {
				return err
			}
		}

		return repo.AttachGateway(ctx, o.ID, init.Pidx, init.Raw)
	})
	if err != nil {
		return nil, err
	}

	uc.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"pidx":     init.Pidx,
		"amount":   amount,
	}).Info("payment initiated")

	return &CheckoutResult{
		PaymentURL: init.PaymentURL,
		Pidx:       init.Pidx,
		OrderID:    orderID,
	}, nil
}

// failOrder is a single best-effort compensation.
func (uc *Checkout) failOrder(ctx context.Context, o *models.Order) {
	err := uc.repo.UpdateOrderState(
		ctx,
		o.ID,
		string(orderdomain.StatusFailed),
		string(orderdomain.PaymentFailed),
	)
	if err != nil {
		uc.log.Warnf("Failed to mark order %s as failed: %+v", o.ID, err)
	}
}

func initiateError(err error) error {
	var detailed domain.DetailedError
	if errors.As(err, &detailed) && detailed.GatewayDetail() != "" {
		return httperr.ErrExternal("payment_init_failed", "Payment initialization failed: "+detailed.GatewayDetail(), err)
	}
	return httperr.ErrExternal("payment_init_failed", "Payment initialization failed", err)
}
