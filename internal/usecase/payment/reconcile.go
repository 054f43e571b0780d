package payment

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	orderdomain "github.com/chasmapasal/chasmapasal-api/internal/domain/order"
	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/payment"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

// Outcome is the state a payment settled in after reconciliation.
type Outcome struct {
	OrderID       string
	UserID        uint
	GatewayStatus string
	Paid          bool
	TransactionID string
}

// Reconcile applies a gateway lookup to the order, its payment and, on
// success, the buyer's cart. It runs in one transaction with the payment row
// locked, so concurrent verify and webhook calls for one pidx apply once.
type Reconcile struct {
	repo domain.Repository
	now  func() time.Time
	log  *logrus.Logger
}

func NewReconcile(repo domain.Repository, log *logrus.Logger) *Reconcile {
	return &Reconcile{
		repo: repo,
		now:  time.Now,
		log:  log,
	}
}

func (uc *Reconcile) Execute(ctx context.Context, lookup *domain.LookupResult) (*Outcome, error) {
	var out *Outcome

	err := uc.repo.Transaction(ctx, func(repo domain.Repository) error {
		p, err := repo.GetPaymentByPidx(ctx, lookup.Pidx)
		if err != nil {
			return httperr.MapNotFound(err, "payment_not_found", "Payment not found")
		}

		o, err := repo.GetOrderForUpdate(ctx, p.OrderID)
		if err != nil {
			return httperr.MapNotFound(err, "order_not_found", "Order not found")
		}

		out = &Outcome{
			OrderID:       o.ID.String(),
			UserID:        o.UserID,
			GatewayStatus: lookup.Status,
		}

		// a settled success is never reopened
		if domain.Status(p.Status) == domain.StatusSuccess {
			out.Paid = true
			out.TransactionID = deref(p.TransactionID)
			return nil
		}

		if !lookup.Completed() {
			return uc.fail(ctx, repo, o, p)
		}

		// the order may have been repriced after this payment was opened
		if due := domain.MinorUnits(o.TotalPrice); lookup.TotalAmount != due {
			uc.log.WithFields(logrus.Fields{
				"pidx":     lookup.Pidx,
				"order_id": out.OrderID,
				"paid":     lookup.TotalAmount,
				"due":      due,
			}).Warn("gateway amount does not match order total, not settling")
			return httperr.ErrConflict("amount_mismatch", "Paid amount does not match the order total")
		}

		out.Paid = true
		out.TransactionID = lookup.TransactionID
		return uc.settle(ctx, repo, o, p, lookup)
	})
	if err != nil {
		return nil, err
	}

	uc.log.WithFields(logrus.Fields{
		"pidx":     lookup.Pidx,
		"order_id": out.OrderID,
		"status":   lookup.Status,
		"paid":     out.Paid,
	}).Info("payment reconciled")

	return out, nil
}

func (uc *Reconcile) settle(
	ctx context.Context,
	repo domain.Repository,
	o *models.Order,
	p *models.Payment,
	lookup *domain.LookupResult,
) error {
	if err := repo.UpdateOrderState(
		ctx,
		o.ID,
		string(orderdomain.StatusDelivered),
		string(orderdomain.PaymentPaid),
	); err != nil {
		return err
	}

	paidAt := uc.now()
	p.Status = string(domain.StatusSuccess)
	p.PaymentDate = &paidAt
	if lookup.TransactionID != "" {
		tid := lookup.TransactionID
		p.TransactionID = &tid
	}
	if err := repo.SavePayment(ctx, p); err != nil {
		return err
	}

	return repo.ClearCart(ctx, o.UserID)
}

func (uc *Reconcile) fail(
	ctx context.Context,
	repo domain.Repository,
	o *models.Order,
	p *models.Payment,
) error {
	if domain.Status(p.Status) == domain.StatusFailed && o.Status == string(orderdomain.StatusFailed) {
		return nil
	}

	if err := repo.UpdateOrderState(
		ctx,
		o.ID,
		string(orderdomain.StatusFailed),
		string(orderdomain.PaymentFailed),
	); err != nil {
		return err
	}

	p.Status = string(domain.StatusFailed)
	return repo.SavePayment(ctx, p)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
