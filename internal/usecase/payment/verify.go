package payment

import (
	"context"

	"github.com/sirupsen/logrus"

	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/payment"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
)

// VerifyPayment is the customer's confirmation after returning from the
// gateway's hosted page. The gateway's lookup decides the outcome.
type VerifyPayment struct {
	gateway   domain.Gateway
	reconcile *Reconcile
	log       *logrus.Logger
}

func NewVerifyPayment(
	gateway domain.Gateway,
	reconcile *Reconcile,
	log *logrus.Logger,
) *VerifyPayment {
	return &VerifyPayment{
		gateway:   gateway,
		reconcile: reconcile,
		log:       log,
	}
}

func (uc *VerifyPayment) Execute(
	ctx context.Context,
	pidx string,
) (*Outcome, error) {

	if pidx == "" {
		return nil, httperr.ErrValidation("missing_pidx", "Payment reference (pidx) is required")
	}

	uc.log.WithField("pidx", pidx).Debug("verifying payment")

	lookup, err := uc.gateway.Lookup(ctx, pidx)
	if err != nil {
		return nil, httperr.ErrExternal("payment_verify_failed", "Payment verification failed", err)
	}
	lookup.Pidx = pidx

	return uc.reconcile.Execute(ctx, lookup)
}
