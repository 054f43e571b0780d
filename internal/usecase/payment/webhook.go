package payment

import (
	"context"
	"net/url"

	"github.com/sirupsen/logrus"

	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/payment"
)

type WebhookInput struct {
	Pidx            string
	Status          string
	TransactionID   string
	PurchaseOrderID string
}

// HandleWebhook reconciles a gateway callback and returns where the browser
// should be redirected. It never fails; errors become an error redirect.
type HandleWebhook struct {
	gateway   domain.Gateway
	reconcile *Reconcile
	statusURL string
	log       *logrus.Logger
}

func NewHandleWebhook(
	gateway domain.Gateway,
	reconcile *Reconcile,
	statusURL string,
	log *logrus.Logger,
) *HandleWebhook {
	return &HandleWebhook{
		gateway:   gateway,
		reconcile: reconcile,
		statusURL: statusURL,
		log:       log,
	}
}

func (uc *HandleWebhook) Execute(ctx context.Context, in WebhookInput) string {
	if in.Pidx == "" || in.Status == "" || in.PurchaseOrderID == "" {
		uc.log.Warn("webhook call without pidx, status or purchase_order_id")
		return uc.statusURL + "?error=invalid_parameters"
	}

	// the query string is unauthenticated; the gateway's lookup is authoritative
	lookup, err := uc.gateway.Lookup(ctx, in.Pidx)
	if err != nil {
		uc.log.Warnf("Failed to look up payment %s: %+v", in.Pidx, err)
		return uc.statusURL + "?error=processing_error"
	}
	lookup.Pidx = in.Pidx

	if lookup.Status != in.Status {
		uc.log.Warnf("webhook status %q for %s differs from gateway status %q", in.Status, in.Pidx, lookup.Status)
	}

	out, err := uc.reconcile.Execute(ctx, lookup)
	if err != nil {
		uc.log.Warnf("Failed to reconcile payment %s: %+v", in.Pidx, err)
		return uc.statusURL + "?error=processing_error"
	}

	if out.OrderID != in.PurchaseOrderID {
		uc.log.Warnf("webhook purchase_order_id %s does not match order %s of %s", in.PurchaseOrderID, out.OrderID, in.Pidx)
	}

	if out.Paid {
		return uc.statusURL + "?success=true&order_id=" + url.QueryEscape(out.OrderID)
	}
	return uc.statusURL + "?status=failed&order_id=" + url.QueryEscape(out.OrderID)
}
