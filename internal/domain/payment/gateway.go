package payment

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// StatusCompleted is the only lookup status that settles an order.
const StatusCompleted = "Completed"

// MinAmount is the smallest chargeable amount, in paisa.
const MinAmount = 100

type Customer struct {
	Name  string
	Email string
	Phone string
}

type InitiateRequest struct {
	ReturnURL         string
	WebsiteURL        string
	Amount            int64
	PurchaseOrderID   string
	PurchaseOrderName string
	Customer          Customer
}

type InitiateResult struct {
	Pidx       string
	PaymentURL string
	Raw        json.RawMessage
}

type LookupResult struct {
	Pidx          string
	Status        string
	TransactionID string
	TotalAmount   int64
}

func (r LookupResult) Completed() bool {
	return r.Status == StatusCompleted
}

// DetailedError is implemented by gateway errors that carry the provider's own
// explanation, which is safe to show to the customer.
type DetailedError interface {
	error
	GatewayDetail() string
}

// Gateway is the hosted payment page provider.
type Gateway interface {
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)
	Lookup(ctx context.Context, pidx string) (*LookupResult, error)
}

// MinorUnits converts rupees into paisa, rounding half away from zero.
func MinorUnits(total decimal.Decimal) int64 {
	return total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
