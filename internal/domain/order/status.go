package order

import "github.com/chasmapasal/chasmapasal-api/internal/httperr"

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

const (
	MethodCOD  = "cod"
	MethodCard = "card"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusFailed, StatusRefunded:
		return Status(s), nil
	}
	return "", httperr.ErrValidation("invalid_status", "Unknown order status: "+s)
}

func ParsePaymentMethod(s string) (string, error) {
	switch s {
	case MethodCOD, MethodCard:
		return s, nil
	}
	return "", httperr.ErrValidation("invalid_payment_method", "Payment method must be cod or card")
}
