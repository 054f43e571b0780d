package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	TransactionID *string   `gorm:"size:64;uniqueIndex:idx_payments_transaction_id,where:transaction_id IS NOT NULL" json:"transactionId"`
	Pidx          string    `gorm:"size:64;uniqueIndex;not null" json:"pidx"`
	OrderID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"orderId"`

	Amount         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentGateway string          `gorm:"size:10;not null" json:"paymentGateway"`
	Status         string          `gorm:"size:10;default:'pending';index" json:"status"`
	PaymentDate    *time.Time      `json:"paymentDate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
