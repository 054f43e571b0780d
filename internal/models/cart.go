package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID     uint            `gorm:"primaryKey" json:"id"`
	UserID uint            `gorm:"uniqueIndex;not null" json:"userId"`
	Items  []CartItem      `gorm:"constraint:OnDelete:CASCADE;" json:"items"`
	Bill   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"bill"`

	UpdatedAt time.Time `json:"updatedAt"`
}

type CartItem struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	CartID    uint     `gorm:"index;not null" json:"-"`
	ProductID uint     `gorm:"not null" json:"productId"`
	Product   *Product `gorm:"constraint:OnDelete:CASCADE;" json:"product,omitempty"`
	Quantity  int      `gorm:"not null" json:"quantity"`
}
