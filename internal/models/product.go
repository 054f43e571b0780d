package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices travel as JSON numbers, like the frontend sends them
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string          `gorm:"size:150;not null" json:"name"`
	Brand       string          `gorm:"size:100" json:"brand"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	SKU         string          `gorm:"size:64;index" json:"sku"`
	Stock       int             `gorm:"default:0" json:"stock"`
	Image       string          `gorm:"size:500" json:"image"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
