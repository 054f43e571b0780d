package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uint      `gorm:"index;not null" json:"userId"`

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE;" json:"items"`

	PaymentMethod   string          `gorm:"size:10;not null" json:"paymentMethod"`
	TotalPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalPrice"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`

	Status        string `gorm:"size:20;default:'pending';index" json:"status"`
	PaymentStatus string `gorm:"size:20;default:'pending';index" json:"paymentStatus"`

	KhaltiPidx string          `gorm:"size:64;index" json:"khaltiPidx,omitempty"`
	KhaltiData json.RawMessage `gorm:"type:jsonb" json:"khaltiData,omitempty"`

	TrackingNumber string `gorm:"size:64" json:"trackingNumber,omitempty"`
	Notes          string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	ProductID uint      `gorm:"index;not null" json:"product"`
	Product   *Product  `gorm:"constraint:OnDelete:RESTRICT;" json:"productDetails,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity"`

	PriceAtPurchase decimal.Decimal `gorm:"type:numeric(12,2)" json:"priceAtPurchase"`
	NameAtPurchase  string          `gorm:"size:150" json:"nameAtPurchase"`
}

type ShippingAddress struct {
	Name    string `gorm:"size:150" json:"name" binding:"required"`
	Email   string `gorm:"size:150;index" json:"email" binding:"required,email"`
	Address string `gorm:"size:255" json:"address" binding:"required"`
	City    string `gorm:"size:100" json:"city" binding:"required"`
	State   string `gorm:"size:100" json:"state"`
	Zip     string `gorm:"size:20" json:"zip" binding:"required"`
	Phone   string `gorm:"size:30" json:"phone"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Number is the customer facing order number, ORD-XXXXXXXX.
func (o Order) Number() string {
	hex := strings.ReplaceAll(o.ID.String(), "-", "")
	return "ORD-" + strings.ToUpper(hex[len(hex)-8:])
}

func (o Order) MarshalJSON() ([]byte, error) {
	type alias Order
	return json.Marshal(struct {
		alias
		OrderNumber string `json:"orderNumber"`
	}{alias(o), o.Number()})
}
