package models

import (
	"time"

	"tickethub/src/types"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID            uint                `gorm:"primarykey" json:"id"`
	OrderID       uint                `gorm:"uniqueIndex" json:"order_id,omitempty"`
	Method        types.PaymentMethod `json:"payment_method,omitempty"`
	Status        types.PaymentStatus `gorm:"default:'pending'" json:"status,omitempty"`
	Amount        decimal.Decimal     `gorm:"type:numeric(10,2)" json:"amount"`
	TransactionID *string             `json:"transaction_id,omitempty"`
	ReceiptNumber *string             `json:"receipt_number,omitempty"`
	PhoneNumber   string              `json:"phone_number,omitempty"`
	GatewayData   *types.JSONB        `gorm:"type:jsonb" json:"gateway_data,omitempty"`
	CompletedAt   *time.Time          `json:"completed_at,omitempty"`

	Order *Order `gorm:"foreignKey:order_id" json:"order,omitempty"`

	types.Timestamps
}
