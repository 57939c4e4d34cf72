package models

import (
	"time"

	"tickethub/src/types"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            uint                `gorm:"primarykey" json:"id"`
	OrderNumber   string              `gorm:"uniqueIndex" json:"order_number,omitempty"`
	Status        types.OrderStatus   `gorm:"default:'pending'" json:"status,omitempty"`
	TotalAmount   decimal.Decimal     `gorm:"type:numeric(10,2)" json:"total_amount"`
	Email         string              `json:"email,omitempty"`
	PhoneNumber   string              `json:"phone_number,omitempty"`
	PaymentMethod types.PaymentMethod `json:"payment_method,omitempty"`
	TransactionID *string             `json:"transaction_id,omitempty"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	UserID        *uint               `json:"user_id,omitempty"`
	EventID       uint                `json:"event_id,omitempty"`

	User  *User       `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Event *Event      `gorm:"foreignKey:event_id" json:"event,omitempty"`
	Items []OrderItem `gorm:"foreignKey:order_id;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	types.Timestamps
}

type OrderItem struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	OrderID      uint            `json:"order_id,omitempty"`
	TicketTypeID uint            `json:"ticket_type_id,omitempty"`
	Quantity     uint            `json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(10,2)" json:"unit_price"`
	Subtotal     decimal.Decimal `gorm:"type:numeric(10,2)" json:"subtotal"`

	Order      *Order      `gorm:"foreignKey:order_id" json:"order,omitempty"`
	TicketType *TicketType `gorm:"foreignKey:ticket_type_id" json:"ticket_type,omitempty"`
	Tickets    []Ticket    `gorm:"foreignKey:order_item_id;constraint:OnDelete:CASCADE" json:"tickets,omitempty"`

	types.Timestamps
}
