package models

import (
	"time"

	"tickethub/src/types"
)

type Ticket struct {
	ID            uint               `gorm:"primarykey" json:"id"`
	TicketNumber  string             `gorm:"uniqueIndex" json:"ticket_number,omitempty"`
	Status        types.TicketStatus `gorm:"default:'valid'" json:"status,omitempty"`
	CodePayload   string             `json:"code_payload,omitempty"`
	AttendeeName  string             `json:"attendee_name,omitempty"`
	AttendeeEmail string             `json:"attendee_email,omitempty"`
	OrderItemID   uint               `json:"order_item_id,omitempty"`
	CheckedIn     bool               `gorm:"default:false" json:"checked_in"`
	CheckedInAt   *time.Time         `json:"checked_in_at,omitempty"`

	OrderItem *OrderItem `gorm:"foreignKey:order_item_id" json:"order_item,omitempty"`

	types.Timestamps
}
