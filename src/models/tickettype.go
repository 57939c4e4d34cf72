package models

import (
	"time"

	"tickethub/src/types"

	"github.com/shopspring/decimal"
)

type TicketType struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	EventID      uint            `json:"event_id,omitempty"`
	Name         string          `json:"name,omitempty"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`
	Quantity     uint            `json:"quantity"`
	QuantitySold uint            `gorm:"default:0" json:"quantity_sold"`
	SalesStart   *time.Time      `json:"sales_start,omitempty"`
	SalesEnd     *time.Time      `json:"sales_end,omitempty"`
	MinPurchase  uint            `gorm:"default:1" json:"min_purchase"`
	MaxPurchase  uint            `gorm:"default:10" json:"max_purchase"`

	Event *Event `gorm:"foreignKey:event_id" json:"event,omitempty"`

	types.Timestamps
}

// Available reports the unsold remainder. Counters only move through the
// inventory helpers so this never goes negative.
func (t *TicketType) Available() uint {
	return t.Quantity - t.QuantitySold
}
