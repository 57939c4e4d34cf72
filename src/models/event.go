package models

import (
	"time"

	"tickethub/src/types"
)

type Event struct {
	ID           uint              `gorm:"primarykey" json:"id"`
	Title        string            `json:"title,omitempty"`
	Slug         string            `gorm:"uniqueIndex" json:"slug,omitempty"`
	Description  string            `json:"description,omitempty"`
	Status       types.EventStatus `gorm:"default:'draft'" json:"status,omitempty"`
	StartDate    time.Time         `json:"start_date,omitempty"`
	EndDate      time.Time         `json:"end_date,omitempty"`
	VenueName    string            `json:"venue_name,omitempty"`
	VenueAddress string            `json:"venue_address,omitempty"`
	City         string            `json:"city,omitempty"`
	Country      string            `json:"country,omitempty"`
	Featured     bool              `gorm:"default:false" json:"featured"`
	BannerURL    *string           `json:"banner_url,omitempty"`
	CategoryID   *uint             `json:"category_id,omitempty"`
	OrganizerID  uint              `json:"organizer_id,omitempty"`
	Metadata     *types.JSONB      `gorm:"type:jsonb" json:"metadata,omitempty"`

	Category    *Category    `gorm:"foreignKey:category_id" json:"category,omitempty"`
	Organizer   *User        `gorm:"foreignKey:organizer_id" json:"organizer,omitempty"`
	TicketTypes []TicketType `gorm:"foreignKey:event_id" json:"ticket_types,omitempty"`

	types.Timestamps
}
