package models

import "tickethub/src/types"

type Category struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	Name        string `gorm:"uniqueIndex" json:"name,omitempty"`
	Slug        string `gorm:"uniqueIndex" json:"slug,omitempty"`
	Description string `json:"description,omitempty"`

	Events []Event `json:"events,omitempty"`

	types.Timestamps
}
