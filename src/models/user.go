package models

import "tickethub/src/types"

type User struct {
	ID       uint           `gorm:"primarykey" json:"id"`
	Name     string         `json:"name,omitempty"`
	Email    string         `gorm:"uniqueIndex" json:"email,omitempty"`
	Password string         `json:"-"`
	Phone    string         `json:"phone,omitempty"`
	UserType types.UserType `gorm:"default:'customer'" json:"user_type,omitempty"`
	Active   bool           `gorm:"default:true" json:"active"`

	Events []Event `gorm:"foreignKey:organizer_id" json:"events,omitempty"`
	Orders []Order `gorm:"foreignKey:user_id" json:"orders,omitempty"`

	types.Timestamps
}
