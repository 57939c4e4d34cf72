package common

import (
	"errors"
	"fmt"
	"time"

	"tickethub/src/db"
	"tickethub/src/models"
	"tickethub/src/types"

	"gorm.io/gorm"
)

// GetTicketTypeForUpdate loads a ticket type under a row lock so the
// sales-window and limit checks that follow see a stable counter.
func GetTicketTypeForUpdate(tx *gorm.DB, ticketTypeID uint) (*models.TicketType, error) {
	var tt models.TicketType
	err := db.ForUpdate(tx).First(&tt, ticketTypeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewDomainError(types.CODE_TICKET_TYPE_NOT_FOUND, "ticket type %d does not exist", ticketTypeID)
	}
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

// CheckSalesWindow reports whether the ticket type is on sale at the given
// instant. A nil bound is open-ended on that side.
func CheckSalesWindow(tt *models.TicketType, now time.Time) error {
	if tt.SalesStart != nil && now.Before(*tt.SalesStart) {
		return types.NewDomainError(types.CODE_OUTSIDE_SALES_WINDOW, "sales for %q have not started", tt.Name)
	}
	if tt.SalesEnd != nil && now.After(*tt.SalesEnd) {
		return types.NewDomainError(types.CODE_OUTSIDE_SALES_WINDOW, "sales for %q have ended", tt.Name)
	}
	return nil
}

// CheckPurchaseLimits validates the requested quantity against the per-order
// bounds configured on the ticket type.
func CheckPurchaseLimits(tt *models.TicketType, qty uint) error {
	if tt.MinPurchase > 0 && qty < tt.MinPurchase {
		return types.NewDomainError(types.CODE_PURCHASE_LIMIT_VIOLATION, "minimum purchase for %q is %d", tt.Name, tt.MinPurchase)
	}
	if tt.MaxPurchase > 0 && qty > tt.MaxPurchase {
		return types.NewDomainError(types.CODE_PURCHASE_LIMIT_VIOLATION, "maximum purchase for %q is %d", tt.Name, tt.MaxPurchase)
	}
	return nil
}

// ReserveTicketType moves qty units from available to sold. The guard lives
// in the WHERE clause so the counter can never overshoot quantity, even when
// two transactions race past the earlier availability read.
func ReserveTicketType(tx *gorm.DB, tt *models.TicketType, qty uint) error {
	res := tx.Model(&models.TicketType{}).
		Where("id = ? AND quantity_sold + ? <= quantity", tt.ID, qty).
		Update("quantity_sold", gorm.Expr("quantity_sold + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NewDomainError(types.CODE_OUT_OF_STOCK, "only %d of %q left", tt.Available(), tt.Name)
	}
	tt.QuantitySold += qty
	return nil
}

// ReleaseTicketType returns qty units to the pool after a cancellation or
// refund. The guard keeps the counter from going below zero.
func ReleaseTicketType(tx *gorm.DB, ticketTypeID uint, qty uint) error {
	res := tx.Model(&models.TicketType{}).
		Where("id = ? AND quantity_sold >= ?", ticketTypeID, qty).
		Update("quantity_sold", gorm.Expr("quantity_sold - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cannot release %d units for ticket type %d", qty, ticketTypeID)
	}
	return nil
}
