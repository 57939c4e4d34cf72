package common

import (
	"errors"
	"time"

	"tickethub/src/db"
	"tickethub/src/models"
	"tickethub/src/types"
	"tickethub/src/utils"

	"gorm.io/gorm"
)

// IssueTickets creates one ticket row per unit on the order item. Numbers
// come from a v4 UUID so a collision on the unique index is a hard error,
// never something to retry.
func IssueTickets(tx *gorm.DB, item *models.OrderItem, attendeeName, attendeeEmail string) ([]models.Ticket, error) {
	tickets := make([]models.Ticket, 0, item.Quantity)
	for range item.Quantity {
		number := utils.NewTicketNumber()
		tickets = append(tickets, models.Ticket{
			TicketNumber:  number,
			Status:        types.TICKET_VALID,
			CodePayload:   utils.NewCodePayload(number),
			AttendeeName:  attendeeName,
			AttendeeEmail: attendeeEmail,
			OrderItemID:   item.ID,
		})
	}
	if err := tx.Create(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func GetTicketByNumber(ticketNumber string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := db.GetDb().
		Preload("OrderItem").
		Preload("OrderItem.Order").
		Preload("OrderItem.TicketType").
		Where("ticket_number = ?", ticketNumber).
		First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewDomainError(types.CODE_TICKET_NOT_FOUND, "ticket %s does not exist", ticketNumber)
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// CheckInTicket marks a valid ticket as used. Replays and cancelled tickets
// are rejected so a code cannot admit twice.
func CheckInTicket(ticketNumber string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		err := db.ForUpdate(tx).Where("ticket_number = ?", ticketNumber).First(&ticket).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NewDomainError(types.CODE_TICKET_NOT_FOUND, "ticket %s does not exist", ticketNumber)
		}
		if err != nil {
			return err
		}
		if ticket.Status != types.TICKET_VALID {
			return types.NewDomainError(types.CODE_INVALID_TICKET_STATE, "ticket %s is %s", ticketNumber, ticket.Status)
		}
		now := time.Now()
		ticket.Status = types.TICKET_USED
		ticket.CheckedIn = true
		ticket.CheckedInAt = &now
		return tx.Model(&ticket).Updates(map[string]any{
			"status":        types.TICKET_USED,
			"checked_in":    true,
			"checked_in_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// TicketsForOrder returns every ticket issued under the order, across all of
// its items.
func TicketsForOrder(tx *gorm.DB, orderID uint) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := tx.
		Joins("JOIN order_items ON order_items.id = tickets.order_item_id").
		Where("order_items.order_id = ?", orderID).
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}
