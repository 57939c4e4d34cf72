package common

import (
	"errors"
	"log"
	"sort"
	"time"

	"tickethub/src/db"
	"tickethub/src/models"
	"tickethub/src/types"
	"tickethub/src/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateOrder validates the cart, reserves inventory, and creates the order,
// its items, and their tickets in one transaction. Any failure rolls the
// whole thing back, so inventory counters never drift from issued tickets.
func CreateOrder(params *types.CreateOrderRequestBody, userID *uint) (*models.Order, error) {
	if len(params.Items) == 0 {
		return nil, types.NewDomainError(types.CODE_EMPTY_CART, "order must contain at least one item")
	}

	// Duplicate lines for the same ticket type collapse into one, so limits
	// cannot be dodged by splitting a quantity across lines.
	merged := map[uint]uint{}
	for _, line := range params.Items {
		merged[line.TicketTypeID] += line.Quantity
	}
	ids := make([]uint, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	// Lock rows in a stable order to keep concurrent carts from deadlocking.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var order models.Order
	database := db.GetDb()
	err := database.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		validation := &types.OrderValidationError{}
		lines := make([]*models.TicketType, 0, len(ids))

		for _, id := range ids {
			tt, err := GetTicketTypeForUpdate(tx, id)
			if err != nil {
				var derr *types.DomainError
				if errors.As(err, &derr) {
					validation.Add(id, derr.Code, "%s", derr.Message)
					continue
				}
				return err
			}
			qty := merged[id]
			if tt.EventID != params.EventID {
				validation.Add(id, types.CODE_TICKET_TYPE_NOT_FOUND, "ticket type %d does not belong to event %d", id, params.EventID)
				continue
			}
			if err := CheckSalesWindow(tt, now); err != nil {
				var derr *types.DomainError
				errors.As(err, &derr)
				validation.Add(id, derr.Code, "%s", derr.Message)
			}
			if err := CheckPurchaseLimits(tt, qty); err != nil {
				var derr *types.DomainError
				errors.As(err, &derr)
				validation.Add(id, derr.Code, "%s", derr.Message)
			}
			if tt.Available() < qty {
				validation.Add(id, types.CODE_OUT_OF_STOCK, "only %d of %q left", tt.Available(), tt.Name)
			}
			lines = append(lines, tt)
		}
		if validation.HasViolations() {
			return validation
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for _, tt := range lines {
			qty := merged[tt.ID]
			if err := ReserveTicketType(tx, tt, qty); err != nil {
				return err
			}
			subtotal := tt.Price.Mul(decimal.NewFromUint64(uint64(qty)))
			total = total.Add(subtotal)
			items = append(items, models.OrderItem{
				TicketTypeID: tt.ID,
				Quantity:     qty,
				UnitPrice:    tt.Price,
				Subtotal:     subtotal,
			})
		}

		order = models.Order{
			OrderNumber:   utils.NewOrderNumber(),
			Status:        types.ORDER_PENDING,
			TotalAmount:   total,
			Email:         params.Email,
			PhoneNumber:   params.PhoneNumber,
			PaymentMethod: params.PaymentMethod,
			UserID:        userID,
			EventID:       params.EventID,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
			tickets, err := IssueTickets(tx, &items[i], params.AttendeeName, params.Email)
			if err != nil {
				return err
			}
			items[i].Tickets = tickets
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Created order %s with %d items\n", order.OrderNumber, len(order.Items))
	return &order, nil
}

func GetOrderByNumber(orderNumber string) (*models.Order, error) {
	var order models.Order
	err := db.GetDb().
		Preload("Items").
		Preload("Items.TicketType").
		Preload("Items.Tickets").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewDomainError(types.CODE_ORDER_NOT_FOUND, "order %s does not exist", orderNumber)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder voids a pending order, releasing its inventory and cancelling
// its tickets. Paid orders go through RefundPayment instead.
func CancelOrder(orderNumber string) (*models.Order, error) {
	var order models.Order
	database := db.GetDb()
	err := database.Transaction(func(tx *gorm.DB) error {
		err := db.ForUpdate(tx).Where("order_number = ?", orderNumber).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NewDomainError(types.CODE_ORDER_NOT_FOUND, "order %s does not exist", orderNumber)
		}
		if err != nil {
			return err
		}
		if order.Status != types.ORDER_PENDING {
			return types.NewDomainError(types.CODE_INVALID_ORDER_STATE, "order %s is %s, only pending orders can be cancelled", orderNumber, order.Status)
		}
		return voidOrder(tx, &order, types.ORDER_CANCELLED)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// voidOrder flips the order to a terminal state, returns its units to the
// pool, and cancels its tickets. Caller holds the order row lock.
func voidOrder(tx *gorm.DB, order *models.Order, status types.OrderStatus) error {
	var items []models.OrderItem
	if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		return err
	}
	for _, item := range items {
		if err := ReleaseTicketType(tx, item.TicketTypeID, item.Quantity); err != nil {
			return err
		}
		err := tx.Model(&models.Ticket{}).
			Where("order_item_id = ?", item.ID).
			Update("status", types.TICKET_CANCELLED).Error
		if err != nil {
			return err
		}
	}
	order.Status = status
	return tx.Model(order).Update("status", status).Error
}
