package common

import (
	"strings"
	"sync"
	"testing"
	"time"

	"tickethub/src/models"
	"tickethub/src/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb)
	ga := seedTicketType(t, gdb, event.ID, "50.00", 100, nil)
	vip := seedTicketType(t, gdb, event.ID, "120.00", 20, nil)

	order, err := CreateOrder(orderRequest(event.ID,
		types.OrderLineRequest{TicketTypeID: ga.ID, Quantity: 2},
		types.OrderLineRequest{TicketTypeID: vip.ID, Quantity: 1},
	), nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.OrderNumber, "TH"))
	assert.Len(t, order.OrderNumber, 18)
	assert.Equal(t, types.ORDER_PENDING, order.Status)
	assert.Equal(t, types.METHOD_MPESA, order.PaymentMethod)
	assert.Nil(t, order.PaidAt)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("220.00")))
	require.Len(t, order.Items, 2)

	for _, item := range order.Items {
		assert.Len(t, item.Tickets, int(item.Quantity))
		for _, ticket := range item.Tickets {
			assert.Equal(t, types.TICKET_VALID, ticket.Status)
			assert.Len(t, ticket.TicketNumber, 32)
			assert.Equal(t, strings.ToUpper(ticket.TicketNumber), ticket.TicketNumber)
			assert.Equal(t, "TICKETHUB-"+ticket.TicketNumber, ticket.CodePayload)
			assert.Equal(t, "Joe Buyer", ticket.AttendeeName)
			assert.False(t, ticket.CheckedIn)
		}
	}

	var storedGA models.TicketType
	require.NoError(t, gdb.First(&storedGA, ga.ID).Error)
	assert.Equal(t, uint(2), storedGA.QuantitySold)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb)

	_, err := CreateOrder(orderRequest(event.ID), nil)
	var derr *types.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, types.CODE_EMPTY_CART, derr.Code)
}

func TestCreateOrderPriceSnapshot(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb)
	tt := seedTicketType(t, gdb, event.ID, "50.00", 100, nil)

	order, err := CreateOrder(orderRequest(event.ID, types.OrderLineRequest{TicketTypeID: tt.ID, Quantity: 2}), nil)
	require.NoError(t, err)

	err = gdb.Model(&models.TicketType{}).Where("id = ?", tt.ID).
		Update("price", decimal.RequireFromString("75.00")).Error
	require.NoError(t, err)

	stored, err := GetOrderByNumber(order.OrderNumber)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, stored.Items[0].Subtotal.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, stored.TotalAmount.Equal(decimal.RequireFromString("100.00")))
}

func TestCreateOrderReportsAllViolations(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb)
	past := time.Now().Add(-time.Hour)
	scarce := seedTicketType(t, gdb, event.ID, "50.00", 2, nil)
	closed := seedTicketType(t, gdb, event.ID, "80.00", 50, &ticketTypeOpts{salesEnd: &past})

	_, err := CreateOrder(orderRequest(event.ID,
		types.OrderLineRequest{TicketTypeID: scarce.ID, Quantity: 5},
		types.OrderLineRequest{TicketTypeID: closed.ID, Quantity: 2},
		types.OrderLineRequest{TicketTypeID: 9999, Quantity: 1},
	), nil)
	require.Error(t, err)

	var verr *types.OrderValidationError
	require.ErrorAs(t, err, &verr)
	codes := map[types.ErrorCode]bool{}
	for _, v := range verr.Violations {
		codes[v.Code] = true
	}
	assert.True(t, codes[types.CODE_OUT_OF_STOCK])
	assert.True(t, codes[types.CODE_OUTSIDE_SALES_WINDOW])
	assert.True(t, codes[types.CODE_TICKET_TYPE_NOT_FOUND])

	// Validation failures must not leak reservations.
	var stored models.TicketType
	require.NoError(t, gdb.First(&stored, scarce.ID).Error)
	assert.Equal(t, uint(0), stored.QuantitySold)

	var orderCount int64
	require.NoError(t, gdb.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(0), orderCount)
}

func TestCreateOrderMergesDuplicateLines(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb)
	tt := seedTicketType(t, gdb, event.ID, "50.00", 100, &ticketTypeOpts{maxPurchase: 4})

	_, err := CreateOrder(orderRequest(event.ID,
		types.OrderLineRequest{TicketTypeID: tt.ID, Quantity: 3},
		types.OrderLineRequest{TicketTypeID: tt.ID, Quantity: 3},
	), nil)
	var verr *types.OrderValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, types.CODE_PURCHASE_LIMIT_VIOLATION, verr.Violations[0].Code)

	order, err := CreateOrder(orderRequest(event.ID,
		types.OrderLineRequest{TicketTypeID: tt.ID, Quantity: 2},
		types.OrderLineRequest{TicketTypeID: tt.ID, Quantity: 2},
	), nil)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, uint(4), order.Items[0].Quantity)
}

func TestCreateOrderWrongEvent(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb)
	other := models.Event{
		Title: "Other", Slug: "other", Status: types.EVENT_PUBLISHED,
		StartDate: time.Now().Add(24 * time.Hour), EndDate: time.Now().Add(30 * time.Hour),
		OrganizerID: event.OrganizerID,
	}
	require.NoError(t, gdb.Create(&other).Error)
	tt := seedTicketType(t, gdb, other.ID, "50.00", 10, nil)

	_, err := CreateOrder(orderRequest(event.ID, types.OrderLineRequest{TicketTypeID: tt.ID, Quantity: 1}), nil)
	var verr *types.OrderValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, types.CODE_TICKET_TYPE_NOT_FOUND, verr.Violations[0].Code)
}

func TestCreateOrderConcurrentLastUnits(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb)
	tt := seedTicketType(t, gdb, event.ID, "50.00", 3, nil)

	workers := 4
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = CreateOrder(orderRequest(event.ID, types.OrderLineRequest{TicketTypeID: tt.ID, Quantity: 2}), nil)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	var stored models.TicketType
	require.NoError(t, gdb.First(&stored, tt.ID).Error)
	assert.LessOrEqual(t, stored.QuantitySold, stored.Quantity)
	assert.Equal(t, uint(2), stored.QuantitySold)

	var ticketCount int64
	require.NoError(t, gdb.Model(&models.Ticket{}).Count(&ticketCount).Error)
	assert.Equal(t, int64(2), ticketCount)
}

func TestCancelOrder(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb)
	tt := seedTicketType(t, gdb, event.ID, "50.00", 10, nil)

	order, err := CreateOrder(orderRequest(event.ID, types.OrderLineRequest{TicketTypeID: tt.ID, Quantity: 3}), nil)
	require.NoError(t, err)

	cancelled, err := CancelOrder(order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, types.ORDER_CANCELLED, cancelled.Status)

	var stored models.TicketType
	require.NoError(t, gdb.First(&stored, tt.ID).Error)
	assert.Equal(t, uint(0), stored.QuantitySold)

	var tickets []models.Ticket
	require.NoError(t, gdb.Find(&tickets).Error)
	require.Len(t, tickets, 3)
	for _, ticket := range tickets {
		assert.Equal(t, types.TICKET_CANCELLED, ticket.Status)
	}

	_, err = CancelOrder(order.OrderNumber)
	var derr *types.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, types.CODE_INVALID_ORDER_STATE, derr.Code)
}

func TestGetOrderByNumberNotFound(t *testing.T) {
	newTestDB(t)
	_, err := GetOrderByNumber("TH0000000000000000")
	var derr *types.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, types.CODE_ORDER_NOT_FOUND, derr.Code)
}
