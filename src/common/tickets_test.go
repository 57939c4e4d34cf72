package common

import (
	"testing"

	"tickethub/src/models"
	"tickethub/src/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueTicketsUniqueNumbers(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb)
	tt := seedTicketType(t, gdb, event.ID, "50.00", 100, nil)

	order, err := CreateOrder(orderRequest(event.ID, types.OrderLineRequest{TicketTypeID: tt.ID, Quantity: 10}), nil)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, item := range order.Items {
		for _, ticket := range item.Tickets {
			assert.False(t, seen[ticket.TicketNumber])
			seen[ticket.TicketNumber] = true
			assert.Equal(t, "buyer@example.com", ticket.AttendeeEmail)
		}
	}
	assert.Len(t, seen, 10)
}

func TestGetTicketByNumber(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb)
	tt := seedTicketType(t, gdb, event.ID, "50.00", 10, nil)
	order, err := CreateOrder(orderRequest(event.ID, types.OrderLineRequest{TicketTypeID: tt.ID, Quantity: 1}), nil)
	require.NoError(t, err)
	number := order.Items[0].Tickets[0].TicketNumber

	ticket, err := GetTicketByNumber(number)
	require.NoError(t, err)
	require.NotNil(t, ticket.OrderItem)
	require.NotNil(t, ticket.OrderItem.Order)
	assert.Equal(t, order.OrderNumber, ticket.OrderItem.Order.OrderNumber)

	_, err = GetTicketByNumber("DOESNOTEXIST")
	var derr *types.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, types.CODE_TICKET_NOT_FOUND, derr.Code)
}

func TestCheckInTicket(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb)
	tt := seedTicketType(t, gdb, event.ID, "50.00", 10, nil)
	order, err := CreateOrder(orderRequest(event.ID, types.OrderLineRequest{TicketTypeID: tt.ID, Quantity: 1}), nil)
	require.NoError(t, err)
	number := order.Items[0].Tickets[0].TicketNumber

	ticket, err := CheckInTicket(number)
	require.NoError(t, err)
	assert.Equal(t, types.TICKET_USED, ticket.Status)
	assert.True(t, ticket.CheckedIn)
	assert.NotNil(t, ticket.CheckedInAt)

	// The same code cannot admit twice.
	_, err = CheckInTicket(number)
	var derr *types.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, types.CODE_INVALID_TICKET_STATE, derr.Code)

	var stored models.Ticket
	require.NoError(t, gdb.Where("ticket_number = ?", number).First(&stored).Error)
	assert.Equal(t, types.TICKET_USED, stored.Status)
	assert.True(t, stored.CheckedIn)
}

func TestCheckInCancelledTicket(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb)
	tt := seedTicketType(t, gdb, event.ID, "50.00", 10, nil)
	order, err := CreateOrder(orderRequest(event.ID, types.OrderLineRequest{TicketTypeID: tt.ID, Quantity: 1}), nil)
	require.NoError(t, err)
	_, err = CancelOrder(order.OrderNumber)
	require.NoError(t, err)

	_, err = CheckInTicket(order.Items[0].Tickets[0].TicketNumber)
	var derr *types.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, types.CODE_INVALID_TICKET_STATE, derr.Code)
}
