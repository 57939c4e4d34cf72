package common

import (
	"testing"
	"time"

	"tickethub/src/db"
	"tickethub/src/models"
	"tickethub/src/types"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	err = gdb.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Event{},
		&models.TicketType{},
		&models.Order{},
		&models.OrderItem{},
		&models.Ticket{},
		&models.Payment{},
	)
	require.NoError(t, err)
	db.NewDB(gdb)
	return gdb
}

func seedEvent(t *testing.T, gdb *gorm.DB) *models.Event {
	t.Helper()
	organizer := models.User{Name: "Organizer", Email: "org@example.com", UserType: types.USER_ORGANIZER}
	require.NoError(t, gdb.Create(&organizer).Error)
	event := models.Event{
		Title:       "Summer Fest",
		Slug:        "summer-fest",
		Description: "Open air festival",
		Status:      types.EVENT_PUBLISHED,
		StartDate:   time.Now().Add(72 * time.Hour),
		EndDate:     time.Now().Add(96 * time.Hour),
		VenueName:   "City Park",
		City:        "Nairobi",
		OrganizerID: organizer.ID,
	}
	require.NoError(t, gdb.Create(&event).Error)
	return &event
}

type ticketTypeOpts struct {
	salesStart  *time.Time
	salesEnd    *time.Time
	minPurchase uint
	maxPurchase uint
}

func seedTicketType(t *testing.T, gdb *gorm.DB, eventID uint, price string, quantity uint, opts *ticketTypeOpts) *models.TicketType {
	t.Helper()
	tt := models.TicketType{
		EventID:     eventID,
		Name:        "General Admission",
		Price:       decimal.RequireFromString(price),
		Quantity:    quantity,
		MinPurchase: 1,
		MaxPurchase: 10,
	}
	if opts != nil {
		tt.SalesStart = opts.salesStart
		tt.SalesEnd = opts.salesEnd
		if opts.minPurchase > 0 {
			tt.MinPurchase = opts.minPurchase
		}
		if opts.maxPurchase > 0 {
			tt.MaxPurchase = opts.maxPurchase
		}
	}
	require.NoError(t, gdb.Create(&tt).Error)
	return &tt
}

func orderRequest(eventID uint, lines ...types.OrderLineRequest) *types.CreateOrderRequestBody {
	return &types.CreateOrderRequestBody{
		EventID:       eventID,
		Items:         lines,
		AttendeeName:  "Joe Buyer",
		Email:         "buyer@example.com",
		PhoneNumber:   "+254700000001",
		PaymentMethod: types.METHOD_MPESA,
	}
}
