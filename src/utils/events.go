package utils

import (
	"fmt"
	"log"
	"time"

	"tickethub/src/db"
	"tickethub/src/models"
	"tickethub/src/types"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func CreateNewEvent(params *types.CreateEventRequestBody, organizerID uint) (uint, error) {
	startDate, err := ParseEventTime(params.StartDate)
	if err != nil {
		log.Printf("Error parsing start_date: %s\n", err.Error())
		return 0, err
	}
	endDate, err := ParseEventTime(params.EndDate)
	if err != nil {
		log.Printf("Error parsing end_date: %s\n", err.Error())
		return 0, err
	}

	status := types.EVENT_DRAFT
	if params.Publish {
		status = types.EVENT_PUBLISHED
	}
	event := models.Event{
		Title:        params.Title,
		Slug:         fmt.Sprintf("%s-%d", slug.Make(params.Title), time.Now().Unix()),
		Description:  params.Description,
		Status:       status,
		StartDate:    startDate,
		EndDate:      endDate,
		VenueName:    params.VenueName,
		VenueAddress: params.VenueAddress,
		City:         params.City,
		Country:      params.Country,
		Featured:     params.Featured,
		BannerURL:    params.BannerURL,
		CategoryID:   params.CategoryID,
		OrganizerID:  organizerID,
	}

	database := db.GetDb()
	err = database.Transaction(func(tx *gorm.DB) error {
		if params.CategoryID != nil {
			var category models.Category
			if err := tx.First(&category, *params.CategoryID).Error; err != nil {
				return err
			}
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return 0, err
	}
	return event.ID, nil
}

func CreateTicketType(params *types.CreateTicketTypeRequestBody, organizerID uint) (*models.TicketType, error) {
	var salesStart, salesEnd *time.Time
	if params.SalesStart != nil {
		t, err := ParseEventTime(*params.SalesStart)
		if err != nil {
			return nil, err
		}
		salesStart = &t
	}
	if params.SalesEnd != nil {
		t, err := ParseEventTime(*params.SalesEnd)
		if err != nil {
			return nil, err
		}
		salesEnd = &t
	}

	minPurchase := params.MinPurchase
	if minPurchase == 0 {
		minPurchase = 1
	}
	maxPurchase := params.MaxPurchase
	if maxPurchase == 0 {
		maxPurchase = 10
	}
	tt := models.TicketType{
		EventID:     params.EventID,
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		Quantity:    params.Quantity,
		SalesStart:  salesStart,
		SalesEnd:    salesEnd,
		MinPurchase: minPurchase,
		MaxPurchase: maxPurchase,
	}

	database := db.GetDb()
	err := database.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, params.EventID).Error; err != nil {
			return err
		}
		if event.OrganizerID != organizerID {
			return fmt.Errorf("event %d does not belong to organizer %d", params.EventID, organizerID)
		}
		return tx.Create(&tt).Error
	})
	if err != nil {
		return nil, err
	}
	return &tt, nil
}
