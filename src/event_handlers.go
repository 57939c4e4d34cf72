package main

import (
	"errors"
	"log"
	"net/http"

	"tickethub/src/db"
	"tickethub/src/models"
	"tickethub/src/types"
	"tickethub/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func eventHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/events", func(ctx *gin.Context) {
			var query struct {
				City     string `form:"city"`
				Category string `form:"category"`
				Featured bool   `form:"featured"`
			}
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			database := db.GetDb()
			q := database.
				Model(&models.Event{}).
				Preload("TicketTypes").
				Preload("Category").
				Where("status = ?", types.EVENT_PUBLISHED)
			if query.City != "" {
				q = q.Where("city = ?", query.City)
			}
			if query.Category != "" {
				q = q.Joins("JOIN categories ON categories.id = events.category_id").
					Where("categories.slug = ?", query.Category)
			}
			if query.Featured {
				q = q.Where("featured = ?", true)
			}
			var events []models.Event
			if err := q.Order("start_date asc").Find(&events).Error; err != nil {
				log.Printf("Error listing events: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"events": events})
		}).
		GET("/events/:slug", func(ctx *gin.Context) {
			var params struct {
				Slug string `uri:"slug" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			database := db.GetDb()
			var event models.Event
			err := database.
				Preload("TicketTypes").
				Preload("Category").
				Where("slug = ?", params.Slug).
				First(&event).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.Status(http.StatusNotFound)
				return
			}
			if err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"event": event})
		}).
		GET("/categories", func(ctx *gin.Context) {
			database := db.GetDb()
			var categories []models.Category
			if err := database.Order("name asc").Find(&categories).Error; err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"categories": categories})
		})
	return g
}

func organizerEventHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/events", func(ctx *gin.Context) {
			var body types.CreateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			organizerID := ctx.GetUint("id")
			eventID, err := utils.CreateNewEvent(&body, organizerID)
			if err != nil {
				log.Printf("Error creating event: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": eventID})
		}).
		PATCH("/events/:id/status", func(ctx *gin.Context) {
			var params struct {
				ID uint `uri:"id" binding:"required"`
			}
			var body struct {
				NewStatus *types.EventStatus `json:"new_status" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			organizerID := ctx.GetUint("id")
			database := db.GetDb()
			if err := database.Transaction(func(tx *gorm.DB) error {
				var event models.Event
				if err := tx.
					Where("id = ? AND organizer_id = ?", params.ID, organizerID).
					First(&event).Error; err != nil {
					return err
				}
				return tx.
					Model(&models.Event{}).
					Where("id = ?", event.ID).
					Update("status", *body.NewStatus).Error
			}); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusForbidden)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/ticket-types", func(ctx *gin.Context) {
			var body types.CreateTicketTypeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			organizerID := ctx.GetUint("id")
			tt, err := utils.CreateTicketType(&body, organizerID)
			if err != nil {
				log.Printf("Error creating ticket type: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"ticket_type": tt})
		}).
		POST("/categories", func(ctx *gin.Context) {
			var body types.CreateCategoryRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			category := models.Category{
				Name:        body.Name,
				Slug:        slug.Make(body.Name),
				Description: body.Description,
			}
			database := db.GetDb()
			if err := database.Create(&category).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"category": category})
		})
	return g
}
