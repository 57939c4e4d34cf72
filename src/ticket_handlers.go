package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"time"

	"tickethub/src/common"
	"tickethub/src/db"
	"tickethub/src/lib"
	"tickethub/src/models"
	"tickethub/src/types"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeqown/go-qrcode"
)

// ownsTicket checks the ticket's parent order against the caller the same
// way ownsOrder does.
func ownsTicket(ctx *gin.Context, ticket *models.Ticket) bool {
	if ticket.OrderItem == nil || ticket.OrderItem.Order == nil {
		return false
	}
	return ownsOrder(ctx, ticket.OrderItem.Order)
}

func ticketHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/tickets", func(ctx *gin.Context) {
			userID := ctx.GetUint("id")
			database := db.GetDb()
			var tickets []models.Ticket
			err := database.
				Joins("JOIN order_items ON order_items.id = tickets.order_item_id").
				Joins("JOIN orders ON orders.id = order_items.order_id").
				Where("orders.user_id = ?", userID).
				Order("tickets.created_at desc").
				Find(&tickets).Error
			if err != nil {
				log.Printf("Error listing tickets for user %d: %s\n", userID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"tickets": tickets})
		}).
		GET("/tickets/:number", func(ctx *gin.Context) {
			var params types.TicketNumberURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			ticket, err := common.GetTicketByNumber(params.TicketNumber)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			if !ownsTicket(ctx, ticket) {
				ctx.JSON(http.StatusNotFound, gin.H{"code": types.CODE_TICKET_NOT_FOUND, "error": "ticket not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"ticket": ticket})
		}).
		GET("/tickets/:number/code", func(ctx *gin.Context) {
			var params types.TicketNumberURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			ticket, err := common.GetTicketByNumber(params.TicketNumber)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			if !ownsTicket(ctx, ticket) {
				ctx.JSON(http.StatusNotFound, gin.H{"code": types.CODE_TICKET_NOT_FOUND, "error": "ticket not found"})
				return
			}
			if ticket.Status != types.TICKET_VALID {
				ctx.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("ticket is %s", ticket.Status)})
				return
			}

			filename := fmt.Sprintf("ticketcode_%s", ticket.TicketNumber)
			wd, err := os.Getwd()
			if err != nil {
				log.Printf("Could not read working directory: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			tempdir := os.Getenv("TEMP_DIR")
			filepath := path.Join(wd, tempdir, fmt.Sprintf("%s.jpeg", filename))

			rd := lib.GetRedisClient()
			if rd != nil {
				cached, err := rd.Get(context.Background(), filename).Result()
				if err != nil && !errors.Is(err, redis.Nil) {
					log.Printf("Error reading from cache: %s\n", err.Error())
				}
				if cached != "" {
					ctx.FileAttachment(cached, "ticketcode.jpeg")
					return
				}
			}

			qrc, err := qrcode.New(ticket.CodePayload)
			if err != nil {
				log.Printf("Error building code for ticket %s: %s\n", ticket.TicketNumber, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if err := qrc.Save(filepath); err != nil {
				log.Printf("Could not save code to file [%s]: %s\n", filepath, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if rd != nil {
				rd.SetEx(context.Background(), filename, filepath, 2*time.Hour)
			}
			ctx.FileAttachment(filepath, "ticketcode.jpeg")
		})
	return g
}

func checkinHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/tickets/:number/checkin", func(ctx *gin.Context) {
			var params types.TicketNumberURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			ticket, err := common.CheckInTicket(params.TicketNumber)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"ticket": ticket})
		})
	return g
}
