package main

import (
	"errors"
	"log"
	"net/http"

	"tickethub/src/common"
	"tickethub/src/db"
	"tickethub/src/models"
	"tickethub/src/types"

	"github.com/gin-gonic/gin"
)

// respondDomainError maps stable error codes onto HTTP statuses. Unknown
// errors are masked as 500s.
func respondDomainError(ctx *gin.Context, err error) {
	var verr *types.OrderValidationError
	if errors.As(err, &verr) {
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"violations": verr.Violations})
		return
	}
	var derr *types.DomainError
	if !errors.As(err, &derr) {
		log.Printf("Unexpected error: %s\n", err.Error())
		ctx.Status(http.StatusInternalServerError)
		return
	}
	status := http.StatusBadRequest
	switch derr.Code {
	case types.CODE_ORDER_NOT_FOUND, types.CODE_TICKET_NOT_FOUND, types.CODE_TICKET_TYPE_NOT_FOUND:
		status = http.StatusNotFound
	case types.CODE_OUT_OF_STOCK, types.CODE_INVALID_ORDER_STATE, types.CODE_INVALID_TICKET_STATE, types.CODE_ALREADY_RECONCILED:
		status = http.StatusConflict
	case types.CODE_OUTSIDE_SALES_WINDOW, types.CODE_PURCHASE_LIMIT_VIOLATION:
		status = http.StatusUnprocessableEntity
	}
	ctx.JSON(status, gin.H{"code": derr.Code, "error": derr.Message})
}

// ownsOrder reports whether the caller may act on the order. Organizers can
// operate on any order, customers only on their own.
func ownsOrder(ctx *gin.Context, order *models.Order) bool {
	if ctx.GetString("user_type") == string(types.USER_ORGANIZER) {
		return true
	}
	return order.UserID != nil && *order.UserID == ctx.GetUint("id")
}

func orderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/orders", func(ctx *gin.Context) {
			var body types.CreateOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userID := ctx.GetUint("id")
			order, err := common.CreateOrder(&body, &userID)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"order": order})
		}).
		GET("/orders/:number", func(ctx *gin.Context) {
			var params types.OrderNumberURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			order, err := common.GetOrderByNumber(params.OrderNumber)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			if !ownsOrder(ctx, order) {
				ctx.JSON(http.StatusNotFound, gin.H{"code": types.CODE_ORDER_NOT_FOUND, "error": "order not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"order": order})
		}).
		POST("/orders/:number/cancel", func(ctx *gin.Context) {
			var params types.OrderNumberURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			order, err := common.GetOrderByNumber(params.OrderNumber)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			if !ownsOrder(ctx, order) {
				ctx.JSON(http.StatusNotFound, gin.H{"code": types.CODE_ORDER_NOT_FOUND, "error": "order not found"})
				return
			}
			order, err = common.CancelOrder(params.OrderNumber)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"order": order})
		})
	return g
}

func myOrderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/me/orders", func(ctx *gin.Context) {
			userID := ctx.GetUint("id")
			database := db.GetDb()
			var orders []models.Order
			err := database.
				Preload("Items").
				Preload("Items.Tickets").
				Where("user_id = ?", userID).
				Order("created_at desc").
				Find(&orders).Error
			if err != nil {
				log.Printf("Error listing orders for user %d: %s\n", userID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"orders": orders})
		}).
		GET("/users/me", func(ctx *gin.Context) {
			database := db.GetDb()
			var user models.User
			if err := database.First(&user, ctx.GetUint("id")).Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"user": user})
		})
	return g
}
