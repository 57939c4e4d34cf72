package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"

	"tickethub/src/common"
	"tickethub/src/types"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

func paymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/orders/:number/payments", func(ctx *gin.Context) {
			var params types.OrderNumberURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.InitiatePaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
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
			payment, err := common.InitiatePayment(params.OrderNumber, &body)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"payment": payment})
		})
	return g
}

func refundHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/orders/:number/refund", func(ctx *gin.Context) {
			var params types.OrderNumberURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			payment, err := common.RefundPayment(params.OrderNumber)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"payment": payment})
		})
	return g
}

// paymentWebhookRoute receives mpesa and paypal confirmations. The payload is
// normalized first, then handed to the reconciler, so replays always resolve
// the same way.
func paymentWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/payments/:gateway", func(ctx *gin.Context) {
		var params struct {
			Gateway string `uri:"gateway" binding:"required"`
		}
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.Status(http.StatusBadRequest)
			return
		}
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		cb, err := common.NormalizeCallback(params.Gateway, payload)
		if err != nil {
			respondDomainError(ctx, err)
			return
		}
		payment, err := common.ReconcilePayment(cb)
		if err != nil {
			respondDomainError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": payment.Status})
	})
	return apiv1
}

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "payment_intent.succeeded", "payment_intent.payment_failed":
			var intent stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			orderNumber := intent.Metadata["order_number"]
			if orderNumber == "" {
				log.Printf("[Stripe] PaymentIntent %s carries no order reference\n", intent.ID)
				ctx.Status(http.StatusBadRequest)
				return
			}
			raw := types.JSONB{}
			if err := raw.Scan([]byte(event.Data.Raw)); err != nil {
				log.Printf("[Stripe] Error capturing raw payload: %s\n", err.Error())
			}
			outcome := "failed"
			if event.Type == "payment_intent.succeeded" {
				outcome = types.CallbackOutcomeSuccess
			}
			cb := &types.PaymentCallback{
				OrderRef:      orderNumber,
				Outcome:       outcome,
				TransactionID: intent.ID,
				Raw:           raw,
			}
			if _, err := common.ReconcilePayment(cb); err != nil {
				respondDomainError(ctx, err)
				return
			}
		}
		ctx.Status(http.StatusOK)
	})
	return apiv1
}
