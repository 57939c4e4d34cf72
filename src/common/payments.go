package common

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"tickethub/src/db"
	"tickethub/src/lib/mailer"
	"tickethub/src/models"
	"tickethub/src/types"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

// InitiatePayment attaches a pending payment to a pending order. Calling it
// again for the same order returns the existing payment unchanged, so clients
// can safely retry. The stripe round trip happens before the order row is
// locked so a slow gateway never pins the lock.
func InitiatePayment(orderNumber string, params *types.InitiatePaymentRequestBody) (*models.Payment, error) {
	database := db.GetDb()
	var order models.Order
	err := database.Where("order_number = ?", orderNumber).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewDomainError(types.CODE_ORDER_NOT_FOUND, "order %s does not exist", orderNumber)
	}
	if err != nil {
		return nil, err
	}
	if order.Status != types.ORDER_PENDING {
		return nil, types.NewDomainError(types.CODE_INVALID_ORDER_STATE, "order %s is %s, payment can only be initiated on pending orders", orderNumber, order.Status)
	}

	var intent *stripe.PaymentIntent
	if params.Method == types.METHOD_CARD && os.Getenv("STRIPE_SECRET_KEY") != "" {
		ctx, cancel := context.WithTimeout(context.Background(), gatewayTimeout)
		defer cancel()
		intent, err = createStripeIntent(ctx, &order)
		if err != nil {
			return nil, err
		}
	}

	var payment models.Payment
	err = database.Transaction(func(tx *gorm.DB) error {
		err := db.ForUpdate(tx).Where("order_number = ?", orderNumber).First(&order).Error
		if err != nil {
			return err
		}
		if order.Status != types.ORDER_PENDING {
			return types.NewDomainError(types.CODE_INVALID_ORDER_STATE, "order %s is %s, payment can only be initiated on pending orders", orderNumber, order.Status)
		}

		err = tx.Where("order_id = ?", order.ID).First(&payment).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		phone := params.PhoneNumber
		if phone == "" {
			phone = order.PhoneNumber
		}
		payment = models.Payment{
			OrderID:     order.ID,
			Method:      params.Method,
			Status:      types.PAYMENT_PENDING,
			Amount:      order.TotalAmount,
			PhoneNumber: phone,
		}
		if intent != nil {
			payment.TransactionID = &intent.ID
			payment.GatewayData = &types.JSONB{"client_secret": intent.ClientSecret}
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// hundred converts major currency units to the cent amounts stripe expects.
var hundred = decimal.NewFromInt(100)

// gatewayTimeout bounds outbound calls to payment gateways.
const gatewayTimeout = 15 * time.Second

func createStripeIntent(ctx context.Context, order *models.Order) (*stripe.PaymentIntent, error) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(order.TotalAmount.Mul(hundred).IntPart()),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		Metadata: map[string]string{"order_number": order.OrderNumber},
	}
	return paymentintent.New(params)
}

// NormalizeCallback maps a raw gateway payload onto the common callback
// shape. Stripe events arrive through the signed webhook instead and never
// pass through here.
func NormalizeCallback(gateway string, body []byte) (*types.PaymentCallback, error) {
	if !gjson.ValidBytes(body) {
		return nil, types.NewDomainError(types.CODE_MALFORMED_CALLBACK, "payload is not valid JSON")
	}
	raw := types.JSONB{}
	if err := raw.Scan(body); err != nil {
		return nil, types.NewDomainError(types.CODE_MALFORMED_CALLBACK, "payload is not a JSON object")
	}

	cb := &types.PaymentCallback{Raw: raw}
	switch gateway {
	case string(types.METHOD_MPESA):
		cb.OrderRef = gjson.GetBytes(body, "account_reference").String()
		cb.TransactionID = gjson.GetBytes(body, "checkout_request_id").String()
		cb.ReceiptNumber = gjson.GetBytes(body, "mpesa_receipt_number").String()
		cb.Phone = gjson.GetBytes(body, "phone_number").String()
		code := gjson.GetBytes(body, "result_code")
		if !code.Exists() {
			return nil, types.NewDomainError(types.CODE_MALFORMED_CALLBACK, "mpesa payload missing result_code")
		}
		if code.Int() == 0 {
			cb.Outcome = types.CallbackOutcomeSuccess
		} else {
			cb.Outcome = "failed"
		}
	case string(types.METHOD_PAYPAL):
		cb.OrderRef = gjson.GetBytes(body, "resource.custom_id").String()
		cb.TransactionID = gjson.GetBytes(body, "resource.id").String()
		eventType := gjson.GetBytes(body, "event_type")
		if !eventType.Exists() {
			return nil, types.NewDomainError(types.CODE_MALFORMED_CALLBACK, "paypal payload missing event_type")
		}
		if eventType.String() == "PAYMENT.CAPTURE.COMPLETED" {
			cb.Outcome = types.CallbackOutcomeSuccess
		} else {
			cb.Outcome = "failed"
		}
	default:
		return nil, types.NewDomainError(types.CODE_MALFORMED_CALLBACK, "unknown gateway %q", gateway)
	}
	if cb.OrderRef == "" {
		return nil, types.NewDomainError(types.CODE_MALFORMED_CALLBACK, "payload has no order reference")
	}
	return cb, nil
}

// ReconcilePayment applies a normalized gateway callback to the order it
// references. The order row is locked for the whole transition, replays of an
// already-applied outcome are no-ops, and a conflicting outcome after a
// terminal state is rejected without changing any state. The raw payload is
// recorded on every delivery, including replays and rejected ones.
func ReconcilePayment(cb *types.PaymentCallback) (*models.Payment, error) {
	var payment models.Payment
	var order models.Order
	var paidTickets []models.Ticket
	var stateErr *types.DomainError
	database := db.GetDb()
	err := database.Transaction(func(tx *gorm.DB) error {
		err := db.ForUpdate(tx).Where("order_number = ?", cb.OrderRef).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NewDomainError(types.CODE_ORDER_NOT_FOUND, "order %s does not exist", cb.OrderRef)
		}
		if err != nil {
			return err
		}

		err = tx.Where("order_id = ?", order.ID).First(&payment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			payment = models.Payment{
				OrderID:     order.ID,
				Method:      order.PaymentMethod,
				Status:      types.PAYMENT_PENDING,
				Amount:      order.TotalAmount,
				PhoneNumber: cb.Phone,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		// Audit trail first: the payload survives even when the callback is
		// rejected below, so a rejection returns nil here and surfaces as
		// stateErr after the commit.
		payment.GatewayData = &cb.Raw
		if err := tx.Model(&payment).Update("gateway_data", &cb.Raw).Error; err != nil {
			return err
		}

		success := cb.Outcome == types.CallbackOutcomeSuccess
		switch payment.Status {
		case types.PAYMENT_COMPLETED:
			if success {
				return nil
			}
			stateErr = types.NewDomainError(types.CODE_ALREADY_RECONCILED, "order %s already reconciled as completed", cb.OrderRef)
			return nil
		case types.PAYMENT_FAILED:
			if !success {
				return nil
			}
			stateErr = types.NewDomainError(types.CODE_ALREADY_RECONCILED, "order %s already reconciled as failed", cb.OrderRef)
			return nil
		case types.PAYMENT_REFUNDED:
			stateErr = types.NewDomainError(types.CODE_ALREADY_RECONCILED, "order %s has been refunded", cb.OrderRef)
			return nil
		}
		if order.Status != types.ORDER_PENDING {
			stateErr = types.NewDomainError(types.CODE_INVALID_ORDER_STATE, "order %s is %s and cannot be reconciled", cb.OrderRef, order.Status)
			return nil
		}

		updates := map[string]any{}
		if cb.TransactionID != "" {
			updates["transaction_id"] = cb.TransactionID
		}
		if cb.ReceiptNumber != "" {
			updates["receipt_number"] = cb.ReceiptNumber
		}
		if success {
			now := time.Now()
			updates["status"] = types.PAYMENT_COMPLETED
			updates["completed_at"] = now
			payment.Status = types.PAYMENT_COMPLETED
			payment.CompletedAt = &now
			if err := tx.Model(&payment).Updates(updates).Error; err != nil {
				return err
			}
			order.Status = types.ORDER_PAID
			order.PaidAt = &now
			orderUpdates := map[string]any{
				"status":  types.ORDER_PAID,
				"paid_at": now,
			}
			if cb.TransactionID != "" {
				order.TransactionID = &cb.TransactionID
				orderUpdates["transaction_id"] = cb.TransactionID
			}
			if err := tx.Model(&order).Updates(orderUpdates).Error; err != nil {
				return err
			}
			tickets, err := TicketsForOrder(tx, order.ID)
			if err != nil {
				return err
			}
			paidTickets = tickets
			return nil
		}
		updates["status"] = types.PAYMENT_FAILED
		payment.Status = types.PAYMENT_FAILED
		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return err
		}
		return voidOrder(tx, &order, types.ORDER_CANCELLED)
	})
	if err != nil {
		return nil, err
	}
	if stateErr != nil {
		return nil, stateErr
	}
	if payment.Status == types.PAYMENT_COMPLETED && len(paidTickets) > 0 && order.Status == types.ORDER_PAID {
		go mailer.SendOrderConfirmation(&order, paidTickets)
	}
	log.Printf("Reconciled order %s: payment is %s\n", cb.OrderRef, payment.Status)
	return &payment, nil
}

// RefundPayment reverses a paid order, returning its units to the pool and
// cancelling its tickets.
func RefundPayment(orderNumber string) (*models.Payment, error) {
	var payment models.Payment
	database := db.GetDb()
	err := database.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := db.ForUpdate(tx).Where("order_number = ?", orderNumber).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NewDomainError(types.CODE_ORDER_NOT_FOUND, "order %s does not exist", orderNumber)
		}
		if err != nil {
			return err
		}
		if order.Status != types.ORDER_PAID {
			return types.NewDomainError(types.CODE_INVALID_ORDER_STATE, "order %s is %s, only paid orders can be refunded", orderNumber, order.Status)
		}
		if err := tx.Where("order_id = ?", order.ID).First(&payment).Error; err != nil {
			return err
		}
		if payment.Method == types.METHOD_CARD && payment.TransactionID != nil && os.Getenv("STRIPE_SECRET_KEY") != "" {
			stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
			ctx, cancel := context.WithTimeout(context.Background(), gatewayTimeout)
			defer cancel()
			_, err := refund.New(&stripe.RefundParams{
				Params:        stripe.Params{Context: ctx},
				PaymentIntent: payment.TransactionID,
			})
			if err != nil {
				return err
			}
		}
		payment.Status = types.PAYMENT_REFUNDED
		if err := tx.Model(&payment).Update("status", types.PAYMENT_REFUNDED).Error; err != nil {
			return err
		}
		return voidOrder(tx, &order, types.ORDER_REFUNDED)
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
