package mailer

import (
	"fmt"
	"log"
	"os"
	"strings"

	"tickethub/src/lib"
	"tickethub/src/models"
)

// SendOrderConfirmation delivers the post-payment confirmation mail with one
// line per issued ticket. Delivery failures are logged and swallowed, a lost
// mail must never unwind a completed payment.
func SendOrderConfirmation(order *models.Order, tickets []models.Ticket) {
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "no-reply@tickethub.io"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<p>Your order <strong>%s</strong> has been paid.</p>", order.OrderNumber))
	sb.WriteString("<ul>")
	for _, t := range tickets {
		sb.WriteString(fmt.Sprintf("<li>Ticket %s</li>", t.TicketNumber))
	}
	sb.WriteString("</ul>")
	sb.WriteString("<p>Present the attached codes at the venue entrance.</p>")

	input := &lib.SendMailInput{
		From:     from,
		FromName: "TicketHub",
		To:       []string{order.Email},
		Subject:  fmt.Sprintf("Order %s confirmed", order.OrderNumber),
		Body:     sb.String(),
		Html:     true,
	}
	if err := lib.SendMail(input); err != nil {
		log.Printf("Error sending confirmation for order %s: %s\n", order.OrderNumber, err.Error())
	}
}
