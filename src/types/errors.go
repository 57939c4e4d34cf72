package types

import (
	"fmt"
	"strings"
)

type ErrorCode string

const (
	CODE_EMPTY_CART               ErrorCode = "EMPTY_CART"
	CODE_OUT_OF_STOCK             ErrorCode = "OUT_OF_STOCK"
	CODE_PURCHASE_LIMIT_VIOLATION ErrorCode = "PURCHASE_LIMIT_VIOLATION"
	CODE_OUTSIDE_SALES_WINDOW     ErrorCode = "OUTSIDE_SALES_WINDOW"
	CODE_TICKET_TYPE_NOT_FOUND    ErrorCode = "TICKET_TYPE_NOT_FOUND"
	CODE_ORDER_NOT_FOUND          ErrorCode = "ORDER_NOT_FOUND"
	CODE_TICKET_NOT_FOUND         ErrorCode = "TICKET_NOT_FOUND"
	CODE_INVALID_ORDER_STATE      ErrorCode = "INVALID_ORDER_STATE"
	CODE_INVALID_TICKET_STATE     ErrorCode = "INVALID_TICKET_STATE"
	CODE_ALREADY_RECONCILED       ErrorCode = "ALREADY_RECONCILED"
	CODE_MALFORMED_CALLBACK       ErrorCode = "MALFORMED_CALLBACK"
)

// DomainError carries a stable machine-readable code alongside the message so
// handlers can map failures to HTTP statuses without string matching.
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewDomainError(code ErrorCode, format string, args ...any) *DomainError {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// LineViolation pins a validation failure to the cart line that caused it.
type LineViolation struct {
	TicketTypeID uint      `json:"ticket_type_id"`
	Code         ErrorCode `json:"code"`
	Message      string    `json:"message"`
}

// OrderValidationError aggregates every violation found in a cart so callers
// see the full picture in one response instead of fixing lines one at a time.
type OrderValidationError struct {
	Violations []LineViolation `json:"violations"`
}

func (e *OrderValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, fmt.Sprintf("[%s] ticket_type=%d: %s", v.Code, v.TicketTypeID, v.Message))
	}
	return strings.Join(msgs, "; ")
}

func (e *OrderValidationError) Add(ticketTypeID uint, code ErrorCode, format string, args ...any) {
	e.Violations = append(e.Violations, LineViolation{
		TicketTypeID: ticketTypeID,
		Code:         code,
		Message:      fmt.Sprintf(format, args...),
	})
}

func (e *OrderValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}
