package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		b = []byte(s)
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type UserType string

const (
	USER_CUSTOMER  UserType = "customer"
	USER_ORGANIZER UserType = "organizer"
)

type EventStatus string

const (
	EVENT_DRAFT     EventStatus = "draft"
	EVENT_PUBLISHED EventStatus = "published"
	EVENT_CANCELLED EventStatus = "cancelled"
	EVENT_COMPLETED EventStatus = "completed"
)

type OrderStatus string

const (
	ORDER_PENDING   OrderStatus = "pending"
	ORDER_PAID      OrderStatus = "paid"
	ORDER_CANCELLED OrderStatus = "cancelled"
	ORDER_REFUNDED  OrderStatus = "refunded"
)

type TicketStatus string

const (
	TICKET_VALID     TicketStatus = "valid"
	TICKET_USED      TicketStatus = "used"
	TICKET_CANCELLED TicketStatus = "cancelled"
)

type PaymentStatus string

const (
	PAYMENT_PENDING    PaymentStatus = "pending"
	PAYMENT_PROCESSING PaymentStatus = "processing"
	PAYMENT_COMPLETED  PaymentStatus = "completed"
	PAYMENT_FAILED     PaymentStatus = "failed"
	PAYMENT_REFUNDED   PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	METHOD_MPESA  PaymentMethod = "mpesa"
	METHOD_CARD   PaymentMethod = "card"
	METHOD_PAYPAL PaymentMethod = "paypal"
)

// CallbackOutcomeSuccess is the normalized success outcome shared by every
// gateway adapter. Anything else is treated as a failure.
const CallbackOutcomeSuccess = "success"

// PaymentCallback is the reconciler-facing shape every gateway payload is
// normalized into before any state is touched.
type PaymentCallback struct {
	OrderRef      string `json:"order_number"`
	Outcome       string `json:"status"`
	TransactionID string `json:"transaction_id"`
	ReceiptNumber string `json:"receipt_number,omitempty"`
	Phone         string `json:"phone_number,omitempty"`
	Raw           JSONB  `json:"-"`
}

type Claims struct {
	Email string   `json:"email"`
	Type  UserType `json:"type"`
	jwt.RegisteredClaims
}

type RegisterUserRequestBody struct {
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=8"`
	Phone    string   `json:"phone,omitempty"`
	UserType UserType `json:"user_type,omitempty"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequestBody struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type CreateCategoryRequestBody struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}

type CreateEventRequestBody struct {
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description" binding:"required"`
	CategoryID   *uint   `json:"category_id,omitempty"`
	StartDate    string  `json:"start_date" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	EndDate      string  `json:"end_date" binding:"required,gtdate=StartDate" time_format:"2006-01-02 15:04:05 -07:00"`
	VenueName    string  `json:"venue_name" binding:"required"`
	VenueAddress string  `json:"venue_address,omitempty"`
	City         string  `json:"city" binding:"required"`
	Country      string  `json:"country,omitempty"`
	Publish      bool    `json:"publish,omitempty"`
	Featured     bool    `json:"featured,omitempty"`
	BannerURL    *string `json:"banner_url,omitempty"`
}

type CreateTicketTypeRequestBody struct {
	EventID     uint            `json:"event" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Quantity    uint            `json:"quantity" binding:"required"`
	SalesStart  *string         `json:"sales_start,omitempty" binding:"omitempty" time_format:"2006-01-02 15:04:05 -07:00"`
	SalesEnd    *string         `json:"sales_end,omitempty" binding:"omitempty,gtdate=SalesStart" time_format:"2006-01-02 15:04:05 -07:00"`
	MinPurchase uint            `json:"min_purchase,omitempty"`
	MaxPurchase uint            `json:"max_purchase,omitempty"`
}

type OrderLineRequest struct {
	TicketTypeID uint `json:"ticket_type_id" binding:"required"`
	Quantity     uint `json:"quantity" binding:"required"`
}

type CreateOrderRequestBody struct {
	EventID       uint               `json:"event_id" binding:"required"`
	Items         []OrderLineRequest `json:"items" binding:"required"`
	AttendeeName  string             `json:"attendee_name,omitempty"`
	Email         string             `json:"email" binding:"required,email"`
	PhoneNumber   string             `json:"phone_number" binding:"required"`
	PaymentMethod PaymentMethod      `json:"payment_method,omitempty"`
}

type InitiatePaymentRequestBody struct {
	Method      PaymentMethod `json:"payment_method" binding:"required"`
	PhoneNumber string        `json:"phone_number,omitempty"`
}

type OrderNumberURIParams struct {
	OrderNumber string `uri:"number" binding:"required"`
}

type TicketNumberURIParams struct {
	TicketNumber string `uri:"number" binding:"required"`
}
