package utils

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"
	"time"

	"tickethub/src/config"
	"tickethub/src/types"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// NewOrderNumber returns a customer-facing order reference. The digits come
// from crypto/rand so references are not guessable or enumerable, and the
// keyspace is wide enough that a unique-index violation on insert is treated
// as a hard error rather than retried.
func NewOrderNumber() string {
	var sb strings.Builder
	sb.WriteString("TH")
	for range 16 {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			log.Fatalf("Error reading random digits: %s\n", err.Error())
		}
		sb.WriteString(n.String())
	}
	return sb.String()
}

// NewTicketNumber returns a 32-character uppercase hex identifier derived
// from a v4 UUID.
func NewTicketNumber() string {
	id := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
}

// NewCodePayload builds the string encoded into a ticket's scannable code.
func NewCodePayload(ticketNumber string) string {
	return fmt.Sprintf("%s%s", config.CodePrefix, ticketNumber)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func CheckPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func GenerateJWT(email string, userType types.UserType) (string, error) {
	claims := types.Claims{
		Email: email,
		Type:  userType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tickethub",
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func ParseJWT(tokenString string) (*types.Claims, error) {
	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// ParseEventTime parses the wire format used by event and sales-window
// fields, normalizing seconds away.
func ParseEventTime(value string) (time.Time, error) {
	t, err := time.Parse(config.TIME_PARSE_FORMAT, value)
	if err != nil {
		return time.Time{}, err
	}
	t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
	return t, nil
}
