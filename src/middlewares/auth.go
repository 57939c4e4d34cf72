package middlewares

import (
	"log"
	"net/http"
	"os"
	"strings"

	"tickethub/src/db"
	"tickethub/src/models"
	"tickethub/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	database := db.GetDb()
	var user models.User
	err = database.
		Model(&models.User{}).
		Where("email = ?", claims.Email).
		First(&user).
		Error
	if err != nil || !user.Active {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ctx.Set("id", user.ID)
	ctx.Set("email", user.Email)
	ctx.Set("user_type", string(user.UserType))
}

// OrganizerOnly guards routes that mutate events, inventory, or payments.
// Runs after AuthMiddleware.
func OrganizerOnly(ctx *gin.Context) {
	if ctx.GetString("user_type") != string(types.USER_ORGANIZER) {
		ctx.AbortWithStatus(http.StatusForbidden)
		return
	}
}
