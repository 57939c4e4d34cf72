package middlewares

import (
	"github.com/gin-gonic/gin"
)

func SecureHeaders(ctx *gin.Context) {
	ctx.Header("X-Frame-Options", "DENY")
	ctx.Header("X-Content-Type-Options", "nosniff")
	ctx.Header("X-XSS-Protection", "1; mode=block")
	ctx.Header("Referrer-Policy", "strict-origin")
	ctx.Next()
}
