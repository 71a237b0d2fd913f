package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminTokenHeader carries the plaintext admin token.
const AdminTokenHeader = "X-Admin-Token"

// AdminRequired guards destructive routes with a bcrypt-hashed token. With no
// hash configured the routes are closed.
func AdminRequired(log *zap.Logger, tokenHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(AdminTokenHeader)
		if tokenHash == "" || token == "" ||
			bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)) != nil {
			log.Warn("Rejected admin request",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"error":     "Unauthorized",
				"timestamp": time.Now().UTC(),
			})
			return
		}
		c.Next()
	}
}
