package middleware

import (
	"errors"
	"net/http"
	"strings"

	"kvert/account-api/internal/model"
	"kvert/account-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewAuthMiddleware returns the bearer guard placed in front of every
// protected route. It verifies the token's signature and expiry, resolves
// it to a user and requires the presented token to match the one stored
// on the record, so logout (or a newer login) kills old tokens even
// before their embedded expiry
func NewAuthMiddleware(d *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":    "error",
				"code":      http.StatusUnauthorized,
				"message":   "Unauthorized access",
				"requestID": requestID,
			})
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")

		userID, err := security.ParseSessionToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":    "error",
				"code":      http.StatusUnauthorized,
				"message":   "Unauthorized access",
				"requestID": requestID,
			})

			zap.L().Debug("Rejected session token", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		var user model.User
		err = d.Where("id = ?", userID).First(&user).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				zap.L().Error("Failed to resolve token owner", zap.Error(err), zap.String("requestID", requestID))
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":    "error",
				"code":      http.StatusUnauthorized,
				"message":   "Unauthorized access",
				"requestID": requestID,
			})
			return
		}

		if user.Token == "" || user.Token != tokenStr {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":    "error",
				"code":      http.StatusUnauthorized,
				"message":   "Unauthorized access",
				"requestID": requestID,
			})
			return
		}

		c.Set("userID", user.ID)
		c.Set("userEmail", user.Email)
		c.Set("authToken", tokenStr)
		c.Next()
	}
}
