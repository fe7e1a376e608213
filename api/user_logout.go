package api

import (
	"net/http"

	"kvert/account-api/internal"
	"kvert/account-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func UserLogout(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var user model.User
	if err := d.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if !isNotFound(err) {
			zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		}

		c.JSON(http.StatusUnauthorized, gin.H{
			"status":    "error",
			"code":      http.StatusUnauthorized,
			"message":   "Unauthorized access",
			"requestID": requestID,
		})
		return
	}

	err := d.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("token", "").
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"code":      http.StatusInternalServerError,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to clear session token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Status(http.StatusNoContent)
}
