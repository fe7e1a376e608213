package api

import (
	"net/http"

	"kvert/account-api/internal"
	"kvert/account-api/internal/model"
	"kvert/account-api/internal/service"
	"kvert/account-api/pkg/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserVerify consumes a verification token from the mailed link. The token
// value stays on the record after consumption so clicking the link twice
// reads "already verified" instead of a confusing not-found
func UserVerify(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	token := c.Param("token")

	var user model.User

	err := d.DB.Where("verification_token = ?", token).First(&user).Error
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":    "error",
				"code":      http.StatusNotFound,
				"message":   "User not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"code":      http.StatusInternalServerError,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up verification token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if user.Verified {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":    "error",
			"code":      http.StatusBadRequest,
			"message":   "Verification has already been passed",
			"requestID": requestID,
		})
		return
	}

	err = d.DB.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("verified", true).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"code":      http.StatusInternalServerError,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to mark user verified", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"code":      http.StatusOK,
		"message":   "Verification successful",
		"requestID": requestID,
	})
}

type resendBody struct {
	Email string `json:"email"`
}

// UserVerifyResend regenerates the verification token for an unverified
// account and mails the link again
func UserVerifyResend(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data resendBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":    "error",
			"code":      http.StatusBadRequest,
			"message":   "missing required field email",
			"requestID": requestID,
		})
		return
	}

	var user model.User

	err := d.DB.Where("email = ?", data.Email).First(&user).Error
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":    "error",
				"code":      http.StatusNotFound,
				"message":   "User not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"code":      http.StatusInternalServerError,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if user.Verified {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":    "error",
			"code":      http.StatusBadRequest,
			"message":   "Verification has already been passed",
			"requestID": requestID,
		})
		return
	}

	verifToken, err := util.GenerateToken(16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"code":      http.StatusInternalServerError,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate verification token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = d.DB.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("verification_token", verifToken).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"code":      http.StatusInternalServerError,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to rotate verification token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	d.Mail.Enqueue(&service.MailJob{
		To:        user.Email,
		Token:     verifToken,
		RequestID: requestID,
	})

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"code":      http.StatusOK,
		"message":   "Verification email sent",
		"requestID": requestID,
	})
}
