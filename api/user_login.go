package api

import (
	"net/http"

	"kvert/account-api/internal"
	"kvert/account-api/internal/model"
	"kvert/account-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":    "error",
			"code":      http.StatusBadRequest,
			"message":   "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":    "error",
			"code":      http.StatusBadRequest,
			"message":   "Email field can't be empty",
			"requestID": requestID,
		})
		return
	}

	if data.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":    "error",
			"code":      http.StatusBadRequest,
			"message":   "Password field can't be empty",
			"requestID": requestID,
		})
		return
	}

	var user model.User

	if err := d.DB.Where("email = ?", data.Email).First(&user).Error; err != nil {
		if !isNotFound(err) {
			zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		}

		// Unknown email reads exactly like a wrong password so the
		// endpoint can't be used to probe which emails are registered
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":    "error",
			"code":      http.StatusUnauthorized,
			"message":   "Email or password is wrong",
			"requestID": requestID,
		})
		return
	}

	if !user.Verified {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":    "error",
			"code":      http.StatusUnauthorized,
			"message":   "User is not verified",
			"requestID": requestID,
		})
		return
	}

	ok, err := d.Argon.VerifyPasswd(data.Password, user.PasswordHash)
	if err != nil {
		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
	}
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"status":    "error",
			"code":      http.StatusUnauthorized,
			"message":   "Email or password is wrong",
			"requestID": requestID,
		})
		return
	}

	token, err := security.MintSessionToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"code":      http.StatusInternalServerError,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to mint session token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = d.DB.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("token", token).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"code":      http.StatusInternalServerError,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to persist session token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Header("Authorization", token)
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"code":    http.StatusOK,
		"message": "Login successful",
		"user": gin.H{
			"email":     user.Email,
			"token":     token,
			"avatarURL": user.AvatarURL,
		},
		"requestID": requestID,
	})
}
