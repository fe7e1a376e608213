package api

import (
	"net/http"

	"kvert/account-api/internal"
	"kvert/account-api/internal/model"
	"kvert/account-api/internal/service"
	"kvert/account-api/pkg/util"
	"kvert/account-api/pkg/validators"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

type registerBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func UserRegister(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
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

	if err := validators.EmailValidator(data.Email); err != nil {
		zap.L().Debug("Invalid email", zap.Error(err), zap.String("requestID", requestID))

		c.JSON(http.StatusBadRequest, gin.H{
			"status":    "error",
			"code":      http.StatusBadRequest,
			"message":   err.Error(),
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		zap.L().Debug("Invalid password", zap.Error(err), zap.String("requestID", requestID))

		c.JSON(http.StatusBadRequest, gin.H{
			"status":    "error",
			"code":      http.StatusBadRequest,
			"message":   err.Error(),
			"requestID": requestID,
		})
		return
	}

	var found bool

	r := d.DB.Model(model.User{}).
		Select("count(*) > 0").
		Where("email = ?", data.Email).
		First(&found)
	if r.Error != nil && r.Error != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"code":      http.StatusInternalServerError,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if user is registered", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if found {
		c.JSON(http.StatusConflict, gin.H{
			"status":    "error",
			"code":      http.StatusConflict,
			"message":   "Email is already in use",
			"requestID": requestID,
		})
		return
	}

	hash, err := d.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"code":      http.StatusInternalServerError,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	userID, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"code":      http.StatusInternalServerError,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate user ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// One fresh token per record, never shared between registrations
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

	if err := d.DB.Create(&model.User{
		ID:                userID,
		Email:             data.Email,
		PasswordHash:      hash,
		AvatarURL:         util.GravatarURL(data.Email),
		VerificationToken: verifToken,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"code":      http.StatusInternalServerError,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// The record is in, mail is best-effort from here on
	d.Mail.Enqueue(&service.MailJob{
		To:        data.Email,
		Token:     verifToken,
		RequestID: requestID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"code":    http.StatusCreated,
		"message": "Registration successful",
		"user": gin.H{
			"email":             data.Email,
			"id":                userID,
			"verificationToken": verifToken,
		},
		"requestID": requestID,
	})
}
