package api

import (
	"net/http"
	"os"
	"path/filepath"

	"kvert/account-api/internal"
	"kvert/account-api/internal/model"
	"kvert/account-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// UserAvatar accepts a multipart image under the "avatar" field, squares
// it to 250x250 in the staging area, relocates it into permanent storage
// and points the caller's record at the new location
func UserAvatar(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	description := c.PostForm("description")

	fh, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":    "error",
			"code":      http.StatusBadRequest,
			"message":   validators.ErrNoFile.Error(),
			"requestID": requestID,
		})
		return
	}

	if status, err := validators.AvatarValidator(fh); err != nil {
		zap.L().Debug("Rejected avatar upload", zap.Error(err), zap.String("requestID", requestID))

		c.JSON(status, gin.H{
			"status":    "error",
			"code":      status,
			"message":   err.Error(),
			"requestID": requestID,
		})
		return
	}

	stagingDir := viper.GetString("storage.staging_dir")
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"code":      http.StatusInternalServerError,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create staging directory", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	staged := filepath.Join(stagingDir, filepath.Base(fh.Filename))
	if err := c.SaveUploadedFile(fh, staged); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"code":      http.StatusInternalServerError,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to stage avatar upload", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	loc, err := d.Avatars.Process(c.Request.Context(), staged, fh.Filename)
	if err != nil {
		os.Remove(staged)

		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"code":      http.StatusInternalServerError,
			"message":   "Failed to process avatar",
			"requestID": requestID,
		})

		zap.L().Error("Failed to process avatar", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = d.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("avatar_url", loc).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "error",
			"code":      http.StatusInternalServerError,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update avatar location", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"code":        http.StatusOK,
		"description": description,
		"data": gin.H{
			"avatarURL": loc,
		},
		"requestID": requestID,
	})
}
