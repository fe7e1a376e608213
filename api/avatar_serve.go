package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

// AvatarServe returns a stored avatar straight from the local avatar
// directory. Only registered when the local storage backend is active,
// S3 serves its objects itself
func AvatarServe(c *gin.Context) {
	name := c.Param("file")

	// Reject anything that isn't a plain file name
	if name == "" || name != filepath.Base(name) {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"code":    http.StatusBadRequest,
			"message": "Invalid file name",
		})
		return
	}

	path := filepath.Join(viper.GetString("storage.avatar_dir"), name)

	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"code":    http.StatusNotFound,
			"message": "File not found",
		})
		return
	}

	c.File(path)
}
