package api

import (
	"net/http"

	"kvert/account-api/internal"

	"github.com/gin-gonic/gin"
)

// UserCurrent echoes back who the guard resolved the bearer token to.
// The token is returned unchanged, exactly as presented
func UserCurrent(c *gin.Context, _ *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	email := c.MustGet("userEmail").(string)
	token := c.MustGet("authToken").(string)

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"code":   http.StatusOK,
		"data": gin.H{
			"email": email,
			"token": token,
		},
		"requestID": requestID,
	})
}
