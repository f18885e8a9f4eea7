// utils/response.go
package utils

import (
	"github.com/gin-gonic/gin"
)

// All responses share the envelope {ok, data?, error?}.

func Respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"ok": true, "data": data})
}

func RespondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"ok": false, "error": message})
}
