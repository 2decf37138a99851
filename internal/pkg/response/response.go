package response

import "github.com/gin-gonic/gin"

// Envelope shared by every endpoint: {"success":true,"data":...} on the happy
// path, {"success":false,"error":{"code","message"}} otherwise.

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// AbortError writes the error envelope and stops the handler chain. Used by
// middleware; handlers call Error and return instead.
func AbortError(c *gin.Context, statusCode int, code string, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
