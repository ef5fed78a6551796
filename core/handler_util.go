package core

import "github.com/gin-gonic/gin"

// respondError writes the JSON error envelope {"error": {"code", "message"}}
// shared by every handler. The login token body and the policy gate's 401
// are plaintext and bypass this envelope.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}
