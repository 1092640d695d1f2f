package server

import "github.com/gin-gonic/gin"

// abortError stops the handler chain with a JSON error envelope. Failed
// edits must be visible to the caller, never silently ignored.
func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
