package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// actorHeader carries the acting user's id. Authentication is handled upstream
// of this service; the gateway injects the verified id here.
const actorHeader = "X-Actor-ID"

// RequireActor rejects requests that arrive without an acting user id.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(actorHeader) == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + actorHeader + " header"})
			return
		}
		c.Next()
	}
}

// GetActorID returns the acting user id from the request headers.
func GetActorID(c *gin.Context) string {
	return c.GetHeader(actorHeader)
}
