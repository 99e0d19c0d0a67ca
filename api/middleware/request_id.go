package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/customeros/mailadmin/internal/utils"
)

const HeaderRequestId = "X-Request-Id"

// RequestIdMiddleware reuses the caller's request id or generates one, and
// echoes it on the response.
func RequestIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(HeaderRequestId)
		if requestId == "" {
			requestId = uuid.New().String()
		}
		c.Set(utils.GinKeyRequestId, requestId)
		c.Header(HeaderRequestId, requestId)
		c.Next()
	}
}
