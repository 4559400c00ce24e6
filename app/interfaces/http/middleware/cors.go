package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"square.ai/skill-gateway/config/environment_variables"
)

const corsAllowHeaders = "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID, Mcp-Session-Id"

// CORS answers preflight requests and echoes the origin when it is listed in
// ALLOWED_CORS_HOSTS. A "*" entry allows every origin without credentials.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		allowed := environment_variables.EnvironmentVariables.ALLOWED_CORS_HOSTS
		switch {
		case origin == "":
		case slices.Contains(allowed, origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Vary", "Origin")
			setCORSHeaders(c)
		case slices.Contains(allowed, "*"):
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			setCORSHeaders(c)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func setCORSHeaders(c *gin.Context) {
	c.Writer.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
	c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
	c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-Cache")
}
