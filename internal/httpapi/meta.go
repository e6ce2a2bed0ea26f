package httpapi

import "github.com/gin-gonic/gin"

// API metadata advertised to clients.
const (
	APITitle   = "DSA Problem Tracker API"
	APIVersion = "1.0.0"

	headerAPIVersion = "X-Api-Version"
)

func VersionHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set(headerAPIVersion, APIVersion)
		c.Next()
	}
}
