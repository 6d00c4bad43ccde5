package middleware

import "github.com/gin-gonic/gin"

// NoStore marks responses as uncacheable. Every page reflects the notes
// service at the moment of the request.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
