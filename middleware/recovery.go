package middleware

import (
	"notesweb/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// EnhancedRecoveryMiddleware turns a handler panic into a 500 and logs it
// with the request id.
func EnhancedRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				utils.Logger.WithFields(logrus.Fields{
					"request_id": c.GetString(RequestIDKey),
					"method":     c.Request.Method,
					"path":       c.Request.URL.Path,
					"panic":      err,
				}).Error("recovered from panic")
				TrackError("panic")
				utils.InternalError(c, "Internal server error")
			}
		}()
		c.Next()
	}
}
