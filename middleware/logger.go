package middleware

import (
	"time"

	"notesweb/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var skipLogPaths = map[string]bool{
	"/healthz":     true,
	"/metrics":     true,
	"/favicon.ico": true,
}

// RequestLogger writes one structured entry per request. The level follows
// the response status.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipLogPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		entry := utils.Logger.WithFields(logrus.Fields{
			"request_id":  c.GetString(RequestIDKey),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"query":       c.Request.URL.RawQuery,
			"status":      status,
			"size":        c.Writer.Size(),
			"duration_ms": elapsed.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"client":      utils.DescribeClient(c.Request.UserAgent()),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("error", c.Errors.String())
		}

		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}
