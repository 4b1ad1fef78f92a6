package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/cashfree/logger"
	"github.com/sirupsen/logrus"
)

// GinLogger writes one access line per request through the shared loggers.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.ErrorLogger.WithFields(fields).Error("request failed")
		case c.Writer.Status() >= 400:
			logger.WarnLogger.WithFields(fields).Warn("request rejected")
		default:
			logger.InfoLogger.WithFields(fields).Info("request served")
		}
	}
}
