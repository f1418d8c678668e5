package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"station_chat/pkg/logger"
)

func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		status := c.Writer.Status()
		args := []any{
			"ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
		}
		if status >= 500 {
			log.Error("Request failed", args...)
			return
		}
		log.Debug("Request handled", args...)
	}
}
