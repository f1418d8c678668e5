package middleware

import (
	"github.com/gin-gonic/gin"
	"station_chat/pkg/errors"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last()
		c.JSON(errors.HTTPStatusFromError(err.Err), gin.H{
			"error": err.Error(),
		})
	}
}
