package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skill_swap/pkg/errors"
	"skill_swap/pkg/logger"
)

// ErrorHandler рендерит последнюю ошибку из c.Errors. 5xx пишутся в лог, клиент получает
// только общее сообщение.
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		apiErr := errors.FromError(err)
		if apiErr.Code >= http.StatusInternalServerError {
			log.Error("Request failed",
				"error", err,
				"method", c.Request.Method,
				"path", c.FullPath(),
				"request_id", c.GetString(RequestIDKey),
			)
		}

		if !c.Writer.Written() {
			c.JSON(apiErr.Code, apiErr)
		}
	}
}
