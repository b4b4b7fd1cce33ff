package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"schoolauth/internal/pkg/response"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// RequestLogger logs every request, recovers from panics and logs 5xx
// responses with the handler errors attached to the context.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rlog := logger.With(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"client_ip", c.ClientIP(),
			"request_id", requestid.Get(c),
		)

		defer func() {
			if recovered := recover(); recovered != nil {
				rlog.Error("panic",
					"error", fmt.Sprintf("%v", recovered),
					"stack", string(debug.Stack()),
					"latency", time.Since(start),
				)
				response.Abort(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
				return
			}

			attrs := []any{
				"status", c.Writer.Status(),
				"latency", time.Since(start),
				"user_id", c.GetInt64(UserIDKey),
			}
			for _, err := range c.Errors {
				attrs = append(attrs, "error", err.Error())
			}

			if c.Writer.Status() >= http.StatusInternalServerError {
				rlog.Error("request failed", attrs...)
				return
			}
			rlog.Info("request completed", attrs...)
		}()

		c.Next()
	}
}
