package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/harekrishna1602/anvesha-2.0/logging"
)

// RequestIDHeader is echoed back on every response
const RequestIDHeader = "X-Request-ID"

// RequestLogger attaches a request-scoped logger to the request context and
// logs one line per completed request
func RequestLogger(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)

		l := base.With(
			"request_id", rid,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"remote_ip", c.ClientIP(),
		)
		c.Request = c.Request.WithContext(logging.IntoContext(c.Request.Context(), l))

		start := time.Now()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()

		if userID, err := GetUserID(c); err == nil {
			l = l.With("user_id", userID)
		}

		switch {
		case status >= 500:
			l.Error("request completed", "status", status, "duration_ms", dur.Milliseconds(), "errors", c.Errors.String())
		case status >= 400:
			l.Warn("request completed", "status", status, "duration_ms", dur.Milliseconds())
		default:
			l.Info("request completed", "status", status, "duration_ms", dur.Milliseconds(), "bytes", c.Writer.Size())
		}
	}
}
