package logger

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// CtxUserIDKey は auth.RequireAuth が詰める値と同じキー
const CtxUserIDKey = "user_id"

// Middleware logs one line per request; 5xx at error, 4xx at warn.
func Middleware(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if userID, ok := c.Get(CtxUserIDKey); ok {
			args = append(args, "user_id", userID)
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			log.Error("request completed with server error", args...)
		case status >= 400:
			log.Warn("request completed with client error", args...)
		default:
			log.Info("request completed", args...)
		}
	}
}
