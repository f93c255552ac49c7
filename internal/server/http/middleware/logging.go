package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/procuremart/internal/domain/model"
)

// RequestLogger logs information about incoming requests using slog.
// Server errors are logged at error level with the errors handlers attached.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", latency),
		}
		if actor, ok := c.Get(ActorContextKey); ok {
			if a, ok := actor.(model.Actor); ok {
				attrs = append(attrs, slog.Int64("user_id", a.UserID), slog.String("role", string(a.Role)))
			}
		}
		if status >= 500 && len(c.Errors) > 0 {
			logger.Error("http request", append(attrs, slog.String("error", c.Errors.String()))...)
			return
		}
		logger.Info("http request", attrs...)
	}
}
