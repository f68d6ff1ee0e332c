package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"consult-backend/internal/shared/telemetry"
)

// Context keys handlers set so the request log can carry domain fields.
const (
	ConsultationIDKey = "consultationId"
	BudgetRangeKey    = "budgetRangeId"
	CacheStatusKey    = "cacheStatus"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"client_ip":   c.ClientIP(),
		}
		if guest, ok := c.Get(isGuestKey); ok {
			fields["is_guest"] = guest
		}
		for _, key := range []string{ConsultationIDKey, BudgetRangeKey, CacheStatusKey} {
			if v := c.GetString(key); v != "" {
				fields[logFieldName(key)] = v
			}
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		telemetry.Info("request.complete", fields)
	}
}

func logFieldName(key string) string {
	switch key {
	case ConsultationIDKey:
		return "consultation_id"
	case BudgetRangeKey:
		return "budget_range_id"
	case CacheStatusKey:
		return "cache"
	default:
		return key
	}
}
