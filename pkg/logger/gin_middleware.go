package logger

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	RequestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
	maxRequestIDLen = 64
)

// GinLoggerMiddleware пишет одну строку на запрос. Успешные пробы /health* пишутся в debug
func GinLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Set(RequestIDKey, requestID)

		c.Next()

		status := c.Writer.Status()
		path := c.Request.URL.Path

		event := levelFor(status, path)
		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("route", c.FullPath()).
			Str("query", c.Request.URL.RawQuery).
			Str("remote_addr", c.ClientIP()).
			Int("status", status).
			Int("size", c.Writer.Size()).
			Float64("duration_ms", float64(time.Since(start).Microseconds())/1000)

		// выставляются auth middleware обоих сервисов
		if userID := c.GetString("user_id"); userID != "" {
			event.Str("user_id", userID)
		}
		if role := c.GetString("role"); role != "" {
			event.Str("role", role)
		}
		if len(c.Errors) > 0 {
			event.Str("error", c.Errors.String())
		}

		event.Msg("HTTP request")
	}
}

func levelFor(status int, path string) *zerolog.Event {
	switch {
	case status >= 500:
		return Error()
	case status >= 400:
		return Warn()
	case strings.HasPrefix(path, "/health"):
		return Debug()
	default:
		return Info()
	}
}
