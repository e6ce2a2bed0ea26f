package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-Id"

const requestLoggerKey = "dsa.request_logger"

// Middleware tags every request with an id (taken from X-Request-Id or
// generated) and writes one access line once the handler chain returns.
// Server errors are logged at error level, client errors at warn.
func Middleware(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		id := requestID(c)
		c.Header(HeaderRequestID, id)

		l := base.With(slog.String("request_id", id))
		c.Set(requestLoggerKey, l)

		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", routePath(c)),
			slog.Int("status", status),
			slog.String("client_ip", c.ClientIP()),
			slog.Int("bytes", c.Writer.Size()),
			slog.Float64("duration_ms", float64(time.Since(began).Microseconds())/1000),
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			attrs = append(attrs, slog.String("errors", errs.String()))
		}
		l.LogAttrs(context.Background(), levelFor(status, len(c.Errors) > 0), "http request", attrs...)
	}
}

func requestID(c *gin.Context) string {
	if id := c.GetHeader(HeaderRequestID); id != "" {
		return id
	}
	return uuid.NewString()
}

// routePath prefers the matched route template so ids don't explode cardinality.
func routePath(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}

func levelFor(status int, hasErrors bool) slog.Level {
	switch {
	case status >= 500 || hasErrors:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// FromGin returns the logger bound to this request, or slog.Default outside the middleware.
func FromGin(c *gin.Context) *slog.Logger {
	if l, ok := c.Value(requestLoggerKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}
