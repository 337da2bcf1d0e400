package middleware

import (
	"time"

	"panwatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs completed HTTP requests through the structured logger.
// Only non-2xx responses go above debug to keep the log center readable.
func RequestLogging(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			status := c.Response().Status
			fields := []logger.Field{
				logger.String("method", req.Method),
				logger.String("path", req.URL.Path),
				logger.Int("status", status),
				logger.Duration("latency", time.Since(start)),
			}
			if status >= 500 {
				log.Error("http request", fields...)
			} else if status >= 400 {
				log.Warn("http request", fields...)
			} else {
				log.Debug("http request", fields...)
			}

			return err
		}
	}
}
