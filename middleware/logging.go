package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// RequestLogger logs every completed request.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		status := c.Response().StatusCode()
		path := utils.CopyString(c.Path())
		// fiber reuses the request buffers once the handler returns
		fields := []zap.Field{
			zap.String("method", utils.CopyString(c.Method())),
			zap.String("path", path),
			zap.String("ip", utils.CopyString(c.IP())),
			zap.Duration("duration", duration),
			zap.Int("status", status),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}

		// the frame endpoint fires every poll tick
		if status < fiber.StatusBadRequest && path == "/api/recognition/frame" {
			logger.Debug("request completed", fields...)
			return err
		}
		logger.Info("request completed", fields...)
		return err
	}
}

// SecurityHeaders sets the content security policy for the front-end pages.
func SecurityHeaders(connectSrc string) fiber.Handler {
	policy := "default-src 'self'; " +
		"connect-src 'self' " + connectSrc + "; " +
		"img-src 'self' data: blob:; " +
		"media-src 'self' blob:; " +
		"script-src 'self' 'unsafe-inline'; " +
		"style-src 'self' 'unsafe-inline'"
	return func(c *fiber.Ctx) error {
		c.Set("Content-Security-Policy", policy)
		return c.Next()
	}
}
