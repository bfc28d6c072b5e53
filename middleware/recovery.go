package middleware

import (
	"runtime/debug"

	"github.com/VanitasCaesar1/intake/handlers"
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a panic in a handler into a logged 500 and reports
// it to Sentry when a client is configured.
func RecoveryMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("error", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", c.Path()),
					zap.String("method", c.Method()),
				)

				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetTag("method", c.Method())
				hub.Scope().SetTag("path", c.Path())
				hub.Recover(r)

				err = c.Status(fiber.StatusInternalServerError).JSON(
					handlers.NewErrorResponse(handlers.CodeInternal, "An internal server error occurred"))
			}
		}()
		return c.Next()
	}
}
