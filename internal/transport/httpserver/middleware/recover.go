package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"drama-platform-client/internal/transport/httpserver/dto"
)

// Recover turns a handler panic into a 500 carrying the request id, so the
// caller can quote it when reporting the failure.
func Recover(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			panicErr, ok := r.(error)
			if !ok {
				panicErr = fmt.Errorf("%v", r)
			}

			id := requestID(c)
			logger.Error("handler panicked",
				zap.Error(panicErr),
				zap.Stack("stack"),
				zap.String("method", c.Method()),
				zap.String("route", c.Route().Path),
				zap.String("request_id", id),
			)

			err = c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error:   "internal server error",
				Code:    "PANIC",
				Details: fiber.Map{"requestId": id},
			})
		}()

		return c.Next()
	}
}
