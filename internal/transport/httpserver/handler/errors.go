// Package handler provides HTTP handlers for the API.
package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"drama-platform-client/internal/transport/httpserver/dto"
)

// writeError maps err onto the response. Upstream failures are already
// logged by the transport, so only unexpected errors are logged here.
func writeError(c *fiber.Ctx, logger *zap.Logger, op string, err error) error {
	status, body := dto.FromError(err)
	if status == fiber.StatusInternalServerError {
		logger.Error(op+" failed", zap.Error(err), zap.String("path", c.Path()))
	}
	return c.Status(status).JSON(body)
}

func invalidParams(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: "invalid query parameters",
		Code:  "INVALID_PARAMS",
	})
}

func validationFailed(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:   "validation failed",
		Code:    "VALIDATION_ERROR",
		Details: err,
	})
}
