package middleware

import (
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"drama-platform-client/internal/transport/httpserver/dto"
)

// DefaultOrigins is the local frontend dev server.
var DefaultOrigins = []string{"http://localhost:3000"}

// NewCORS answers cross-origin requests for the listed origins only.
func NewCORS(origins []string) fiber.Handler {
	if len(origins) == 0 {
		origins = DefaultOrigins
	}

	return cors.New(cors.Config{
		AllowOrigins:  strings.Join(origins, ","),
		AllowMethods:  strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions}, ","),
		AllowHeaders:  "Origin,Content-Type,Accept,X-Request-ID",
		ExposeHeaders: fiber.HeaderXRequestID,
		MaxAge:        86400,
	})
}

// RequireOrigin rejects any request whose Origin header names a site outside
// origins. The process holds a single session, so a foreign page must not be
// able to read it, replace it or log it out. Requests without Origin
// (curl, server-to-server) pass; "*" allows every origin.
func RequireOrigin(origins []string, logger *zap.Logger) fiber.Handler {
	if len(origins) == 0 {
		origins = DefaultOrigins
	}
	allowAll := slices.Contains(origins, "*")

	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" || allowAll || slices.Contains(origins, origin) {
			return c.Next()
		}

		logger.Warn("foreign origin rejected",
			zap.String("origin", origin),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("request_id", requestID(c)),
		)

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: "origin not allowed",
			Code:  "FORBIDDEN_ORIGIN",
		})
	}
}
