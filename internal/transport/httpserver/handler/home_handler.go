package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"drama-platform-client/internal/app/service"
	"drama-platform-client/internal/transport/httpserver/dto"
)

// HomeFetcher fetches the home feed as one batch.
type HomeFetcher interface {
	Fetch(ctx context.Context) (*service.HomeFeed, error)
}

// HomeHandler serves the home feed.
type HomeHandler struct {
	home   HomeFetcher
	logger *zap.Logger
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(home HomeFetcher, logger *zap.Logger) *HomeHandler {
	return &HomeHandler{home: home, logger: logger}
}

// Get handles GET /api/home
func (h *HomeHandler) Get(c *fiber.Ctx) error {
	feed, err := h.home.Fetch(c.Context())
	if err != nil {
		return writeError(c, h.logger, "home feed", err)
	}

	return c.JSON(dto.DataResponse{Data: feed})
}
