package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"drama-platform-client/internal/api/search"
	"drama-platform-client/internal/domain"
	"drama-platform-client/internal/transport/httpserver/dto"
	"drama-platform-client/internal/validator"
)

// DramaReader fetches a single drama.
type DramaReader interface {
	GetByID(ctx context.Context, id string) (*domain.Drama, error)
}

// Searcher runs searches and ranking lookups.
type Searcher interface {
	Search(ctx context.Context, p search.Params) (*domain.SearchResult, error)
	Ranking(ctx context.Context, kind string, p search.RankingParams) (*domain.RankingResult, error)
}

// SearchHandler handles catalog read requests.
type SearchHandler struct {
	dramas    DramaReader
	searcher  Searcher
	validator *validator.Validator
	logger    *zap.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(dramas DramaReader, searcher Searcher, v *validator.Validator, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		dramas:    dramas,
		searcher:  searcher,
		validator: v,
		logger:    logger,
	}
}

// Search handles GET /api/search
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.QueryParser(&req); err != nil {
		return invalidParams(c)
	}

	if err := h.validator.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	result, err := h.searcher.Search(c.Context(), req.ToParams())
	if err != nil {
		return writeError(c, h.logger, "search", err)
	}

	return c.JSON(dto.DataResponse{Data: result})
}

// GetDrama handles GET /api/dramas/:id
func (h *SearchHandler) GetDrama(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "id is required",
			Code:  "MISSING_ID",
		})
	}

	d, err := h.dramas.GetByID(c.Context(), id)
	if err != nil {
		return writeError(c, h.logger, "get drama", err)
	}

	return c.JSON(dto.DataResponse{Data: d})
}

// Ranking handles GET /api/rankings/:type
func (h *SearchHandler) Ranking(c *fiber.Ctx) error {
	var req dto.RankingRequest
	if err := c.QueryParser(&req); err != nil {
		return invalidParams(c)
	}

	if err := h.validator.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	result, err := h.searcher.Ranking(c.Context(), c.Params("type"), req.ToParams())
	if err != nil {
		return writeError(c, h.logger, "ranking", err)
	}

	return c.JSON(dto.DataResponse{Data: result})
}
