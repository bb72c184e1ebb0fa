package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"drama-platform-client/internal/api/auth"
	"drama-platform-client/internal/domain"
	"drama-platform-client/internal/transport/httpserver/dto"
	"drama-platform-client/internal/validator"
)

// Authenticator manages the process session.
type Authenticator interface {
	Login(ctx context.Context, creds auth.Credentials) (*domain.AuthResult, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*domain.User, error)
}

// AuthHandler handles session requests.
type AuthHandler struct {
	auth      Authenticator
	validator *validator.Validator
	logger    *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(a Authenticator, v *validator.Validator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:      a,
		validator: v,
		logger:    logger,
	}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}

	if err := h.validator.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	res, err := h.auth.Login(c.Context(), req.ToCredentials())
	if err != nil {
		return writeError(c, h.logger, "login", err)
	}

	return c.JSON(dto.DataResponse{Data: dto.FromAuthResult(res)})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.Context()); err != nil {
		// The local session is gone either way.
		h.logger.Warn("server-side logout failed", zap.Error(err))
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Profile handles GET /api/auth/profile
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	u, err := h.auth.Profile(c.Context())
	if err != nil {
		return writeError(c, h.logger, "profile", err)
	}

	return c.JSON(dto.DataResponse{Data: u})
}
