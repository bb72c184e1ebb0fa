// Package httpserver provides the HTTP server and routing of the web companion.
package httpserver

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"drama-platform-client/internal/transport/httpserver/dto"
	"drama-platform-client/internal/transport/httpserver/handler"
	"drama-platform-client/internal/transport/httpserver/middleware"
	"drama-platform-client/internal/validator"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port      int
	BodyLimit int
	Debug     bool
	Origins   []string // allowed browser origins; DefaultOrigins when empty
}

// Dependencies are the backend capabilities the server exposes.
type Dependencies struct {
	Home      handler.HomeFetcher
	Dramas    handler.DramaReader
	Search    handler.Searcher
	Auth      handler.Authenticator
	Readiness []middleware.ReadinessCheck
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	cfg ServerConfig,
	deps Dependencies,
	v *validator.Validator,
	logger *zap.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "drama-web",
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          errorHandler(logger),
		DisableStartupMessage: !cfg.Debug,
	})

	// Health check middleware MUST be registered BEFORE other middleware
	// for Kubernetes health checks to work even during high load
	app.Use(middleware.NewHealthCheck(deps.Readiness...))

	// Global middleware
	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(middleware.RequireOrigin(cfg.Origins, logger))
	app.Use(middleware.NewCORS(cfg.Origins))
	app.Use(compress.New())

	homeHandler := handler.NewHomeHandler(deps.Home, logger)
	searchHandler := handler.NewSearchHandler(deps.Dramas, deps.Search, v, logger)
	authHandler := handler.NewAuthHandler(deps.Auth, v, logger)

	registerRoutes(app, homeHandler, searchHandler, authHandler)

	return &Server{
		App:    app,
		Logger: logger,
	}
}

// registerRoutes sets up all API routes.
func registerRoutes(
	app *fiber.App,
	homeHandler *handler.HomeHandler,
	searchHandler *handler.SearchHandler,
	authHandler *handler.AuthHandler,
) {
	// Health checks are handled by middleware (/livez, /readyz)

	a := app.Group("/api")

	a.Get("/home", homeHandler.Get)
	a.Get("/dramas/:id", searchHandler.GetDrama)
	a.Get("/search", searchHandler.Search)
	a.Get("/rankings/:type", searchHandler.Ranking)

	session := a.Group("/auth")
	session.Post("/login", authHandler.Login)
	session.Post("/logout", authHandler.Logout)
	session.Get("/profile", authHandler.Profile)
}

// errorHandler returns a custom error handler that logs based on HTTP status code.
// 404s are logged at DEBUG level (expected client behavior), 4xx at WARN, 5xx at ERROR.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("resource not found",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		case code >= 500:
			logger.Error("server error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		default:
			logger.Warn("client error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		}

		return c.Status(code).JSON(dto.ErrorResponse{
			Error: err.Error(),
			Code:  "UNHANDLED_ERROR",
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.Shutdown()
}
