// Package server exposes the capacity planner over HTTP.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/chelma/cloud-demo/internal/store"
)

// Server is the planner HTTP API.
type Server struct {
	app    *fiber.App
	store  store.PlanStore
	logger *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStore enables the stored-plan endpoints.
func WithStore(s store.PlanStore) Option {
	return func(srv *Server) { srv.store = s }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(srv *Server) { srv.logger = l }
}

// New creates the server and registers its routes.
func New(opts ...Option) *Server {
	s := &Server{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "capturefit API v1",
		BodyLimit:             1024 * 1024,
		ReadTimeout:           30 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	s.app.Use(fiberrecover.New())
	s.app.Use(s.logRequests)

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
		})
	})

	api := s.app.Group("/api/v1")
	api.Post("/plans", s.postPlan)
	api.Post("/plans/diff", s.postPlanDiff)
	if s.store != nil {
		api.Get("/clusters/:name/plan", s.getClusterPlan)
		if _, ok := s.store.(store.Lister); ok {
			api.Get("/clusters", s.listClusters)
		}
	}

	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	s.logger.Info("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)))
	return err
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
}
