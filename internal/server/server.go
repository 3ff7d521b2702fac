package server

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/jcabrerapy/concilia-be/internal/config"
	"github.com/jcabrerapy/concilia-be/internal/handler"
	"github.com/jcabrerapy/concilia-be/internal/middleware"
	"github.com/jcabrerapy/concilia-be/pkg/logger"
)

type Server struct {
	echo                  *echo.Echo
	cfg                   *config.Config
	logger                *logger.Logger
	reconciliationHandler *handler.ReconciliationHandler
	healthHandler         *handler.HealthHandler
}

func New(
	cfg *config.Config,
	log *logger.Logger,
	reconciliationHandler *handler.ReconciliationHandler,
	healthHandler *handler.HealthHandler,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	return &Server{
		echo:                  e,
		cfg:                   cfg,
		logger:                log,
		reconciliationHandler: reconciliationHandler,
		healthHandler:         healthHandler,
	}
}

func (s *Server) Start() error {
	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
	s.logger.Info(context.Background(), "Starting HTTP server",
		"address", addr,
	)

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupMiddleware() {
	s.echo.Use(echoMiddleware.Recover())
	s.echo.Use(echoMiddleware.CORS())
	s.echo.Use(echoMiddleware.BodyLimit(s.cfg.Server.MaxUploadSize))
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.Logging(s.logger))
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthHandler.Check)

	s.echo.POST("/reconciliations", s.reconciliationHandler.Create)
	s.echo.GET("/reconciliations/:id/status", s.reconciliationHandler.GetStatus)
	s.echo.GET("/reconciliations/:id", s.reconciliationHandler.GetResult)
	s.echo.GET("/reconciliations/:id/checks", s.reconciliationHandler.GetChecks)
}

func (s *Server) Handler() *echo.Echo {
	s.setupMiddleware()
	s.setupRoutes()
	return s.echo
}
