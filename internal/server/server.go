// Package server exposes the research assistant over HTTP.
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/furydoc/cybersyn/config"
	"github.com/furydoc/cybersyn/internal/research"
)

// Server wires the HTTP surface over the research pipeline.
type Server struct {
	cfg      config.ServerConfig
	pipeline *research.Pipeline
	searcher research.Searcher
	gen      research.Generator
	logger   *log.Logger
}

// New builds a server. All dependencies are required except logger.
func New(cfg config.ServerConfig, pipeline *research.Pipeline, searcher research.Searcher, gen research.Generator, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}
	return &Server{cfg: cfg, pipeline: pipeline, searcher: searcher, gen: gen, logger: logger}
}

// Echo assembles the routed echo instance. Split from Run so tests can
// drive handlers without binding a port.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging.
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	if s.cfg.AccessToken != "" {
		api.Use(s.withAccessToken)
	}
	api.POST("/research", s.handleResearch)
	api.POST("/search", s.handleSearch)
	api.POST("/document", s.handleDocument)
	api.POST("/chat", s.handleChat)
	api.GET("/models", s.handleModels)

	return e
}

// withAccessToken gates /api behind a static bearer token.
func (s *Server) withAccessToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Header.Get("Authorization") != "Bearer "+s.cfg.AccessToken {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
		return next(c)
	}
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	e := s.Echo()
	s.logger.Printf("listening on %s", s.cfg.Address)
	return e.Start(s.cfg.Address)
}
