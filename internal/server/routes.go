package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Scoreboard WebSocket endpoint
	s.echo.GET("/ws", s.handleWebSocket)

	// Config snapshot: writable operator config preferred over bundled copy
	s.echo.GET("/init_data.json", s.handleInitData)

	// Board and operation panel assets. echo refuses traversal outside
	// the root; "/" resolves to index.html.
	s.echo.Static("/", s.config.PublicDir)
}
