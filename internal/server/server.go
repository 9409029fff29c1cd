// Package server is the transport listener: it accepts WebSocket
// connections for the scoreboard session, serves the static board and
// operation assets, and exposes the config snapshot, health, and
// metrics endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/CodeforSusono/baseball-broadcast-board/internal/config"
	apperrors "github.com/CodeforSusono/baseball-broadcast-board/internal/errors"
	"github.com/CodeforSusono/baseball-broadcast-board/internal/session"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	session   *session.Session
	clock     clockwork.Clock
	limits    *ConnectionLimits
	startTime time.Time
}

func NewServer(cfg *config.Config, sess *session.Session, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo:    e,
		config:  cfg,
		session: sess,
		clock:   clock,
		limits: NewConnectionLimits(cfg.MaxConnections, cfg.MaxConnectionsPerIP,
			cfg.UpgradesPerSecond, max(1, int(cfg.UpgradesPerSecond))),
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
