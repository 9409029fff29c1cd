package server

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/CodeforSusono/baseball-broadcast-board/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Board clients connect from tablets and browsers across the
		// local network; origin is not a useful signal here.
		return true
	},
}

func (s *Server) handleWebSocket(c echo.Context) error {
	ip := clientIP(c)

	ok, reason := s.limits.Acquire(ip)
	if !ok {
		slog.Warn("Refusing WebSocket upgrade", "ip", ip, "reason", reason)
		metrics.ConnectionsRejectedTotal.WithLabelValues(string(reason)).Inc()
		return c.String(http.StatusTooManyRequests, "Too many connections")
	}
	defer s.limits.Release(ip)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Warn("Failed to upgrade WebSocket", "ip", ip, "error", err)
		return nil
	}

	writer := newWSWriter(conn, s.clock)
	clientID := s.session.Connect(writer)
	if clientID == "" {
		// Session is shutting down.
		writer.Close("Server shutting down")
		return nil
	}

	// Read pump: blocks until the client goes away. Frame dispatch,
	// role cleanup, and the grace-period flow all hang off the session.
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		s.session.HandleFrame(clientID, raw)
	}

	s.session.Disconnect(clientID)
	writer.Close("")

	return nil
}

func clientIP(c echo.Context) string {
	host, _, err := net.SplitHostPort(c.Request().RemoteAddr)
	if err != nil {
		return c.Request().RemoteAddr
	}
	return host
}
