package server

import (
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	apperrors "github.com/CodeforSusono/baseball-broadcast-board/internal/errors"
)

const initDataFile = "init_data.json"

// handleInitData serves the board configuration snapshot. An operator
// generated file in the writable config dir wins over the copy bundled
// with the release, so venues can customize teams without rebuilding.
func (s *Server) handleInitData(c echo.Context) error {
	for _, dir := range []string{s.config.ConfigDir, s.config.BundledConfigDir} {
		path := filepath.Join(dir, initDataFile)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return c.File(path)
	}

	return apperrors.NotFoundError("init_data.json not found").
		WithContext("config_dir", s.config.ConfigDir).
		WithContext("bundled_config_dir", s.config.BundledConfigDir)
}
