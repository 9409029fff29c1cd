package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeforSusono/baseball-broadcast-board/internal/config"
	apperrors "github.com/CodeforSusono/baseball-broadcast-board/internal/errors"
	"github.com/CodeforSusono/baseball-broadcast-board/internal/session"
	"github.com/CodeforSusono/baseball-broadcast-board/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Port:                "0",
		DataDir:             t.TempDir(),
		ConfigDir:           t.TempDir(),
		BundledConfigDir:    t.TempDir(),
		PublicDir:           t.TempDir(),
		HandshakeTimeout:    3 * time.Second,
		ReloadGracePeriod:   5 * time.Second,
		MaxConnections:      16,
		MaxConnectionsPerIP: 8,
		UpgradesPerSecond:   100,
	}

	clock := clockwork.NewRealClock()
	sess := session.New(store.New(cfg.DataDir), clock, session.Options{
		HandshakeTimeout: cfg.HandshakeTimeout,
		GracePeriod:      cfg.ReloadGracePeriod,
	})
	t.Cleanup(sess.Stop)

	return NewServer(cfg, sess, clock)
}

func TestNewServer_FractionalUpgradeRateStillAdmits(t *testing.T) {
	srv := newTestServer(t)
	srv.config.UpgradesPerSecond = 0.5

	// Rebuild with the fractional rate; the burst must never round
	// down to zero or every upgrade would be refused.
	rebuilt := NewServer(srv.config, srv.session, srv.clock)
	ok, reason := rebuilt.limits.Acquire("10.0.0.1")
	assert.True(t, ok, "first upgrade refused with reason %q", reason)
}

func TestHandleLiveness(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t)
	err := srv.handleLiveness(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"uptime"`)
}

func TestHandleReadiness_Healthy(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t)
	err := srv.handleReadiness(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestHandleReadiness_SessionStopped(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t)
	srv.session.Stop()

	err := srv.handleReadiness(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "session")
}

func TestHandleVersion(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	srv := newTestServer(t)
	err := srv.handleVersion(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "version")
}

func TestHandleInitData_PrefersWritableConfig(t *testing.T) {
	srv := newTestServer(t)

	bundled := filepath.Join(srv.config.BundledConfigDir, initDataFile)
	require.NoError(t, os.WriteFile(bundled, []byte(`{"game_title":"bundled"}`), 0o644))
	writable := filepath.Join(srv.config.ConfigDir, initDataFile)
	require.NoError(t, os.WriteFile(writable, []byte(`{"game_title":"operator"}`), 0o644))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/init_data.json", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, srv.handleInitData(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "operator")
}

func TestHandleInitData_FallsBackToBundled(t *testing.T) {
	srv := newTestServer(t)

	bundled := filepath.Join(srv.config.BundledConfigDir, initDataFile)
	require.NoError(t, os.WriteFile(bundled, []byte(`{"game_title":"bundled"}`), 0o644))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/init_data.json", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, srv.handleInitData(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bundled")
}

func TestStatic_ServesBoardAssets(t *testing.T) {
	srv := newTestServer(t)
	index := filepath.Join(srv.config.PublicDir, "index.html")
	require.NoError(t, os.WriteFile(index, []byte("<html>scoreboard</html>"), 0o644))

	ts := httptest.NewServer(srv.echo)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatic_RefusesTraversal(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.echo)
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/..%2f..%2fgo.mod", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleInitData_MissingEverywhere(t *testing.T) {
	srv := newTestServer(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/init_data.json", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := srv.handleInitData(c)
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeNotFound, apperrors.AsStructuredError(err).Type)
}
