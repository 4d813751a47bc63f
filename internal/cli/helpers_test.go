package cli

import (
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/greenhouse-iot/sensordash/internal/config"
	"github.com/greenhouse-iot/sensordash/internal/logger"
	"github.com/greenhouse-iot/sensordash/internal/server"
)

const testPassword = "secret"

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// testAPI serves a seeded in-memory store and returns an App pointed at it.
func testAPI(t *testing.T) (*App, *server.Store) {
	t.Helper()
	store := server.NewStore(0)
	store.Seed()

	srv := httptest.NewServer(server.New(store, server.WithPassword(testPassword)).Handler())
	t.Cleanup(srv.Close)

	return testApp(t, srv.URL), store
}

// testApp returns an App for baseURL with a session file under t.TempDir.
func testApp(t *testing.T, baseURL string) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = baseURL
	cfg.API.Retries = 0
	cfg.API.RetryDelay = time.Millisecond
	cfg.API.Timeout = 2 * time.Second
	cfg.Session.File = filepath.Join(t.TempDir(), "session.yaml")

	a := newApp(cfg, "")
	a.Log = logger.Noop()
	return a
}

// timeAt returns a fixed local time sec seconds past a base instant.
func timeAt(sec int) time.Time {
	return time.Date(2025, 6, 1, 12, 0, sec, 0, time.Local)
}

// withMachineMode turns on --json for one test.
func withMachineMode(t *testing.T) {
	t.Helper()
	machineMode = true
	t.Cleanup(func() { machineMode = false })
}
