/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/Nehonix-Team/minerd/internal/config"
	"github.com/Nehonix-Team/minerd/internal/eventlog"
	"github.com/Nehonix-Team/minerd/internal/supervisor"
	"github.com/Nehonix-Team/minerd/internal/sysmetrics"
)

// Server bundles every dependency the HTTP handlers need and owns route
// registration. It is the generalization of the teacher's StartServer:
// instead of ~25 positional parameters, dependencies are grouped into a
// struct the caller constructs once.
type Server struct {
	Supervisor *supervisor.Supervisor
	Events     *eventlog.Log
	SysMetrics *sysmetrics.Collector
	Metrics    *MetricsManager
	LogDir     string

	// Reload re-reads the config file and applies it to the Supervisor. It
	// is invoked by POST /api/config/reload; the config file watcher applies
	// reloaded configs through its own callback.
	Reload func() error

	router *Router
	http   *http.Server
}

// New constructs a Server and registers every route.
func New(cfg config.APIConfig, deps Server) *Server {
	deps.router = NewRouter()
	deps.registerRoutes()

	handler := Chain(deps.router,
		RequestID(),
		Recover(),
		RequestMetrics(deps.Metrics),
		Compression(),
		Auth(cfg.APIKey),
		RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst),
	)

	deps.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &deps
}

// ListenAndServe blocks serving HTTP until the listener fails or Shutdown
// is called from another goroutine.
func (s *Server) ListenAndServe() error {
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	r := s.router

	r.Handle(http.MethodGet, "/api/health", s.handleHealth)

	r.Handle(http.MethodGet, "/api/miners", s.handleListMiners)
	r.Handle(http.MethodGet, "/api/miners/:id", s.handleGetMiner)
	r.Handle(http.MethodPost, "/api/miners/:id/start", s.handleStartMiner)
	r.Handle(http.MethodPost, "/api/miners/:id/stop", s.handleStopMiner)
	r.Handle(http.MethodPost, "/api/miners/:id/restart", s.handleRestartMiner)

	r.Handle(http.MethodPost, "/api/miners/all/start", s.handleStartAll)
	r.Handle(http.MethodPost, "/api/miners/all/stop", s.handleStopAll)

	r.Handle(http.MethodGet, "/api/metrics/miners", s.handleMinerMetrics)
	r.Handle(http.MethodGet, "/api/metrics/system", s.handleSystemMetrics)
	r.Handle(http.MethodGet, "/api/metrics/http", s.handleHTTPMetrics)

	r.Handle(http.MethodGet, "/api/events", s.handleEvents)

	r.Handle(http.MethodPost, "/api/config/reload", s.handleConfigReload)

	r.Handle(http.MethodGet, "/api/logs/:id", s.handleLogTail)
}
