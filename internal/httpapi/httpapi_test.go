package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Nehonix-Team/minerd/internal/adapter"
	"github.com/Nehonix-Team/minerd/internal/clockwork"
	"github.com/Nehonix-Team/minerd/internal/config"
	"github.com/Nehonix-Team/minerd/internal/eventlog"
	"github.com/Nehonix-Team/minerd/internal/miner"
	"github.com/Nehonix-Team/minerd/internal/supervisor"
	"github.com/Nehonix-Team/minerd/internal/sysmetrics"
)

type noopAdapter struct{}

func (noopAdapter) BuildCommand(def miner.Definition) []string { return []string{"/bin/sh", "-c", "sleep 5"} }
func (noopAdapter) ParseLine(line string, metrics *miner.Metrics) {}

func init() {
	adapter.Register("httpapi-test", func() adapter.Adapter { return noopAdapter{} })
}

func newTestServer(t *testing.T, apiCfg config.APIConfig) *Server {
	t.Helper()
	clock := clockwork.NewManual(time.Unix(0, 0))
	events := eventlog.New(clock, 100)
	sup := supervisor.New(t.TempDir(), clock, func() clockwork.RNG { return clockwork.NewManualRNG(0) }, events)

	if err := sup.Register(miner.Definition{ID: "rig-1", Type: "httpapi-test", Executable: "/bin/sh", Enabled: true}); err != nil {
		t.Fatalf("register: %v", err)
	}

	return New(apiCfg, Server{
		Supervisor: sup,
		Events:     events,
		SysMetrics: sysmetrics.NewCollector(),
		Metrics:    NewMetricsManager(),
		LogDir:     t.TempDir(),
		Reload:     func() error { return nil },
	})
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, config.APIConfig{ListenAddr: ":0", RateLimitPerSec: 1000, RateLimitBurst: 1000})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMinerLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, config.APIConfig{ListenAddr: ":0", RateLimitPerSec: 1000, RateLimitBurst: 1000})

	start := httptest.NewRequest(http.MethodPost, "/api/miners/rig-1/start", nil)
	recStart := httptest.NewRecorder()
	s.router.ServeHTTP(recStart, start)
	if recStart.Code != http.StatusOK {
		t.Fatalf("expected 200 starting rig-1, got %d: %s", recStart.Code, recStart.Body.String())
	}

	get := httptest.NewRequest(http.MethodGet, "/api/miners/rig-1", nil)
	recGet := httptest.NewRecorder()
	s.router.ServeHTTP(recGet, get)
	if recGet.Code != http.StatusOK {
		t.Fatalf("expected 200 getting rig-1, got %d", recGet.Code)
	}

	missing := httptest.NewRequest(http.MethodGet, "/api/miners/does-not-exist", nil)
	recMissing := httptest.NewRecorder()
	s.router.ServeHTTP(recMissing, missing)
	if recMissing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown miner, got %d", recMissing.Code)
	}

	stop := httptest.NewRequest(http.MethodPost, "/api/miners/rig-1/stop", nil)
	recStop := httptest.NewRecorder()
	s.router.ServeHTTP(recStop, stop)
	if recStop.Code != http.StatusOK {
		t.Fatalf("expected 200 stopping rig-1, got %d", recStop.Code)
	}
}

func TestAuthRejectsMissingKey(t *testing.T) {
	s := newTestServer(t, config.APIConfig{ListenAddr: ":0", APIKey: "secret", RateLimitPerSec: 1000, RateLimitBurst: 1000})

	req := httptest.NewRequest(http.MethodGet, "/api/miners", nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without api key, got %d", rec.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/miners", nil)
	req2.Header.Set(apiKeyHeader, "secret")
	rec2 := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200 with correct api key, got %d", rec2.Code)
	}
}
