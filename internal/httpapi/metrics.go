/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

package httpapi

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// RouteMetrics accumulates latency stats for one normalized route.
type RouteMetrics struct {
	Count       uint64        `json:"count"`
	TotalTime   time.Duration `json:"total_time_ns"`
	MinTime     time.Duration `json:"min_time_ns"`
	MaxTime     time.Duration `json:"max_time_ns"`
	AverageTime time.Duration `json:"average_time_ns"`
}

// MetricsManager tracks per-route request latency, keyed by a normalized
// route template so e.g. /api/miners/rig-1 and /api/miners/rig-2 aggregate
// into one /api/miners/:id bucket. Adapted from the teacher's
// internal/ipc MetricsManager.
type MetricsManager struct {
	mu    sync.RWMutex
	stats map[string]*RouteMetrics

	idRegex   *regexp.Regexp
	uuidRegex *regexp.Regexp
}

// NewMetricsManager constructs an empty MetricsManager.
func NewMetricsManager() *MetricsManager {
	return &MetricsManager{
		stats:     make(map[string]*RouteMetrics),
		idRegex:   regexp.MustCompile(`/[a-zA-Z0-9][a-zA-Z0-9_-]*$`),
		uuidRegex: regexp.MustCompile(`/[a-f0-9-]{36}`),
	}
}

// NormalizeRoute collapses dynamic segments (UUIDs, trailing ids) into a
// stable template so metrics don't fragment per distinct miner id.
func (m *MetricsManager) NormalizeRoute(method, path string, knownPrefixes []string) string {
	if idx := strings.Index(path, "?"); idx != -1 {
		path = path[:idx]
	}
	path = m.uuidRegex.ReplaceAllString(path, "/:id")
	for _, prefix := range knownPrefixes {
		if strings.HasPrefix(path, prefix+"/") && path != prefix {
			rest := strings.TrimPrefix(path, prefix+"/")
			if !strings.Contains(rest, "/") {
				path = prefix + "/:id"
			}
		}
	}
	return method + " " + path
}

// Record adds one observation for a normalized route key.
func (m *MetricsManager) Record(key string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rm, ok := m.stats[key]
	if !ok {
		rm = &RouteMetrics{MinTime: duration}
		m.stats[key] = rm
	}
	rm.Count++
	rm.TotalTime += duration
	if duration < rm.MinTime {
		rm.MinTime = duration
	}
	if duration > rm.MaxTime {
		rm.MaxTime = duration
	}
	rm.AverageTime = rm.TotalTime / time.Duration(rm.Count)
}

// Summary returns a copy of every tracked route's metrics.
func (m *MetricsManager) Summary() map[string]RouteMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]RouteMetrics, len(m.stats))
	for k, v := range m.stats {
		out[k] = *v
	}
	return out
}
