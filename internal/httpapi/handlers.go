/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

package httpapi

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/Nehonix-Team/minerd/internal/eventlog"
)

const defaultEventsLimit = 100
const defaultTailLines = 200

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListMiners(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Supervisor.List())
}

func (s *Server) handleGetMiner(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r.Context(), "id")
	snap, ok := s.Supervisor.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no such miner: "+id)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStartMiner(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r.Context(), "id")
	if err := s.Supervisor.Start(id); err != nil {
		status, code := statusForError(err)
		writeError(w, status, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "started"})
}

func (s *Server) handleStopMiner(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r.Context(), "id")
	if err := s.Supervisor.Stop(id); err != nil {
		status, code := statusForError(err)
		writeError(w, status, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "stopped"})
}

func (s *Server) handleRestartMiner(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r.Context(), "id")
	if err := s.Supervisor.Restart(id); err != nil {
		status, code := statusForError(err)
		writeError(w, status, code, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "restarted"})
}

func (s *Server) handleStartAll(w http.ResponseWriter, r *http.Request) {
	s.Supervisor.StartAll()
	writeJSON(w, http.StatusOK, map[string]string{"status": "start requested for all miners"})
}

func (s *Server) handleStopAll(w http.ResponseWriter, r *http.Request) {
	s.Supervisor.StopAll()
	writeJSON(w, http.StatusOK, map[string]string{"status": "stop requested for all miners"})
}

func (s *Server) handleMinerMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Supervisor.GetMetrics())
}

func (s *Server) handleSystemMetrics(w http.ResponseWriter, r *http.Request) {
	snap, err := s.SysMetrics.Collect()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHTTPMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Metrics.Summary())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultEventsLimit)
	writeJSON(w, http.StatusOK, s.Events.List(limit))
}

func (s *Server) handleConfigReload(w http.ResponseWriter, r *http.Request) {
	if s.Reload == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "reload is not wired")
		return
	}
	if err := s.Reload(); err != nil {
		s.Events.Emit(eventlog.LevelError, "config reload failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusBadRequest, "reload_failed", err.Error())
		return
	}
	s.Events.Emit(eventlog.LevelInfo, "config reloaded", map[string]interface{}{"trigger": "api"})
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func (s *Server) handleLogTail(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r.Context(), "id")
	stream := r.URL.Query().Get("stream")
	if stream != "err" {
		stream = "out"
	}
	lines := queryInt(r, "lines", defaultTailLines)

	path := filepath.Join(s.LogDir, id+"."+stream+".log")
	tail, err := tailLines(path, lines)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "stream": stream, "lines": tail})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
