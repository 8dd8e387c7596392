/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see supervisor.go for the full license header)
 ***************************************************************************** */

package supervisor

import (
	"github.com/Nehonix-Team/minerd/internal/eventlog"
	"github.com/Nehonix-Team/minerd/internal/miner"
)

// Synchronize reconciles the registry against a desired set of definitions:
// workers absent from desired are stopped and removed, workers present in
// desired but not yet registered are added (and started if enabled), and
// workers present in both are updated in place — restarted, unconditionally,
// if their definition actually changed and they were running at the time.
// Per-id failures are logged and do not abort the sweep.
func (s *Supervisor) Synchronize(desired map[string]miner.Definition) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range append([]string(nil), s.order...) {
		if _, want := desired[id]; want {
			continue
		}
		e, ok := s.workers[id]
		if !ok {
			continue
		}
		if e.runtime.Status == miner.StatusRunning {
			if err := s.stopLocked(id); err != nil {
				s.events.Emit(eventlog.LevelWarn, "synchronize: stop failed", map[string]interface{}{"id": id, "error": err.Error()})
				continue
			}
		}
		delete(s.workers, id)
		s.order = removeID(s.order, id)
		s.events.Emit(eventlog.LevelInfo, "miner removed", map[string]interface{}{"id": id})
	}

	for id, def := range desired {
		e, exists := s.workers[id]
		if !exists {
			if err := s.registerLocked(def); err != nil {
				s.events.Emit(eventlog.LevelWarn, "synchronize: register failed", map[string]interface{}{"id": id, "error": err.Error()})
				continue
			}
			if def.Enabled {
				if err := s.startLocked(id, true); err != nil {
					s.events.Emit(eventlog.LevelWarn, "synchronize: start failed", map[string]interface{}{"id": id, "error": err.Error()})
				}
			}
			continue
		}

		old := e.instance.Definition()
		if old.Equal(def) {
			continue
		}

		wasRunning := e.runtime.Status == miner.StatusRunning
		e.instance.SetDefinition(def)
		s.events.Emit(eventlog.LevelInfo, "miner redefined", map[string]interface{}{"id": id})

		if wasRunning {
			if err := s.restartLocked(id); err != nil {
				s.events.Emit(eventlog.LevelWarn, "synchronize: restart failed", map[string]interface{}{"id": id, "error": err.Error()})
			}
		}
	}
}

func removeID(ids []string, target string) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
