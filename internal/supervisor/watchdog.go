/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see supervisor.go for the full license header)
 ***************************************************************************** */

package supervisor

import (
	"strings"
	"time"

	"github.com/Nehonix-Team/minerd/internal/eventlog"
	"github.com/Nehonix-Team/minerd/internal/miner"
)

// minAutoswitchInterval is the floor applied to the configured autoswitch
// interval, regardless of what operators put in config.
const minAutoswitchInterval = 30 * time.Second

// UpdateStatuses reconciles each worker's observed process status against
// its last-known status, recording exits into the crash-loop history and
// quarantining workers that exit too often too quickly. It should be called
// once per supervisor tick.
func (s *Supervisor) UpdateStatuses() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		e, ok := s.workers[id]
		if !ok {
			continue
		}

		current := e.instance.Status()
		e.runtime.Status = current
		e.runtime.UptimeSec = e.instance.Uptime()

		if current == miner.StatusRunning {
			e.runtime.PID = e.instance.PID()
		} else {
			e.runtime.PID = nil
		}

		wasExited := strings.HasPrefix(string(e.lastStatus), "exited:")
		isExited := strings.HasPrefix(string(current), "exited:")

		if isExited && !wasExited {
			s.recordExitLocked(id, e)
		}

		e.lastStatus = current
	}
}

// recordExitLocked updates restart bookkeeping for a worker that has just
// transitioned into the exited state, and quarantines it if it has crashed
// too many times in the trailing window.
func (s *Supervisor) recordExitLocked(id string, e *entry) {
	now := s.clock.Now()

	e.runtime.Restarts++
	e.restartHistory = append(e.restartHistory, now)
	if len(e.restartHistory) > 10 {
		e.restartHistory = e.restartHistory[len(e.restartHistory)-10:]
	}

	recent := 0
	for _, t := range e.restartHistory {
		if now.Sub(t) <= crashWindow {
			recent++
		}
	}

	if exitCode := e.instance.ExitCode(); exitCode != nil && *exitCode != 0 {
		msg := miner.ExitedStatus(*exitCode)
		errMsg := string(msg)
		e.runtime.LastError = &errMsg
	}

	s.events.Emit(eventlog.LevelWarn, "miner exited", map[string]interface{}{
		"id":             id,
		"recent_exits":   recent,
		"total_restarts": e.runtime.Restarts,
	})

	if recent >= crashThreshold && !e.runtime.Quarantined {
		e.runtime.Quarantined = true
		s.events.Emit(eventlog.LevelError, "miner quarantined", map[string]interface{}{
			"id":           id,
			"recent_exits": recent,
			"window_sec":   int(crashWindow.Seconds()),
		})
	}
}

// Watchdog schedules delayed restarts for enabled workers that have exited
// on their own (status "exited:<code>") and are not quarantined; workers
// stopped by an operator or by Autoswitch are left stopped. Each restart is
// delayed by that worker's own backoff schedule and run in its own
// goroutine so the watchdog tick itself never blocks on a spawn.
func (s *Supervisor) Watchdog() {
	s.mu.Lock()
	type pending struct {
		id    string
		delay time.Duration
	}
	var toRestart []pending

	for _, id := range s.order {
		e, ok := s.workers[id]
		if !ok {
			continue
		}
		if !e.instance.Definition().Enabled {
			continue
		}
		if e.runtime.Quarantined {
			continue
		}
		if !strings.HasPrefix(string(e.runtime.Status), "exited:") {
			continue
		}
		toRestart = append(toRestart, pending{id: id, delay: e.backoff.NextSleep()})
	}
	s.mu.Unlock()

	for _, p := range toRestart {
		id := p.id
		delay := p.delay
		go func() {
			s.clock.Sleep(delay)
			s.mu.Lock()
			e, ok := s.workers[id]
			if !ok || e.runtime.Quarantined || !strings.HasPrefix(string(e.runtime.Status), "exited:") || !e.instance.Definition().Enabled {
				s.mu.Unlock()
				return
			}
			_ = s.startLocked(id, false)
			s.mu.Unlock()
		}()
	}
}

// Autoswitch advances the round-robin cursor over enabled workers, stopping
// the previously-active one (if any) and starting the next, provided the
// configured interval has elapsed since the last switch. The first call with
// autoswitch enabled only starts the interval clock. It is a no-op when
// autoswitch is disabled or fewer than two workers are enabled.
func (s *Supervisor) Autoswitch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.scheduling.Autoswitch {
		return
	}

	interval := time.Duration(s.scheduling.AutoswitchIntervalSec) * time.Second
	if interval < minAutoswitchInterval {
		interval = minAutoswitchInterval
	}

	now := s.clock.Now()
	if s.lastSwitchTime.IsZero() {
		s.lastSwitchTime = now
		return
	}
	if now.Sub(s.lastSwitchTime) < interval {
		return
	}

	var enabled []string
	for _, id := range s.order {
		e, ok := s.workers[id]
		if !ok {
			continue
		}
		if e.instance.Definition().Enabled {
			enabled = append(enabled, id)
		}
	}
	if len(enabled) < 2 {
		return
	}

	if s.autoswitchCursor >= len(enabled) {
		s.autoswitchCursor = 0
	}
	current := enabled[s.autoswitchCursor]
	next := enabled[(s.autoswitchCursor+1)%len(enabled)]

	if err := s.stopLocked(current); err != nil {
		s.events.Emit(eventlog.LevelWarn, "autoswitch: stop failed", map[string]interface{}{"id": current, "error": err.Error()})
		return
	}
	if err := s.startLocked(next, false); err != nil {
		s.events.Emit(eventlog.LevelWarn, "autoswitch: start failed", map[string]interface{}{"id": next, "error": err.Error()})
		return
	}

	s.autoswitchCursor = (s.autoswitchCursor + 1) % len(enabled)
	s.lastSwitchTime = now
	s.events.Emit(eventlog.LevelInfo, "autoswitch", map[string]interface{}{"from": current, "to": next})
}
