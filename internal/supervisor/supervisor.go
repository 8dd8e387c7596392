/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 *
 * ACCESS RESTRICTIONS:
 * - This software is exclusively for use by Authorized Personnel of NEHONIX
 * - Intended for Internal Use only within NEHONIX operations
 * - No rights granted to unauthorized individuals or entities
 * - All modifications are works made for hire assigned to NEHONIX
 *
 * PROHIBITED ACTIVITIES:
 * - Copying, distributing, or sublicensing without written permission
 * - Reverse engineering, decompiling, or disassembling
 * - Creating derivative works without explicit authorization
 * - External use or commercial distribution outside NEHONIX
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 * For questions or permissions, contact:
 * NEHONIX Legal Department
 * Email: legal@nehonix.com
 * Website: www.nehonix.com
 ***************************************************************************** */

// Package supervisor implements the MinerManager: the registry of worker
// instances, the lifecycle state machine, desired-state reconciliation, the
// crash-loop watchdog, and the autoswitch scheduler. It is adapted from the
// teacher's internal/cluster ClusterManager, generalized from a fixed-size
// Node/Bun worker pool to a named, hot-reconfigurable fleet of adapters.
package supervisor

import (
	"fmt"
	"sync"
	"time"

	"github.com/Nehonix-Team/minerd/internal/adapter"
	"github.com/Nehonix-Team/minerd/internal/backoff"
	"github.com/Nehonix-Team/minerd/internal/clockwork"
	"github.com/Nehonix-Team/minerd/internal/eventlog"
	"github.com/Nehonix-Team/minerd/internal/miner"
	"github.com/Nehonix-Team/minerd/internal/worker"
)

// ErrNotFound is returned when an operation refers to an unknown worker id.
var ErrNotFound = fmt.Errorf("worker not found")

// crashWindow is the trailing window crash-loop detection looks at.
const crashWindow = 600 * time.Second

// crashThreshold is the number of exits within crashWindow that triggers
// quarantine.
const crashThreshold = 5

// quiescenceDelay is the brief pause restart() waits between stop and start.
const quiescenceDelay = 200 * time.Millisecond

// RNGFactory returns a fresh RNG, used to give each worker's BackoffState
// independent jitter draws.
type RNGFactory func() clockwork.RNG

// entry bundles everything the Supervisor owns for one registered worker.
type entry struct {
	instance       *worker.Instance
	runtime        miner.Runtime
	backoff        *backoff.State
	restartHistory []time.Time
	lastStatus     miner.Status
}

// Supervisor is the registry of worker instances and the sole owner of
// their lifecycle transitions. All exported mutating methods serialize on
// mu; unexported *Locked helpers assume it is already held, which is how
// methods compose (e.g. Restart calls stopLocked then startLocked) without
// needing a genuinely reentrant lock.
type Supervisor struct {
	mu      sync.Mutex
	workers map[string]*entry
	order   []string // registration order, for autoswitch's stable enabled list

	logDir     string
	clock      clockwork.Clock
	rngFactory RNGFactory
	events     *eventlog.Log

	scheduling SchedulingConfig

	autoswitchCursor int
	lastSwitchTime   time.Time
}

// SchedulingConfig is the subset of the external "scheduling" config group
// the autoswitch rule depends on.
type SchedulingConfig struct {
	Autoswitch            bool
	AutoswitchIntervalSec int
}

// New constructs an empty Supervisor.
func New(logDir string, clock clockwork.Clock, rngFactory RNGFactory, events *eventlog.Log) *Supervisor {
	return &Supervisor{
		workers:    make(map[string]*entry),
		logDir:     logDir,
		clock:      clock,
		rngFactory: rngFactory,
		events:     events,
	}
}

// SetScheduling updates the injected scheduling configuration consulted by
// Autoswitch.
func (s *Supervisor) SetScheduling(cfg SchedulingConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduling = cfg
}

// Snapshot is the read-only projection of one worker returned by List/Get.
type Snapshot struct {
	Definition miner.Definition
	Runtime    miner.Runtime
	Metrics    miner.Metrics
}

// Register adds a new worker instance for def. It rejects unknown adapter
// types synchronously.
func (s *Supervisor) Register(def miner.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerLocked(def)
}

func (s *Supervisor) registerLocked(def miner.Definition) error {
	ad, err := adapter.Lookup(def.Type)
	if err != nil {
		return fmt.Errorf("%w: %s", adapter.ErrUnsupportedType, def.Type)
	}

	inst := worker.New(def.ID, def, ad, s.logDir, s.clock)
	s.workers[def.ID] = &entry{
		instance:   inst,
		runtime:    miner.Runtime{ID: def.ID, Status: miner.StatusStopped},
		backoff:    backoff.New(s.rngFactory()),
		lastStatus: miner.StatusStopped,
	}
	s.order = append(s.order, def.ID)

	s.events.Emit(eventlog.LevelInfo, "miner registered", map[string]interface{}{"id": def.ID, "type": def.Type})
	return nil
}

// Start transitions a worker to running. Backoff attempts are reset since
// this is an operator-initiated start.
func (s *Supervisor) Start(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(id, true)
}

func (s *Supervisor) startLocked(id string, operatorInitiated bool) error {
	e, ok := s.workers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if operatorInitiated {
		e.runtime.Quarantined = false
		e.backoff.Reset()
	}

	if err := e.instance.Start(); err != nil {
		msg := err.Error()
		e.runtime.LastError = &msg
		s.events.Emit(eventlog.LevelError, "miner start failed", map[string]interface{}{"id": id, "error": msg})
		return err
	}

	e.runtime.Status = miner.StatusRunning
	pid := e.instance.PID()
	e.runtime.PID = pid
	e.runtime.UptimeSec = 0
	e.runtime.LastError = nil
	e.lastStatus = miner.StatusRunning
	s.events.Emit(eventlog.LevelInfo, "miner started", map[string]interface{}{"id": id})
	return nil
}

// Stop transitions a worker to stopped.
func (s *Supervisor) Stop(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked(id)
}

func (s *Supervisor) stopLocked(id string) error {
	e, ok := s.workers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := e.instance.Stop(); err != nil {
		return err
	}

	e.runtime.Status = miner.StatusStopped
	e.runtime.PID = nil
	e.lastStatus = miner.StatusStopped
	s.events.Emit(eventlog.LevelInfo, "miner stopped", map[string]interface{}{"id": id})
	return nil
}

// Restart stops, waits briefly for quiescence, then starts.
func (s *Supervisor) Restart(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restartLocked(id)
}

func (s *Supervisor) restartLocked(id string) error {
	if _, ok := s.workers[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := s.stopLocked(id); err != nil {
		return err
	}
	s.clock.Sleep(quiescenceDelay)
	return s.startLocked(id, true)
}

// StartAll attempts to start every registered worker. Per-id failures are
// logged and do not abort the sweep.
func (s *Supervisor) StartAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if _, ok := s.workers[id]; !ok {
			continue
		}
		if err := s.startLocked(id, true); err != nil {
			s.events.Emit(eventlog.LevelWarn, "start_all: worker failed", map[string]interface{}{"id": id, "error": err.Error()})
		}
	}
}

// StopAll attempts to stop every registered worker. Per-id failures are
// logged and do not abort the sweep.
func (s *Supervisor) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if _, ok := s.workers[id]; !ok {
			continue
		}
		if err := s.stopLocked(id); err != nil {
			s.events.Emit(eventlog.LevelWarn, "stop_all: worker failed", map[string]interface{}{"id": id, "error": err.Error()})
		}
	}
}

// List returns a snapshot of every registered worker, in registration order.
func (s *Supervisor) List() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Snapshot, 0, len(s.order))
	for _, id := range s.order {
		e, ok := s.workers[id]
		if !ok {
			continue
		}
		out = append(out, Snapshot{
			Definition: e.instance.Definition(),
			Runtime:    e.runtime,
			Metrics:    e.instance.Metrics(),
		})
	}
	return out
}

// Get returns the snapshot for a single worker.
func (s *Supervisor) Get(id string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.workers[id]
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{
		Definition: e.instance.Definition(),
		Runtime:    e.runtime,
		Metrics:    e.instance.Metrics(),
	}, true
}

// GetMetrics returns every worker's current metrics keyed by id.
func (s *Supervisor) GetMetrics() map[string]miner.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]miner.Metrics, len(s.workers))
	for id, e := range s.workers {
		out[id] = e.instance.Metrics()
	}
	return out
}
