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

// Package worker owns one managed child process: preflight checks, spawn,
// the two stdout/stderr pump goroutines, and graceful/forced termination.
// It is adapted from the teacher's internal/cluster Worker, generalized from
// a fixed Node/Bun runner to the pluggable Adapter's argv and parser.
package worker

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Nehonix-Team/minerd/internal/adapter"
	"github.com/Nehonix-Team/minerd/internal/clockwork"
	"github.com/Nehonix-Team/minerd/internal/miner"
)

const (
	// stopPollInterval and stopPollAttempts bound the graceful-shutdown wait
	// in Stop: 10 * 300ms = 3s, as specified.
	stopPollInterval = 300 * time.Millisecond
	stopPollAttempts = 10
)

// Instance owns one child process and its two output streams.
type Instance struct {
	ID      string
	LogDir  string
	clock   clockwork.Clock
	adapter adapter.Adapter

	mu            sync.Mutex
	def           miner.Definition
	cmd           *exec.Cmd
	process       *os.Process
	startTime     time.Time
	done          chan struct{} // closed when the reaper observes process exit
	exitCode      *int
	stopRequested bool

	metricsMu sync.RWMutex
	metrics   miner.Metrics
}

// New allocates an Instance. The worker is not started until Start is called.
func New(id string, def miner.Definition, ad adapter.Adapter, logDir string, clock clockwork.Clock) *Instance {
	return &Instance{
		ID:      id,
		LogDir:  logDir,
		clock:   clock,
		adapter: ad,
		def:     def,
	}
}

// Definition returns the currently stored definition.
func (w *Instance) Definition() miner.Definition {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.def
}

// SetDefinition replaces the stored definition without restarting the
// process; synchronize decides separately whether a restart is warranted.
func (w *Instance) SetDefinition(def miner.Definition) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.def = def
}

// Start spawns the child process if it is not already running. It is a
// no-op if the child is alive.
func (w *Instance) Start() error {
	w.mu.Lock()
	if w.isAliveLocked() {
		w.mu.Unlock()
		return nil
	}
	def := w.def
	w.mu.Unlock()

	if err := preflight(def.Executable); err != nil {
		return fmt.Errorf("%w: %s", ErrPreflightFailure, err)
	}

	if err := os.MkdirAll(w.LogDir, 0o755); err != nil {
		return fmt.Errorf("%w: creating log dir: %s", ErrPreflightFailure, err)
	}
	outLog, err := os.OpenFile(filepath.Join(w.LogDir, w.ID+".out.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: opening stdout log: %s", ErrPreflightFailure, err)
	}
	errLog, err := os.OpenFile(filepath.Join(w.LogDir, w.ID+".err.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		outLog.Close()
		return fmt.Errorf("%w: opening stderr log: %s", ErrPreflightFailure, err)
	}

	argv := w.adapter.BuildCommand(def)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = mergeEnv(os.Environ(), def.Env)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		outLog.Close()
		errLog.Close()
		return fmt.Errorf("%w: stdout pipe: %s", ErrSpawnFailure, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		outLog.Close()
		errLog.Close()
		return fmt.Errorf("%w: stderr pipe: %s", ErrSpawnFailure, err)
	}

	applyOSSpecificAttrs(cmd)

	if err := cmd.Start(); err != nil {
		outLog.Close()
		errLog.Close()
		return fmt.Errorf("%w: %s", ErrSpawnFailure, err)
	}

	if def.Nice != 0 {
		if err := setPriority(cmd.Process.Pid, def.Nice); err != nil {
			log.Printf("[worker %s] priority adjustment failed (non-fatal): %v", w.ID, err)
		}
	}
	if len(def.CPUAffinity) > 0 {
		if err := setAffinity(cmd.Process.Pid, def.CPUAffinity); err != nil {
			log.Printf("[worker %s] cpu affinity assignment failed (non-fatal): %v", w.ID, err)
		}
	}

	done := make(chan struct{})

	w.mu.Lock()
	w.cmd = cmd
	w.process = cmd.Process
	w.startTime = w.clock.Now()
	w.done = done
	w.exitCode = nil
	w.stopRequested = false
	w.mu.Unlock()

	w.metricsMu.Lock()
	w.metrics.Reset()
	w.metricsMu.Unlock()

	var pumpWG sync.WaitGroup
	pumpWG.Add(2)
	go w.pump(&pumpWG, stdout, outLog)
	go w.pump(&pumpWG, stderr, errLog)

	go func() {
		pumpWG.Wait()
		outLog.Close()
		errLog.Close()

		waitErr := cmd.Wait()

		w.mu.Lock()
		if w.stopRequested {
			// The operator asked for this exit; clear the handle back to the
			// stopped state instead of surfacing it as a crash exit code, the
			// same short-circuit the Python ground truth's stop() gets for
			// free by setting self.process = None.
			w.exitCode = nil
		} else {
			code := 0
			if waitErr != nil {
				if exitErr, ok := waitErr.(*exec.ExitError); ok {
					code = exitErr.ExitCode()
				} else {
					code = -1
				}
			}
			w.exitCode = &code
		}
		w.process = nil
		close(done)
		w.mu.Unlock()
	}()

	return nil
}

// pump drains one output stream to its log file and the adapter's parser
// until EOF. Either pump may exit before the other; a parse failure never
// propagates.
func (w *Instance) pump(wg *sync.WaitGroup, r io.ReadCloser, logFile *os.File) {
	defer wg.Done()
	defer r.Close()

	writer := bufio.NewWriter(logFile)
	defer writer.Flush()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if _, err := writer.WriteString(line + "\n"); err != nil {
			log.Printf("[worker %s] log write failed: %v", w.ID, err)
		}

		func() {
			w.metricsMu.Lock()
			defer w.metricsMu.Unlock()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[worker %s] adapter parse panic recovered: %v", w.ID, r)
				}
			}()
			w.adapter.ParseLine(line, &w.metrics)
		}()
	}
	writer.Flush()
}

// Stop signals the child to terminate gracefully, escalating to SIGKILL if
// it does not exit within ~3s. It is a no-op for an already-dead child and
// never returns an error for that case.
func (w *Instance) Stop() error {
	w.mu.Lock()
	if !w.isAliveLocked() {
		w.mu.Unlock()
		return nil
	}
	w.stopRequested = true
	process := w.process
	done := w.done
	w.mu.Unlock()

	if err := sendGracefulSignal(process); err != nil {
		_ = process.Kill()
	}

	for i := 0; i < stopPollAttempts; i++ {
		select {
		case <-done:
			return nil
		case <-w.clock.After(stopPollInterval):
		}
	}

	select {
	case <-done:
		return nil
	default:
	}

	if err := process.Kill(); err != nil {
		return fmt.Errorf("force kill: %w", err)
	}
	<-done
	return nil
}

// Status reports "stopped", "running", or "exited:<code>".
func (w *Instance) Status() miner.Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.process != nil {
		return miner.StatusRunning
	}
	if w.exitCode != nil {
		return miner.ExitedStatus(*w.exitCode)
	}
	return miner.StatusStopped
}

// Uptime returns 0 when not running, else the elapsed time since the last
// start, clamped at 0.
func (w *Instance) Uptime() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.process == nil {
		return 0
	}
	d := w.clock.Now().Sub(w.startTime).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// PID returns the current PID, or nil if not running.
func (w *Instance) PID() *int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.process == nil {
		return nil
	}
	pid := w.process.Pid
	return &pid
}

// ExitCode returns the exit code of the last run that ended on its own, or
// nil if the worker is running, was last ended by Stop, or has never exited.
func (w *Instance) ExitCode() *int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.exitCode
}

// Metrics returns a snapshot copy of the worker's current metrics.
func (w *Instance) Metrics() miner.Metrics {
	w.metricsMu.RLock()
	defer w.metricsMu.RUnlock()
	return w.metrics
}

func (w *Instance) isAliveLocked() bool {
	return w.process != nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func preflight(executable string) error {
	info, err := os.Stat(executable)
	if err != nil {
		return fmt.Errorf("executable not found: %w", err)
	}
	if info.Mode()&0o111 == 0 {
		if err := os.Chmod(executable, info.Mode()|0o111); err != nil {
			return fmt.Errorf("executable bit missing and could not be set: %w", err)
		}
	}
	return nil
}

func mergeEnv(inherited []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return inherited
	}

	env := make(map[string]string, len(inherited)+len(overrides))
	for _, kv := range inherited {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	for k, v := range overrides {
		env[k] = v
	}

	merged := make([]string, 0, len(env))
	for k, v := range env {
		merged = append(merged, k+"="+v)
	}
	return merged
}
