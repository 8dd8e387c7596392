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

// Package eventlog is a bounded, in-memory, concurrency-safe FIFO of
// structured supervisor events, queryable by the HTTP façade and the CLI.
package eventlog

import (
	"strings"
	"sync"
	"time"

	"github.com/Nehonix-Team/minerd/internal/clockwork"
)

// DefaultCapacity is used when EventLog is constructed with capacity <= 0.
const DefaultCapacity = 5000

// Level is the event severity.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Event is one structured log entry.
type Event struct {
	Time    time.Time              `json:"time"`
	Level   Level                  `json:"level"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Log is a bounded FIFO: once Capacity is exceeded, the oldest event is
// dropped. It is safe for concurrent use.
type Log struct {
	clock    clockwork.Clock
	capacity int

	mu     sync.Mutex
	events []Event
}

// New returns a Log with the given capacity (DefaultCapacity if <= 0),
// reading timestamps from clock.
func New(clock clockwork.Clock, capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{clock: clock, capacity: capacity}
}

// Emit appends a new event, upper-casing the level and dropping the oldest
// entry if the log is at capacity.
func (l *Log) Emit(level Level, message string, ctx map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, Event{
		Time:    l.clock.Now(),
		Level:   Level(strings.ToUpper(string(level))),
		Message: message,
		Context: ctx,
	})
	if len(l.events) > l.capacity {
		// Drop from the head; this runs at most once per Emit since we only
		// ever append one event at a time.
		l.events = l.events[len(l.events)-l.capacity:]
	}
}

// List returns the tail of up to limit most recent events, newest last. A
// non-positive limit returns the entire buffer.
func (l *Log) List(limit int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > len(l.events) {
		limit = len(l.events)
	}
	out := make([]Event, limit)
	copy(out, l.events[len(l.events)-limit:])
	return out
}
