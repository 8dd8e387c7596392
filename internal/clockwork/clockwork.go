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

// Package clockwork provides the time and randomness seams the supervisor
// reads through, so tests can advance virtual time and seed jitter
// deterministically instead of sleeping on a wall clock.
package clockwork

import (
	"math/rand"
	"sync"
	"time"
)

// Clock abstracts wall-clock reads and sleeps.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	Sleep(d time.Duration)
}

// RNG abstracts the single random draw the supervisor needs: backoff jitter.
type RNG interface {
	// Float64 returns a pseudo-random number in [0.0, 1.0).
	Float64() float64
}

// realClock delegates to the standard time package.
type realClock struct{}

// Real is the production Clock.
var Real Clock = realClock{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time  { return time.After(d) }
func (realClock) Sleep(d time.Duration)                   { time.Sleep(d) }

// realRNG wraps math/rand with its own lock since the default source is not
// safe for concurrent use from multiple goroutines on all platforms.
type realRNG struct {
	mu  sync.Mutex
	src *rand.Rand
}

// NewRealRNG returns a concurrency-safe RNG seeded from the current time.
func NewRealRNG() RNG {
	return &realRNG{src: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (r *realRNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Float64()
}

// Manual is a fully controllable Clock for deterministic tests: Now() only
// moves when Advance is called, and After() fires pending timers whose
// deadline has passed.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	waiters []manualWaiter
}

type manualWaiter struct {
	deadline time.Time
	ch       chan time.Time
}

// NewManual returns a Manual clock starting at the given time.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) After(d time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan time.Time, 1)
	deadline := m.now.Add(d)
	if !deadline.After(m.now) {
		ch <- m.now
		return ch
	}
	m.waiters = append(m.waiters, manualWaiter{deadline: deadline, ch: ch})
	return ch
}

// Sleep blocks until the manual clock is advanced past d from now. Tests
// drive this from another goroutine via Advance.
func (m *Manual) Sleep(d time.Duration) {
	<-m.After(d)
}

// Advance moves the clock forward by d, firing any waiters whose deadline
// has now elapsed.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)

	remaining := m.waiters[:0]
	for _, w := range m.waiters {
		if !w.deadline.After(m.now) {
			w.ch <- m.now
		} else {
			remaining = append(remaining, w)
		}
	}
	m.waiters = remaining
}

// ManualRNG returns a fixed sequence of Float64 values, repeating the last
// one once exhausted. Seeding with a single 0 gives a deterministic,
// jitter-free backoff schedule for tests.
type ManualRNG struct {
	mu     sync.Mutex
	values []float64
	idx    int
}

func NewManualRNG(values ...float64) *ManualRNG {
	if len(values) == 0 {
		values = []float64{0}
	}
	return &ManualRNG{values: values}
}

func (m *ManualRNG) Float64() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.values[m.idx]
	if m.idx < len(m.values)-1 {
		m.idx++
	}
	return v
}
