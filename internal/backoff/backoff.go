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

// Package backoff implements per-worker exponential backoff with jitter, the
// schedule the watchdog uses between a crash and the next restart attempt.
package backoff

import (
	"sync"
	"time"

	"github.com/Nehonix-Team/minerd/internal/clockwork"
)

const (
	// Base is the first backoff duration.
	Base = 2 * time.Second
	// Max is the backoff ceiling.
	Max = 60 * time.Second
)

// State tracks one worker's attempt counter and produces the next sleep
// duration on demand. It is safe for concurrent use.
type State struct {
	rng clockwork.RNG

	mu      sync.Mutex
	attempt int
}

// New returns a zeroed backoff state drawing jitter from rng.
func New(rng clockwork.RNG) *State {
	return &State{rng: rng}
}

// NextSleep returns min(Max, Base*2^(attempt-1)) plus jitter in
// [0, 0.1*sleep), incrementing the attempt counter first.
func (s *State) NextSleep() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempt++
	sleep := Base * time.Duration(1<<uint(s.attempt-1))
	if sleep > Max || sleep <= 0 {
		sleep = Max
	}

	jitter := time.Duration(float64(sleep) * 0.1 * s.rng.Float64())
	return sleep + jitter
}

// Reset zeroes the attempt counter, used when an operator explicitly starts
// or restarts a worker.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempt = 0
}

// Attempt returns the current attempt counter, mostly for observability.
func (s *State) Attempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempt
}
