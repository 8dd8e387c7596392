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

// Package miner holds the data model shared by the adapter, worker and
// supervisor packages: worker definitions, runtime state, and metrics.
package miner

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Threads models the one genuinely polymorphic definition field: either a
// fixed thread count or the sentinel "auto".
type Threads struct {
	auto  bool
	count int
}

// ThreadsAuto lets the adapter pick a thread count itself (usually by
// omitting -t entirely).
func ThreadsAuto() Threads { return Threads{auto: true} }

// ThreadsCount pins the worker to a fixed number of threads.
func ThreadsCount(n int) Threads { return Threads{count: n} }

func (t Threads) IsAuto() bool { return t.auto }
func (t Threads) Count() int   { return t.count }

// UnmarshalYAML accepts either the literal string "auto" or an integer.
// yaml.v3 dispatches to this via the *yaml.Node-based Unmarshaler interface,
// unlike yaml.v2's func(interface{}) error callback style.
func (t *Threads) UnmarshalYAML(value *yaml.Node) error {
	switch value.Tag {
	case "!!str":
		if value.Value != "auto" {
			return fmt.Errorf("threads: unrecognized string %q (only \"auto\" is valid)", value.Value)
		}
		*t = ThreadsAuto()
		return nil
	case "!!int":
		n, err := strconv.Atoi(value.Value)
		if err != nil {
			return fmt.Errorf("threads: invalid integer %q: %w", value.Value, err)
		}
		*t = ThreadsCount(n)
		return nil
	default:
		return fmt.Errorf("threads: invalid value %q", value.Value)
	}
}

// MarshalYAML renders "auto" or the integer count.
func (t Threads) MarshalYAML() (interface{}, error) {
	if t.auto {
		return "auto", nil
	}
	return t.count, nil
}

// Definition is the immutable-from-the-supervisor's-view configuration of
// one worker. It is replaced wholesale on reconfiguration.
type Definition struct {
	ID         string            `yaml:"id"`
	Type       string            `yaml:"type"`
	Executable string            `yaml:"executable"`
	Enabled    bool              `yaml:"enabled"`
	Algo       string            `yaml:"algo"`
	PoolURL    string            `yaml:"pool_url"`
	Wallet     string            `yaml:"wallet"`
	Password   string            `yaml:"password"`
	Threads    Threads           `yaml:"threads"`
	DonateLevel int              `yaml:"donate_level"`
	Nice       int               `yaml:"nice"`
	CPUAffinity []int            `yaml:"cpu_affinity"`
	ExtraArgs  []string          `yaml:"extra_args"`
	Env        map[string]string `yaml:"env"`
}

// Equal performs the field-by-field structural comparison synchronize uses
// to decide whether a worker's definition changed.
func (d Definition) Equal(o Definition) bool {
	if d.ID != o.ID || d.Type != o.Type || d.Executable != o.Executable ||
		d.Enabled != o.Enabled || d.Algo != o.Algo || d.PoolURL != o.PoolURL ||
		d.Wallet != o.Wallet || d.Password != o.Password ||
		d.Threads != o.Threads || d.DonateLevel != o.DonateLevel ||
		d.Nice != o.Nice {
		return false
	}
	if len(d.CPUAffinity) != len(o.CPUAffinity) {
		return false
	}
	for i := range d.CPUAffinity {
		if d.CPUAffinity[i] != o.CPUAffinity[i] {
			return false
		}
	}
	if len(d.ExtraArgs) != len(o.ExtraArgs) {
		return false
	}
	for i := range d.ExtraArgs {
		if d.ExtraArgs[i] != o.ExtraArgs[i] {
			return false
		}
	}
	if len(d.Env) != len(o.Env) {
		return false
	}
	for k, v := range d.Env {
		if ov, ok := o.Env[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Status is the runtime lifecycle status of a worker instance.
type Status string

const (
	StatusStopped Status = "stopped"
	StatusRunning Status = "running"
)

// ExitedStatus formats the "exited:<code>" status string.
func ExitedStatus(code int) Status {
	return Status(fmt.Sprintf("exited:%d", code))
}

// Runtime is the mutable, supervisor-owned runtime state of one worker.
type Runtime struct {
	ID          string  `json:"id"`
	PID         *int    `json:"pid"`
	Status      Status  `json:"status"`
	UptimeSec   float64 `json:"uptime_sec"`
	Restarts    int     `json:"restarts"`
	Quarantined bool    `json:"quarantined"`
	LastError   *string `json:"last_error"`
}

// Metrics is updated by the Adapter as it parses a worker's output.
type Metrics struct {
	HashrateHS  *float64 `json:"hashrate_hs"`
	Accepted    int64    `json:"accepted"`
	Rejected    int64    `json:"rejected"`
	UptimeSec   float64  `json:"uptime_sec"`
	TemperatureC *float64 `json:"temperature_c"`
	PowerW      *float64 `json:"power_w"`
}

// Reset zeroes a Metrics value in place, used on a fresh worker start.
func (m *Metrics) Reset() {
	*m = Metrics{}
}
