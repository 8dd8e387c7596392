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

// Package adapter is the polymorphic per-worker-type strategy: it builds a
// worker's argument vector and parses its output lines into metric updates.
// Adapters are stateless beyond the Definition they're handed; registration
// is a closed set keyed by Definition.Type.
package adapter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Nehonix-Team/minerd/internal/miner"
)

// Adapter is the capability set every worker type implements.
type Adapter interface {
	// BuildCommand returns the argument vector, argv[0] being the executable.
	BuildCommand(def miner.Definition) []string
	// ParseLine extracts metric updates from one line of output, mutating
	// metrics in place. Malformed lines are ignored silently.
	ParseLine(line string, metrics *miner.Metrics)
}

// Factory constructs an Adapter for a Definition of its type.
type Factory func() Adapter

var registry = map[string]Factory{
	"xmrig":        func() Adapter { return XMRig{} },
	"cpuminer-opt": func() Adapter { return CpuMinerOpt{} },
}

// ErrUnsupportedType is returned by Lookup when def.Type has no adapter.
var ErrUnsupportedType = fmt.Errorf("unsupported worker type")

// Lookup resolves the Adapter for a given type tag.
func Lookup(workerType string) (Adapter, error) {
	factory, ok := registry[workerType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, workerType)
	}
	return factory(), nil
}

// Register adds or overrides an adapter factory for a type tag. Exposed so
// tests (and out-of-tree adapters) can plug in fakes without touching the
// built-in registry.
func Register(workerType string, factory Factory) {
	registry[workerType] = factory
}

// ─── shared argv building ───────────────────────────────────────────────────

func commonArgs(def miner.Definition) []string {
	args := []string{def.Executable}
	if def.Algo != "" {
		args = append(args, "-a", def.Algo)
	}
	if def.PoolURL != "" {
		args = append(args, "-o", def.PoolURL)
	}
	if def.Wallet != "" {
		args = append(args, "-u", def.Wallet)
	}
	if def.Password != "" {
		args = append(args, "-p", def.Password)
	}
	if !def.Threads.IsAuto() && def.Threads.Count() > 0 {
		args = append(args, "-t", strconv.Itoa(def.Threads.Count()))
	}
	return args
}

// ─── shared output parsing ──────────────────────────────────────────────────

// hashrateRe matches a reading like "2.50 kH/s" and captures the number and
// unit. The most recent match in a line wins, mirroring hashrate tickers
// that print multiple figures (e.g. total + per-thread) on one line.
var hashrateRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(H|kH|MH|GH)/s`)

var hashrateScale = map[string]float64{
	"H":  1,
	"kH": 1e3,
	"MH": 1e6,
	"GH": 1e9,
}

// acceptedRe matches "accepted: 7/10" (the trailing "(NN%)" is ignored).
var acceptedRe = regexp.MustCompile(`(?i)accepted:\s*(\d+)\s*/\s*(\d+)`)

func parseCommonLine(line string, metrics *miner.Metrics) {
	if matches := hashrateRe.FindAllStringSubmatch(line, -1); len(matches) > 0 {
		last := matches[len(matches)-1]
		val, err := strconv.ParseFloat(last[1], 64)
		if err == nil {
			scale, ok := hashrateScale[normalizeUnit(last[2])]
			if ok {
				hs := val * scale
				metrics.HashrateHS = &hs
			}
		}
	}

	if strings.Contains(strings.ToLower(line), "accepted") {
		if m := acceptedRe.FindStringSubmatch(line); m != nil {
			accepted, errA := strconv.ParseInt(m[1], 10, 64)
			total, errT := strconv.ParseInt(m[2], 10, 64)
			if errA == nil && errT == nil {
				metrics.Accepted = accepted
				metrics.Rejected = total - accepted
			}
		}
	}
}

func normalizeUnit(u string) string {
	upper := strings.ToUpper(u)
	if upper == "KH" {
		return "kH"
	}
	return upper
}

// ─── XMRig ───────────────────────────────────────────────────────────────────

// XMRig adapts github.com/xmrig/xmrig-style CLI conventions.
type XMRig struct{}

func (XMRig) BuildCommand(def miner.Definition) []string {
	args := commonArgs(def)
	if def.DonateLevel > 0 {
		args = append(args, "--donate-level", strconv.Itoa(def.DonateLevel))
	}
	args = append(args, def.ExtraArgs...)
	return args
}

func (XMRig) ParseLine(line string, metrics *miner.Metrics) {
	parseCommonLine(line, metrics)
}

// ─── cpuminer-opt ────────────────────────────────────────────────────────────

// CpuMinerOpt adapts the cpuminer-opt family of CLI conventions, which share
// the same flag surface as XMRig minus the donate-level knob.
type CpuMinerOpt struct{}

func (CpuMinerOpt) BuildCommand(def miner.Definition) []string {
	args := commonArgs(def)
	args = append(args, def.ExtraArgs...)
	return args
}

func (CpuMinerOpt) ParseLine(line string, metrics *miner.Metrics) {
	parseCommonLine(line, metrics)
}
