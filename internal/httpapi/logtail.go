/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

package httpapi

import (
	"bufio"
	"fmt"
	"os"
)

// minTailLines and maxTailLines bound the ?lines= query parameter on the
// log-tail endpoint.
const (
	minTailLines = 1
	maxTailLines = 2000
)

// tailLines returns up to n of the last lines of the file at path, oldest
// first. It reads the whole file; purpose-built rather than adapted from
// the teacher's internal/fs toolkit, which has no line-bounded tail of its
// own to generalize from.
func tailLines(path string, n int) ([]string, error) {
	if n < minTailLines {
		n = minTailLines
	}
	if n > maxTailLines {
		n = maxTailLines
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	ring := make([]string, n)
	count := 0
	idx := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % n
		count++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log file: %w", err)
	}

	if count < n {
		return append([]string(nil), ring[:count]...), nil
	}

	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = ring[(idx+i)%n]
	}
	return out, nil
}
