/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see instance.go for the full license header)
 ***************************************************************************** */

package worker

import "errors"

// ErrPreflightFailure covers a missing executable or a permission issue
// discovered before spawn.
var ErrPreflightFailure = errors.New("preflight failure")

// ErrSpawnFailure covers the OS refusing to create the child process.
var ErrSpawnFailure = errors.New("spawn failure")
