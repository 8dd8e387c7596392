package supervisor

import (
	"testing"
	"time"

	"github.com/Nehonix-Team/minerd/internal/adapter"
	"github.com/Nehonix-Team/minerd/internal/clockwork"
	"github.com/Nehonix-Team/minerd/internal/eventlog"
	"github.com/Nehonix-Team/minerd/internal/miner"
)

// shellAdapter runs an arbitrary shell one-liner via /bin/sh -c, letting
// tests control exit timing and exit codes without a real miner binary.
type shellAdapter struct{}

func (shellAdapter) BuildCommand(def miner.Definition) []string {
	return []string{"/bin/sh", "-c", def.ExtraArgs[0]}
}

func (shellAdapter) ParseLine(line string, metrics *miner.Metrics) {}

func init() {
	adapter.Register("shelltest", func() adapter.Adapter { return shellAdapter{} })
}

func newTestSupervisor(t *testing.T) (*Supervisor, *clockwork.Manual) {
	t.Helper()
	clock := clockwork.NewManual(time.Unix(0, 0))
	events := eventlog.New(clock, 100)
	rngFactory := func() clockwork.RNG { return clockwork.NewManualRNG(0) }
	return New(t.TempDir(), clock, rngFactory, events), clock
}

func def(id, cmd string, enabled bool) miner.Definition {
	return miner.Definition{
		ID:         id,
		Type:       "shelltest",
		Executable: "/bin/sh",
		Enabled:    enabled,
		Threads:    miner.ThreadsAuto(),
		ExtraArgs:  []string{cmd},
	}
}

func TestRegisterRejectsUnknownType(t *testing.T) {
	s, _ := newTestSupervisor(t)
	err := s.Register(miner.Definition{ID: "x", Type: "not-a-real-type"})
	if err == nil {
		t.Fatal("expected error for unknown adapter type")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	s, _ := newTestSupervisor(t)
	if err := s.Register(def("a", "sleep 5", true)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := s.Start("a"); err != nil {
		t.Fatalf("start: %v", err)
	}

	snap, ok := s.Get("a")
	if !ok {
		t.Fatal("expected worker to exist")
	}
	if snap.Runtime.Status != miner.StatusRunning {
		t.Fatalf("expected running, got %v", snap.Runtime.Status)
	}
	if snap.Runtime.PID == nil {
		t.Fatal("expected a pid while running")
	}

	if err := s.Stop("a"); err != nil {
		t.Fatalf("stop: %v", err)
	}
	snap, _ = s.Get("a")
	if snap.Runtime.Status != miner.StatusStopped {
		t.Fatalf("expected stopped, got %v", snap.Runtime.Status)
	}
	if snap.Runtime.PID != nil {
		t.Fatal("expected no pid while stopped")
	}
}

// TestCrashLoopQuarantine drives five rapid exits through UpdateStatuses and
// expects the worker to be quarantined after the fifth.
func TestCrashLoopQuarantine(t *testing.T) {
	s, clock := newTestSupervisor(t)
	if err := s.Register(def("flaky", "exit 1", true)); err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < crashThreshold; i++ {
		if err := s.Start("flaky"); err != nil {
			t.Fatalf("start #%d: %v", i, err)
		}
		waitForExit(t, s, "flaky")
		s.UpdateStatuses()
		clock.Advance(time.Second)
	}

	snap, _ := s.Get("flaky")
	if !snap.Runtime.Quarantined {
		t.Fatalf("expected worker to be quarantined after %d rapid exits, runtime=%+v", crashThreshold, snap.Runtime)
	}
	if snap.Runtime.Restarts != crashThreshold {
		t.Fatalf("expected %d restarts recorded, got %d", crashThreshold, snap.Runtime.Restarts)
	}
}

// TestWatchdogSkipsQuarantined checks the watchdog does not schedule a
// restart for an exited worker that is quarantined.
func TestWatchdogSkipsQuarantined(t *testing.T) {
	s, clock := newTestSupervisor(t)
	if err := s.Register(def("q", "exit 1", true)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := s.Start("q"); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitForExit(t, s, "q")
	s.UpdateStatuses()

	s.mu.Lock()
	s.workers["q"].runtime.Quarantined = true
	s.mu.Unlock()

	s.Watchdog()
	clock.Advance(2 * time.Minute)

	snap, _ := s.Get("q")
	if snap.Runtime.Status == miner.StatusRunning {
		t.Fatal("quarantined worker should not have been restarted by the watchdog")
	}
}

func TestSynchronizeAddRemoveKeep(t *testing.T) {
	s, _ := newTestSupervisor(t)
	if err := s.Register(def("keep", "sleep 5", true)); err != nil {
		t.Fatalf("register keep: %v", err)
	}
	if err := s.Register(def("drop", "sleep 5", true)); err != nil {
		t.Fatalf("register drop: %v", err)
	}
	if err := s.Start("keep"); err != nil {
		t.Fatalf("start keep: %v", err)
	}
	if err := s.Start("drop"); err != nil {
		t.Fatalf("start drop: %v", err)
	}

	desired := map[string]miner.Definition{
		"keep": def("keep", "sleep 5", true),
		"new":  def("new", "sleep 5", true),
	}
	s.Synchronize(desired)

	if _, ok := s.Get("drop"); ok {
		t.Fatal("expected drop to be removed")
	}
	if _, ok := s.Get("new"); !ok {
		t.Fatal("expected new to be registered")
	}
	newSnap, _ := s.Get("new")
	if newSnap.Runtime.Status != miner.StatusRunning {
		t.Fatalf("expected new (enabled) to be started, got %v", newSnap.Runtime.Status)
	}

	keepSnap, _ := s.Get("keep")
	if keepSnap.Runtime.Status != miner.StatusRunning {
		t.Fatal("expected untouched keep to remain running")
	}
}

func TestAutoswitchRotatesRoundRobin(t *testing.T) {
	s, clock := newTestSupervisor(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := s.Register(def(id, "sleep 5", true)); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}
	s.SetScheduling(SchedulingConfig{Autoswitch: true, AutoswitchIntervalSec: 30})
	if err := s.Start("a"); err != nil {
		t.Fatalf("start a: %v", err)
	}

	s.mu.Lock()
	s.autoswitchCursor = 0
	s.mu.Unlock()

	s.Autoswitch()
	clock.Advance(31 * time.Second)
	s.Autoswitch()
	clock.Advance(31 * time.Second)
	s.Autoswitch()

	aSnap, _ := s.Get("a")
	bSnap, _ := s.Get("b")
	cSnap, _ := s.Get("c")
	if aSnap.Runtime.Status == miner.StatusRunning {
		t.Fatal("expected a to have been rotated away from")
	}
	if bSnap.Runtime.Status == miner.StatusRunning {
		t.Fatal("expected b to have been rotated away from by the second rotation")
	}
	if cSnap.Runtime.Status != miner.StatusRunning {
		t.Fatal("expected c to be the active miner after two rotations")
	}
}

func waitForExit(t *testing.T, s *Supervisor, id string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		status := s.workers[id].instance.Status()
		s.mu.Unlock()
		if status != miner.StatusRunning {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("worker %s did not exit in time", id)
}
