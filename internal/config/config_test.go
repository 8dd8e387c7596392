package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "minerd.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTemp(t, `
miners:
  - id: rig-1
    type: xmrig
    executable: /usr/bin/xmrig
    enabled: true
    threads: auto
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.TickIntervalSec != defaultTickIntervalSec {
		t.Fatalf("expected default tick interval, got %d", cfg.TickIntervalSec)
	}
	if cfg.Logging.Dir != defaultLogDir {
		t.Fatalf("expected default log dir, got %q", cfg.Logging.Dir)
	}
	if cfg.Scheduling.AutoswitchIntervalSec != defaultAutoswitchSecMin {
		t.Fatalf("expected autoswitch interval floor applied, got %d", cfg.Scheduling.AutoswitchIntervalSec)
	}
	if len(cfg.Miners) != 1 || cfg.Miners[0].ID != "rig-1" {
		t.Fatalf("expected one miner rig-1, got %+v", cfg.Miners)
	}
	if !cfg.Miners[0].Threads.IsAuto() {
		t.Fatal("expected threads: auto to parse as the auto variant")
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	path := writeTemp(t, `
miners:
  - id: rig-1
    type: xmrig
    executable: /usr/bin/xmrig
  - id: rig-1
    type: xmrig
    executable: /usr/bin/xmrig
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected duplicate id to be rejected")
	}
}

func TestLoadRejectsMissingID(t *testing.T) {
	path := writeTemp(t, `
miners:
  - type: xmrig
    executable: /usr/bin/xmrig
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected missing id to be rejected")
	}
}

func TestDefinitionsByID(t *testing.T) {
	path := writeTemp(t, `
miners:
  - id: rig-1
    type: xmrig
    executable: /usr/bin/xmrig
  - id: rig-2
    type: cpuminer-opt
    executable: /usr/bin/cpuminer
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	byID := cfg.DefinitionsByID()
	if len(byID) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(byID))
	}
	if byID["rig-2"].Type != "cpuminer-opt" {
		t.Fatalf("expected rig-2 to be cpuminer-opt, got %q", byID["rig-2"].Type)
	}
}
