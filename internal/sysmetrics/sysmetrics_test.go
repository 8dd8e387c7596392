package sysmetrics

import "testing"

func TestCollectReturnsPlausibleValues(t *testing.T) {
	snap, err := NewCollector().Collect()
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if snap.CPUCount <= 0 {
		t.Fatalf("expected a positive cpu count, got %d", snap.CPUCount)
	}
	if snap.CollectedAt.IsZero() {
		t.Fatal("expected CollectedAt to be set")
	}
}
