package engine

import (
	"os"
	"path/filepath"
	"testing"

	"mcsim/mcmodel"
)

type testExtra struct {
	Beta       float64 `json:"beta"`
	Iterations int     `json:"iterations"`
}

func TestCheckpointRoundTripResumesRNGSequence(t *testing.T) {
	dir := t.TempDir()
	cfg := &counterConfig{delta: 1}
	// probability 0.5 forces RunInnerStep to actually draw from the RNG
	// for the accept/reject decision on every proposed step.
	handler := &constantHandler{probability: 0.5}

	b, err := NewBase[mcmodel.Float64Energy, *counterStep](123, dir)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		b.RunInnerStep(cfg, handler)
	}

	checkpointPath := filepath.Join(dir, "checkpoint.json")
	extra := testExtra{Beta: 0.5, Iterations: 50}
	if err := b.SaveCheckpoint(checkpointPath, &extra); err != nil {
		t.Fatal(err)
	}
	valueAtCheckpoint := cfg.value
	executedAtCheckpoint := b.StepsExecuted
	rejectedAtCheckpoint := b.StepsRejected

	// Continue the original run for a further 200 steps, recording the
	// exact trajectory.
	const continuation = 200
	wantValues := make([]float64, continuation)
	for i := range wantValues {
		b.RunInnerStep(cfg, handler)
		wantValues[i] = cfg.value
	}

	// Reload into a fresh Base, resume a configuration at the checkpointed
	// value, and replay the same number of steps.
	resumed, err := NewBase[mcmodel.Float64Energy, *counterStep](0, dir)
	if err != nil {
		t.Fatal(err)
	}
	var loadedExtra testExtra
	if err := resumed.LoadCheckpoint(checkpointPath, &loadedExtra); err != nil {
		t.Fatal(err)
	}
	if loadedExtra != extra {
		t.Fatalf("loaded extra = %+v, want %+v", loadedExtra, extra)
	}
	if resumed.StepsExecuted != executedAtCheckpoint || resumed.StepsRejected != rejectedAtCheckpoint {
		t.Fatalf("resumed counters = (%d, %d), want (%d, %d)",
			resumed.StepsExecuted, resumed.StepsRejected, executedAtCheckpoint, rejectedAtCheckpoint)
	}

	resumedCfg := &counterConfig{delta: 1, value: valueAtCheckpoint}
	for i, want := range wantValues {
		resumed.RunInnerStep(resumedCfg, handler)
		if resumedCfg.value != want {
			t.Fatalf("resumed step %d value = %v, want %v (RNG sequence diverged after checkpoint resume)", i, resumedCfg.value, want)
		}
	}
}

func TestSaveCheckpointLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBase[mcmodel.Float64Energy, *counterStep](1, dir)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "cp.json")
	if err := b.SaveCheckpoint(path, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + ".tmp"); err == nil {
		t.Fatal("temp checkpoint file still present after SaveCheckpoint")
	}
}
