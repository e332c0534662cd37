package storage

import (
	"context"
	"testing"

	"reassort/internal/model"
)

func TestMemoryStoreRunConfigRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.RunConfig{
		VersionedRecord: Versioned(),
		RunID:           "run-1",
		SegmentLength:   300,
		MutationRate:    0.0005,
		Capacity:        1000,
	}
	if err := store.SaveRunConfig(ctx, input); err != nil {
		t.Fatalf("save config: %v", err)
	}

	output, ok, err := store.GetRunConfig(ctx, "run-1")
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted config")
	}
	if output.SegmentLength != 300 || output.Capacity != 1000 {
		t.Fatalf("unexpected config: %+v", output)
	}

	if _, ok, err := store.GetRunConfig(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing config lookup = ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreRecordsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.GenerationRecord{
		{VersionedRecord: Versioned(), Replicate: 1, Generation: 0, Pop1: 50, Pop2: 50, Stat1: "0.00", Stat2: "0.00"},
		{VersionedRecord: Versioned(), Replicate: 1, Generation: 1, Pop1: 48, Pop2: 55, Stat1: "0.02", Stat2: "0.04"},
	}
	if err := store.SaveRecords(ctx, "run-1", input); err != nil {
		t.Fatalf("save records: %v", err)
	}

	output, ok, err := store.GetRecords(ctx, "run-1")
	if err != nil {
		t.Fatalf("get records: %v", err)
	}
	if !ok || len(output) != 2 {
		t.Fatalf("unexpected records: ok=%v %+v", ok, output)
	}

	// The store hands out copies; mutating them must not leak back.
	output[0].Pop1 = -1
	again, _, _ := store.GetRecords(ctx, "run-1")
	if again[0].Pop1 != 50 {
		t.Fatalf("stored records were mutated through a returned slice: %+v", again[0])
	}
}

func TestMemoryStoreRunSummaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.RunSummary{VersionedRecord: Versioned(), RunID: "run-1", ReplicatesRun: 3, RecordCount: 12}
	if err := store.SaveRunSummary(ctx, input); err != nil {
		t.Fatalf("save summary: %v", err)
	}
	output, ok, err := store.GetRunSummary(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get summary: ok=%v err=%v", ok, err)
	}
	if output.ReplicatesRun != 3 || output.RecordCount != 12 {
		t.Fatalf("unexpected summary: %+v", output)
	}
}

func TestMemoryStoreListRunIDsSorted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, id := range []string{"run-c", "run-a", "run-b"} {
		if err := store.SaveRunConfig(ctx, model.RunConfig{VersionedRecord: Versioned(), RunID: id}); err != nil {
			t.Fatalf("save config %s: %v", id, err)
		}
	}
	ids, err := store.ListRunIDs(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"run-a", "run-b", "run-c"}
	if len(ids) != len(want) {
		t.Fatalf("unexpected ids: %v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids not sorted: %v", ids)
		}
	}
}

func TestMemoryStoreResetClearsState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.SaveRunConfig(ctx, model.RunConfig{VersionedRecord: Versioned(), RunID: "run-1"}); err != nil {
		t.Fatalf("save config: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok, _ := store.GetRunConfig(ctx, "run-1"); ok {
		t.Fatal("expected reset to drop persisted configs")
	}
}
