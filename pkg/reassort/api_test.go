package reassort

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"reassort/internal/evo"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func quickParams() evo.Params {
	p := evo.DefaultParams()
	p.InitialSize = 100
	p.Capacity = 100
	p.Generations = 2
	p.PerGeneration = true
	return p
}

func TestClientRunAssignsRunID(t *testing.T) {
	client := newTestClient(t)
	summary, err := client.Run(context.Background(), RunRequest{Params: quickParams()})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected generated run id")
	}
	if summary.ArtifactsDir != "" {
		t.Fatalf("artifacts written without request: %s", summary.ArtifactsDir)
	}
}

func TestClientRunWritesArtifactsAndIndex(t *testing.T) {
	client := newTestClient(t)
	summary, err := client.Run(context.Background(), RunRequest{
		RunID:          "run-1",
		Destination:    "trial",
		Params:         quickParams(),
		WriteArtifacts: true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.ArtifactsDir == "" {
		t.Fatal("expected artifacts dir")
	}
	for _, file := range []string{"config.json", "records.csv", "summary.json"} {
		if _, err := os.Stat(filepath.Join(summary.ArtifactsDir, file)); err != nil {
			t.Fatalf("missing artifact %s: %v", file, err)
		}
	}

	entries, err := client.Runs(0)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(entries) != 1 || entries[0].RunID != "run-1" {
		t.Fatalf("unexpected run index: %+v", entries)
	}
	if entries[0].RecordCount != summary.Summary.RecordCount {
		t.Fatalf("index record count %d != summary %d", entries[0].RecordCount, summary.Summary.RecordCount)
	}
}

func TestClientRunsHonorsLimit(t *testing.T) {
	client := newTestClient(t)
	for _, id := range []string{"run-a", "run-b", "run-c"} {
		if _, err := client.Run(context.Background(), RunRequest{RunID: id, Params: quickParams(), WriteArtifacts: true}); err != nil {
			t.Fatalf("run %s: %v", id, err)
		}
	}
	entries, err := client.Runs(2)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entry count = %d, want 2", len(entries))
	}
}

func TestClientExport(t *testing.T) {
	client := newTestClient(t)
	if _, err := client.Run(context.Background(), RunRequest{RunID: "run-1", Params: quickParams(), WriteArtifacts: true}); err != nil {
		t.Fatalf("run: %v", err)
	}

	outDir := t.TempDir()
	dst, err := client.Export("run-1", outDir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "records.csv")); err != nil {
		t.Fatalf("missing exported records: %v", err)
	}
}

func TestClientRunValidatesParams(t *testing.T) {
	client := newTestClient(t)
	bad := quickParams()
	bad.Generations = 0
	if _, err := client.Run(context.Background(), RunRequest{Params: bad}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNewRejectsUnknownStore(t *testing.T) {
	if _, err := New(Options{StoreKind: "postgres"}); err == nil {
		t.Fatal("expected error for unknown store kind")
	}
}
