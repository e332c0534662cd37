package stats

import (
	"os"
	"path/filepath"
	"testing"

	"reassort/internal/model"
)

func sampleArtifacts(runID string, perGeneration bool) RunArtifacts {
	return RunArtifacts{
		Config: model.RunConfig{
			RunID:         runID,
			CreatedAtUTC:  "2026-08-26T10:00:00Z",
			SegmentLength: 300,
			PerGeneration: perGeneration,
		},
		Records: []model.GenerationRecord{
			{Replicate: 1, Generation: 0, Pop1: 50, Pop2: 50, Stat1: "0.00", Stat2: "0.00"},
			{Replicate: 1, Generation: 1, Pop1: 47, Pop2: 58, Stat1: "0.11", Stat2: "0.05"},
		},
		Summary: model.RunSummary{RunID: runID, ReplicatesRun: 1, RecordCount: 2},
	}
}

func TestWriteRunArtifactsPerGeneration(t *testing.T) {
	baseDir := t.TempDir()
	runDir, err := WriteRunArtifacts(baseDir, sampleArtifacts("run-1", true))
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	if runDir != filepath.Join(baseDir, "run-1") {
		t.Fatalf("unexpected run dir: %s", runDir)
	}
	for _, file := range []string{"config.json", "records.csv", "summary.json"} {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Fatalf("missing artifact %s: %v", file, err)
		}
	}

	rows, ok, err := ReadRecordsCSV(baseDir, "run-1")
	if err != nil || !ok {
		t.Fatalf("read records: ok=%v err=%v", ok, err)
	}
	if len(rows) != 3 {
		t.Fatalf("row count = %d, want header + 2", len(rows))
	}
	header := rows[0]
	want := []string{"rep", "t", "pop1", "pop2", "k1", "k2"}
	for i := range want {
		if header[i] != want[i] {
			t.Fatalf("header = %v, want %v", header, want)
		}
	}
	if rows[1][0] != "1" || rows[1][1] != "0" || rows[1][4] != "0.00" {
		t.Fatalf("unexpected first data row: %v", rows[1])
	}
}

func TestWriteRunArtifactsFinalOnlyOmitsGenerationColumn(t *testing.T) {
	baseDir := t.TempDir()
	if _, err := WriteRunArtifacts(baseDir, sampleArtifacts("run-2", false)); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	rows, ok, err := ReadRecordsCSV(baseDir, "run-2")
	if err != nil || !ok {
		t.Fatalf("read records: ok=%v err=%v", ok, err)
	}
	if len(rows[0]) != 5 || rows[0][1] != "pop1" {
		t.Fatalf("unexpected final-only header: %v", rows[0])
	}
}

func TestWriteRunArtifactsRequiresRunID(t *testing.T) {
	if _, err := WriteRunArtifacts(t.TempDir(), RunArtifacts{}); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestReadRunConfigAndSummary(t *testing.T) {
	baseDir := t.TempDir()
	if _, err := WriteRunArtifacts(baseDir, sampleArtifacts("run-3", true)); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	cfg, ok, err := ReadRunConfig(baseDir, "run-3")
	if err != nil || !ok {
		t.Fatalf("read config: ok=%v err=%v", ok, err)
	}
	if cfg.SegmentLength != 300 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	summary, ok, err := ReadRunSummary(baseDir, "run-3")
	if err != nil || !ok {
		t.Fatalf("read summary: ok=%v err=%v", ok, err)
	}
	if summary.RecordCount != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if _, ok, err := ReadRunConfig(baseDir, "missing"); err != nil || ok {
		t.Fatalf("missing config lookup = ok=%v err=%v", ok, err)
	}
}

func TestRunIndexAppendAndOrdering(t *testing.T) {
	baseDir := t.TempDir()
	entries := []RunIndexEntry{
		{RunID: "run-old", CreatedAtUTC: "2026-08-25T09:00:00Z", RecordCount: 1},
		{RunID: "run-new", CreatedAtUTC: "2026-08-26T09:00:00Z", RecordCount: 2},
	}
	for _, e := range entries {
		if err := AppendRunIndex(baseDir, e); err != nil {
			t.Fatalf("append %s: %v", e.RunID, err)
		}
	}

	listed, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 || listed[0].RunID != "run-new" {
		t.Fatalf("expected newest first, got %+v", listed)
	}

	// Re-appending the same run id replaces the entry in place.
	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "run-old", CreatedAtUTC: "2026-08-25T09:00:00Z", RecordCount: 9}); err != nil {
		t.Fatalf("re-append: %v", err)
	}
	listed, err = ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 || listed[1].RecordCount != 9 {
		t.Fatalf("expected updated entry, got %+v", listed)
	}
}

func TestListRunIndexEmptyDir(t *testing.T) {
	entries, err := ListRunIndex(t.TempDir())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty index, got %+v", entries)
	}
}

func TestExportRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	outDir := t.TempDir()
	if _, err := WriteRunArtifacts(baseDir, sampleArtifacts("run-4", true)); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	dst, err := ExportRunArtifacts(baseDir, "run-4", outDir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, file := range []string{"config.json", "records.csv", "summary.json"} {
		if _, err := os.Stat(filepath.Join(dst, file)); err != nil {
			t.Fatalf("missing exported %s: %v", file, err)
		}
	}

	if _, err := ExportRunArtifacts(baseDir, "missing", outDir); err == nil {
		t.Fatal("expected error exporting unknown run")
	}
}
