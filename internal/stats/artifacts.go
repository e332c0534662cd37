package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"reassort/internal/model"
)

const runIndexFile = "run_index.json"

// RunArtifacts is everything one run leaves on disk.
type RunArtifacts struct {
	Config  model.RunConfig          `json:"config"`
	Records []model.GenerationRecord `json:"records"`
	Summary model.RunSummary         `json:"summary"`
}

// RunIndexEntry is one line of the destination-wide run index.
type RunIndexEntry struct {
	RunID        string `json:"run_id"`
	Destination  string `json:"destination,omitempty"`
	Replicates   int    `json:"replicates"`
	Generations  int    `json:"generations"`
	Seed         uint64 `json:"seed"`
	RecordCount  int    `json:"record_count"`
	CreatedAtUTC string `json:"created_at_utc"`
}

// WriteRunArtifacts writes config.json, records.csv, and summary.json under
// baseDir/<runID> and returns the run directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeRecordsCSV(filepath.Join(runDir, "records.csv"), artifacts.Config.PerGeneration, artifacts.Records); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "summary.json"), artifacts.Summary); err != nil {
		return "", err
	}

	return runDir, nil
}

// writeRecordsCSV writes the record stream in the historical column layout:
// rep,t,pop1,pop2,k1,k2 per generation, or rep,pop1,pop2,k1,k2 when only the
// final state of each replicate is recorded.
func writeRecordsCSV(path string, perGeneration bool, records []model.GenerationRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{"rep", "pop1", "pop2", "k1", "k2"}
	if perGeneration {
		header = []string{"rep", "t", "pop1", "pop2", "k1", "k2"}
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(rec.Replicate))
		if perGeneration {
			row = append(row, strconv.Itoa(rec.Generation))
		}
		row = append(row,
			strconv.Itoa(rec.Pop1),
			strconv.Itoa(rec.Pop2),
			rec.Stat1,
			rec.Stat2,
		)
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadRecordsCSV reads back a records.csv written by WriteRunArtifacts.
func ReadRecordsCSV(baseDir, runID string) ([][]string, bool, error) {
	path := filepath.Join(baseDir, runID, "records.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAtUTC > entries[j].CreatedAtUTC
	})
	return entries, nil
}

func ReadRunConfig(baseDir, runID string) (model.RunConfig, bool, error) {
	path := filepath.Join(baseDir, runID, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.RunConfig{}, false, nil
		}
		return model.RunConfig{}, false, err
	}

	var cfg model.RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return model.RunConfig{}, false, err
	}
	return cfg, true, nil
}

func ReadRunSummary(baseDir, runID string) (model.RunSummary, bool, error) {
	path := filepath.Join(baseDir, runID, "summary.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.RunSummary{}, false, nil
		}
		return model.RunSummary{}, false, err
	}

	var summary model.RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.RunSummary{}, false, err
	}
	return summary, true, nil
}

// ExportRunArtifacts copies a run's artifacts to outDir/<runID>.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	for _, file := range []string{"config.json", "records.csv", "summary.json"} {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	return dst, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
