package platform

import (
	"context"
	"fmt"
	"sync"
	"time"

	"reassort/internal/evo"
	"reassort/internal/model"
	"reassort/internal/storage"
)

type Config struct {
	Store storage.Store
}

// Lab owns the store and runs simulations against it. Concurrent runs are
// allowed as long as their run IDs differ; each run has its own driver and
// random stream.
type Lab struct {
	store storage.Store

	mu      sync.Mutex
	started bool
	active  map[string]struct{}
}

func NewLab(cfg Config) *Lab {
	return &Lab{
		store:  cfg.Store,
		active: make(map[string]struct{}),
	}
}

func (l *Lab) Init(ctx context.Context) error {
	if l.store == nil {
		return fmt.Errorf("store is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return nil
	}
	if err := l.store.Init(ctx); err != nil {
		return err
	}
	l.started = true
	return nil
}

func (l *Lab) Reset(ctx context.Context) error {
	if resetter, ok := l.store.(storage.Resetter); ok {
		if err := resetter.Reset(ctx); err != nil {
			return err
		}
	}
	l.mu.Lock()
	l.started = false
	l.active = make(map[string]struct{})
	l.mu.Unlock()
	return l.Init(ctx)
}

func (l *Lab) Store() storage.Store {
	return l.store
}

// RunSpec describes one simulation to execute and persist.
type RunSpec struct {
	RunID       string
	Destination string
	Params      evo.Params
	// Extra receives every record in addition to persistence, for live
	// consumers. Optional.
	Extra evo.Sink
}

// RunOutcome is the persisted view of a finished simulation.
type RunOutcome struct {
	Config  model.RunConfig
	Records []model.GenerationRecord
	Summary model.RunSummary
	Result  evo.RunResult
}

// RunSimulation executes the full driver for spec, streams its records into
// memory (and spec.Extra, when set), and persists config, records, and
// summary under spec.RunID.
func (l *Lab) RunSimulation(ctx context.Context, spec RunSpec) (RunOutcome, error) {
	if spec.RunID == "" {
		return RunOutcome{}, fmt.Errorf("run id is required")
	}
	if err := l.registerRun(spec.RunID); err != nil {
		return RunOutcome{}, err
	}
	defer l.unregisterRun(spec.RunID)

	driver, err := evo.NewDriver(spec.Params)
	if err != nil {
		return RunOutcome{}, err
	}

	records := make([]model.GenerationRecord, 0, spec.Params.Replicates)
	sink := evo.SinkFunc(func(rec evo.GenerationRecord) error {
		records = append(records, toModelRecord(rec))
		if spec.Extra != nil {
			return spec.Extra.Record(rec)
		}
		return nil
	})

	result, err := driver.Run(ctx, sink)
	if err != nil {
		return RunOutcome{}, err
	}

	cfg := toModelConfig(spec)
	summary := toModelSummary(spec.RunID, result)

	if err := l.store.SaveRunConfig(ctx, cfg); err != nil {
		return RunOutcome{}, fmt.Errorf("save run config %s: %w", spec.RunID, err)
	}
	if err := l.store.SaveRecords(ctx, spec.RunID, records); err != nil {
		return RunOutcome{}, fmt.Errorf("save records %s: %w", spec.RunID, err)
	}
	if err := l.store.SaveRunSummary(ctx, summary); err != nil {
		return RunOutcome{}, fmt.Errorf("save run summary %s: %w", spec.RunID, err)
	}

	return RunOutcome{
		Config:  cfg,
		Records: records,
		Summary: summary,
		Result:  result,
	}, nil
}

func (l *Lab) registerRun(runID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.started {
		return fmt.Errorf("lab is not initialized")
	}
	if _, exists := l.active[runID]; exists {
		return fmt.Errorf("run already active: %s", runID)
	}
	l.active[runID] = struct{}{}
	return nil
}

func (l *Lab) unregisterRun(runID string) {
	l.mu.Lock()
	delete(l.active, runID)
	l.mu.Unlock()
}

func toModelRecord(rec evo.GenerationRecord) model.GenerationRecord {
	return model.GenerationRecord{
		VersionedRecord: storage.Versioned(),
		Replicate:       rec.Replicate,
		Generation:      rec.Generation,
		Pop1:            rec.Pop1,
		Pop2:            rec.Pop2,
		Stat1:           rec.Stat1.String(),
		Stat2:           rec.Stat2.String(),
	}
}

func toModelConfig(spec RunSpec) model.RunConfig {
	p := spec.Params
	return model.RunConfig{
		VersionedRecord: storage.Versioned(),
		RunID:           spec.RunID,
		Destination:     spec.Destination,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339),
		SegmentLength:   p.SegmentLength,
		MutationRate:    p.MutationRate,
		S:               p.S,
		Cost:            p.Cost,
		Capacity:        p.Capacity,
		InitialSize:     p.InitialSize,
		SingleRatio:     p.SingleRatio,
		Reassortment:    p.Reassortment,
		Generations:     p.Generations,
		Replicates:      p.Replicates,
		BackMutation:    p.BackMutation,
		RecordMode:      string(p.RecordMode),
		PerGeneration:   p.PerGeneration,
		UntilExtinction: p.UntilExtinction,
		Seed:            p.Seed,
	}
}

func toModelSummary(runID string, result evo.RunResult) model.RunSummary {
	summary := model.RunSummary{
		VersionedRecord: storage.Versioned(),
		RunID:           runID,
		ReplicatesRun:   len(result.Replicates),
		RecordCount:     result.Records,
		ElapsedMS:       result.Elapsed.Milliseconds(),
	}
	for _, rep := range result.Replicates {
		if rep.Extinct {
			summary.ExtinctReplicates++
		}
	}
	if n := len(result.Replicates); n > 0 {
		summary.FinalPop1 = result.Replicates[n-1].FinalPop1
		summary.FinalPop2 = result.Replicates[n-1].FinalPop2
	}
	return summary
}
