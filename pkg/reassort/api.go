// Package reassort is the public entry point for running segmented-virus
// competition simulations and inspecting their persisted results.
package reassort

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"reassort/internal/evo"
	"reassort/internal/model"
	"reassort/internal/platform"
	"reassort/internal/stats"
	"reassort/internal/storage"
)

const (
	defaultDataDir = "data"
	defaultDBPath  = "reassort.db"
)

type Options struct {
	StoreKind string
	DBPath    string
	DataDir   string
}

type Client struct {
	store   storage.Store
	lab     *platform.Lab
	dataDir string
}

// RunRequest describes one simulation. A zero Params means DefaultParams.
type RunRequest struct {
	RunID       string
	Destination string
	Params      evo.Params
	// WriteArtifacts also writes config.json/records.csv/summary.json under
	// DataDir and appends the run index.
	WriteArtifacts bool
}

type RunSummary struct {
	RunID        string
	ArtifactsDir string
	Summary      model.RunSummary
	Elapsed      time.Duration
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = defaultDataDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{
		store:   store,
		lab:     platform.NewLab(platform.Config{Store: store}),
		dataDir: dataDir,
	}, nil
}

func (c *Client) Init(ctx context.Context) error {
	return c.lab.Init(ctx)
}

func (c *Client) Reset(ctx context.Context) error {
	return c.lab.Reset(ctx)
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Run executes one simulation and persists it. A missing run ID gets a fresh
// UUID.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := c.lab.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	outcome, err := c.lab.RunSimulation(ctx, platform.RunSpec{
		RunID:       runID,
		Destination: req.Destination,
		Params:      req.Params,
	})
	if err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{
		RunID:   runID,
		Summary: outcome.Summary,
		Elapsed: outcome.Result.Elapsed,
	}

	if req.WriteArtifacts {
		runDir, err := stats.WriteRunArtifacts(c.dataDir, stats.RunArtifacts{
			Config:  outcome.Config,
			Records: outcome.Records,
			Summary: outcome.Summary,
		})
		if err != nil {
			return RunSummary{}, fmt.Errorf("write run artifacts: %w", err)
		}
		if err := stats.AppendRunIndex(c.dataDir, stats.RunIndexEntry{
			RunID:        runID,
			Destination:  req.Destination,
			Replicates:   req.Params.Replicates,
			Generations:  req.Params.Generations,
			Seed:         req.Params.Seed,
			RecordCount:  outcome.Summary.RecordCount,
			CreatedAtUTC: outcome.Config.CreatedAtUTC,
		}); err != nil {
			return RunSummary{}, fmt.Errorf("append run index: %w", err)
		}
		summary.ArtifactsDir = runDir
	}

	return summary, nil
}

// Runs lists the run index, newest first. limit <= 0 lists everything.
func (c *Client) Runs(limit int) ([]stats.RunIndexEntry, error) {
	entries, err := stats.ListRunIndex(c.dataDir)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Export copies a run's artifacts to outDir and returns the destination.
func (c *Client) Export(runID, outDir string) (string, error) {
	return stats.ExportRunArtifacts(c.dataDir, runID, outDir)
}

// Lab exposes the underlying orchestrator for embedding callers such as the
// sweep runner.
func (c *Client) Lab() *platform.Lab {
	return c.lab
}
