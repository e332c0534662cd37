package storage

import (
	"context"

	"reassort/internal/model"
)

// Store defines persistence operations for simulation runs.
type Store interface {
	Init(ctx context.Context) error
	SaveRunConfig(ctx context.Context, cfg model.RunConfig) error
	GetRunConfig(ctx context.Context, runID string) (model.RunConfig, bool, error)
	SaveRecords(ctx context.Context, runID string, records []model.GenerationRecord) error
	GetRecords(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error)
	SaveRunSummary(ctx context.Context, summary model.RunSummary) error
	GetRunSummary(ctx context.Context, runID string) (model.RunSummary, bool, error)
	ListRunIDs(ctx context.Context) ([]string, error)
}

// Resetter is implemented by stores that can drop all persisted state.
type Resetter interface {
	Reset(ctx context.Context) error
}
