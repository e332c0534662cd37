package storage

import (
	"context"
	"sort"
	"sync"

	"reassort/internal/model"
)

type MemoryStore struct {
	mu        sync.RWMutex
	configs   map[string]model.RunConfig
	records   map[string][]model.GenerationRecord
	summaries map[string]model.RunSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.configs = make(map[string]model.RunConfig)
	s.records = make(map[string][]model.GenerationRecord)
	s.summaries = make(map[string]model.RunSummary)
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	return s.Init(ctx)
}

func (s *MemoryStore) SaveRunConfig(_ context.Context, cfg model.RunConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.configs[cfg.RunID] = cfg
	return nil
}

func (s *MemoryStore) GetRunConfig(_ context.Context, runID string) (model.RunConfig, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[runID]
	return cfg, ok, nil
}

func (s *MemoryStore) SaveRecords(_ context.Context, runID string, records []model.GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.GenerationRecord, len(records))
	copy(copied, records)
	s.records[runID] = copied
	return nil
}

func (s *MemoryStore) GetRecords(_ context.Context, runID string) ([]model.GenerationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.records[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationRecord, len(records))
	copy(copied, records)
	return copied, true, nil
}

func (s *MemoryStore) SaveRunSummary(_ context.Context, summary model.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summaries[summary.RunID] = summary
	return nil
}

func (s *MemoryStore) GetRunSummary(_ context.Context, runID string) (model.RunSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.summaries[runID]
	return summary, ok, nil
}

func (s *MemoryStore) ListRunIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.configs))
	for id := range s.configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
