package evo

import (
	"fmt"

	"reassort/internal/genome"
)

// RecordMode selects which mutation-load statistic is recorded per
// subpopulation.
type RecordMode string

const (
	// RecordMean records the mean mutation count of the living agents.
	RecordMean RecordMode = "mean"
	// RecordFull records every living agent's mutation count.
	RecordFull RecordMode = "full"
	// RecordMin records the smallest mutation count present.
	RecordMin RecordMode = "min"
)

// Params is the immutable configuration of one simulation run.
type Params struct {
	SegmentLength int     // L, bases per segment
	MutationRate  float64 // mu, per base per generation
	S             float64 // fitness decrease per deleterious mutation
	Cost          float64 // fitness penalty for carrying two segments
	Capacity      int     // K, carrying capacity
	InitialSize   int     // N0
	SingleRatio   float64 // N1r, initial fraction of single-segment agents
	Reassortment  float64 // r, probability a reproducing pair reassorts

	Generations int
	Replicates  int

	BackMutation    bool
	RecordMode      RecordMode
	PerGeneration   bool
	UntilExtinction bool

	Seed uint64
}

// DefaultParams mirrors the historical defaults of the reference experiments.
func DefaultParams() Params {
	return Params{
		SegmentLength: 300,
		MutationRate:  0.0005,
		S:             0.05,
		Cost:          0,
		Capacity:      1000,
		InitialSize:   1000,
		SingleRatio:   0.5,
		Reassortment:  0.5,
		Generations:   10,
		Replicates:    1,
		RecordMode:    RecordMean,
		Seed:          1,
	}
}

// Validate rejects configurations before any simulation work begins.
func (p Params) Validate() error {
	if p.SegmentLength <= 0 {
		return fmt.Errorf("segment length must be > 0, got %d", p.SegmentLength)
	}
	if p.MutationRate < 0 || p.MutationRate > 1 {
		return fmt.Errorf("mutation rate must be in [0, 1], got %g", p.MutationRate)
	}
	if p.S < 0 || p.S >= 1 {
		return fmt.Errorf("selection coefficient must be in [0, 1), got %g", p.S)
	}
	if p.Cost < 0 {
		return fmt.Errorf("segmentation cost must be >= 0, got %g", p.Cost)
	}
	if p.Capacity <= 0 {
		return fmt.Errorf("carrying capacity must be > 0, got %d", p.Capacity)
	}
	if p.InitialSize <= 0 {
		return fmt.Errorf("initial population must be > 0, got %d", p.InitialSize)
	}
	if p.SingleRatio < 0 || p.SingleRatio > 1 {
		return fmt.Errorf("single-segment ratio must be in [0, 1], got %g", p.SingleRatio)
	}
	if p.Reassortment < 0 || p.Reassortment > 1 {
		return fmt.Errorf("reassortment rate must be in [0, 1], got %g", p.Reassortment)
	}
	if p.Generations <= 0 {
		return fmt.Errorf("generations must be > 0, got %d", p.Generations)
	}
	if p.Replicates <= 0 {
		return fmt.Errorf("replicates must be > 0, got %d", p.Replicates)
	}
	switch p.RecordMode {
	case RecordMean, RecordFull, RecordMin:
	default:
		return fmt.Errorf("unsupported record mode: %q", p.RecordMode)
	}
	return nil
}

func (p Params) fitness() genome.FitnessParams {
	return genome.FitnessParams{S: p.S, Cost: p.Cost}
}
