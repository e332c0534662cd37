// Package sweep runs one simulation per combination of swept parameter
// values. Cells are independent: each gets its own derived seed, so a
// parallel sweep is reproducible per cell but does not reproduce the draw
// sequence of a serial single-stream sweep.
package sweep

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"

	"reassort/internal/evo"
	"reassort/internal/model"
	"reassort/internal/platform"
)

// Axis is one swept parameter and the values it takes.
type Axis struct {
	Name   string
	Values []float64
}

// Grid is an ordered set of axes; cells are their cartesian product.
type Grid struct {
	Axes []Axis
}

// Cell is one parameter combination, keyed by axis name.
type Cell map[string]float64

// Cells expands the grid in row-major order (last axis varies fastest).
// An empty grid yields a single empty cell.
func (g Grid) Cells() []Cell {
	cells := []Cell{{}}
	for _, axis := range g.Axes {
		expanded := make([]Cell, 0, len(cells)*len(axis.Values))
		for _, cell := range cells {
			for _, v := range axis.Values {
				next := make(Cell, len(cell)+1)
				for k, val := range cell {
					next[k] = val
				}
				next[axis.Name] = v
				expanded = append(expanded, next)
			}
		}
		cells = expanded
	}
	return cells
}

// Apply overrides one named parameter on p. Axis names follow the historical
// experiment option names.
func Apply(p evo.Params, name string, value float64) (evo.Params, error) {
	switch name {
	case "mu":
		p.MutationRate = value
	case "s":
		p.S = value
	case "cost":
		p.Cost = value
	case "r":
		p.Reassortment = value
	case "n1r":
		p.SingleRatio = value
	case "L":
		p.SegmentLength = int(value)
	case "N0":
		p.InitialSize = int(value)
	case "K":
		p.Capacity = int(value)
	case "gen_num":
		p.Generations = int(value)
	case "rep":
		p.Replicates = int(value)
	default:
		return evo.Params{}, fmt.Errorf("unknown sweep parameter: %s", name)
	}
	return p, nil
}

// CellResult is the outcome of one sweep cell.
type CellResult struct {
	Index     int
	RunID     string
	Overrides Cell
	Summary   model.RunSummary
}

// Runner executes a sweep against a Lab.
type Runner struct {
	Lab      *platform.Lab
	Workers  int
	BaseSeed uint64
	Logger   *log.Logger
}

// Run executes one simulation per grid cell. Cell i runs with seed
// BaseSeed+i and run ID "<destination>-cell<i>". Results are returned in
// cell order regardless of worker count.
func (r *Runner) Run(ctx context.Context, base evo.Params, grid Grid, destination string) ([]CellResult, error) {
	if r.Lab == nil {
		return nil, fmt.Errorf("lab is required")
	}
	if destination == "" {
		return nil, fmt.Errorf("destination is required")
	}
	logger := r.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}

	cells := grid.Cells()
	results := make([]CellResult, 0, len(cells))

	var mu sync.Mutex
	p := pool.New().WithErrors().WithMaxGoroutines(workers)
	for i, cell := range cells {
		i, cell := i, cell
		p.Go(func() error {
			params := base
			var err error
			for _, name := range sortedKeys(cell) {
				params, err = Apply(params, name, cell[name])
				if err != nil {
					return err
				}
			}
			params.Seed = r.BaseSeed + uint64(i)

			runID := fmt.Sprintf("%s-cell%03d", destination, i)
			logger.Info("sweep cell", "run_id", runID, "overrides", cell)

			outcome, err := r.Lab.RunSimulation(ctx, platform.RunSpec{
				RunID:       runID,
				Destination: destination,
				Params:      params,
			})
			if err != nil {
				return fmt.Errorf("sweep cell %d: %w", i, err)
			}

			mu.Lock()
			results = append(results, CellResult{
				Index:     i,
				RunID:     runID,
				Overrides: cell,
				Summary:   outcome.Summary,
			})
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	return results, nil
}

func sortedKeys(cell Cell) []string {
	keys := make([]string, 0, len(cell))
	for k := range cell {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
