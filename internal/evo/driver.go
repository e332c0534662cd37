package evo

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/rand"

	"reassort/internal/genome"
)

// Sink consumes generation records as the driver produces them. The driver
// performs no I/O itself.
type Sink interface {
	Record(rec GenerationRecord) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(rec GenerationRecord) error

func (f SinkFunc) Record(rec GenerationRecord) error {
	return f(rec)
}

// ReplicateResult summarizes one replicate of the simulation.
type ReplicateResult struct {
	Replicate      int
	GenerationsRun int
	FinalPop1      int
	FinalPop2      int
	Extinct        bool
}

// RunResult summarizes a full driver run across all replicates.
type RunResult struct {
	Replicates []ReplicateResult
	Records    int
	Elapsed    time.Duration
}

// Driver runs the generation loop: per replicate, mutate every surviving
// agent in both subpopulations, replace both subpopulations through the
// scheduler, then record. Replicates share one random stream; state is fully
// reset between them.
type Driver struct {
	params Params
	rng    *rand.Rand
	mut    *Mutator
	sched  *Scheduler
	rec    Recorder
}

func NewDriver(p Params) (*Driver, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation params: %w", err)
	}
	rng := rand.New(rand.NewSource(p.Seed))
	return &Driver{
		params: p,
		rng:    rng,
		mut:    NewMutator(p, rng),
		sched:  NewScheduler(p, rng),
		rec:    Recorder{Mode: p.RecordMode},
	}, nil
}

// Run executes every replicate, streaming records to sink. A sink error
// aborts the run.
func (d *Driver) Run(ctx context.Context, sink Sink) (RunResult, error) {
	if sink == nil {
		return RunResult{}, fmt.Errorf("record sink is required")
	}

	start := time.Now()
	result := RunResult{Replicates: make([]ReplicateResult, 0, d.params.Replicates)}

	for rep := 1; rep <= d.params.Replicates; rep++ {
		repResult, err := d.runReplicate(ctx, rep, sink, &result.Records)
		if err != nil {
			return RunResult{}, err
		}
		result.Replicates = append(result.Replicates, repResult)
	}

	result.Elapsed = time.Since(start)
	return result, nil
}

func (d *Driver) runReplicate(ctx context.Context, rep int, sink Sink, records *int) (ReplicateResult, error) {
	p := d.params
	singles, twos := d.initialPopulations()
	total := p.InitialSize

	emit := func(gen int) error {
		rec := GenerationRecord{
			Replicate:  rep,
			Generation: gen,
			Pop1:       len(singles),
			Pop2:       len(twos),
			Stat1:      d.rec.Subpop1(singles),
			Stat2:      d.rec.Subpop2(twos),
		}
		if err := sink.Record(rec); err != nil {
			return fmt.Errorf("record replicate %d generation %d: %w", rep, gen, err)
		}
		*records++
		return nil
	}

	if p.PerGeneration {
		if err := emit(0); err != nil {
			return ReplicateResult{}, err
		}
	}

	generationsRun := 0
	extinct := false
	for gen := 1; gen <= p.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return ReplicateResult{}, err
		}
		if p.UntilExtinction && (len(singles) == 0 || len(twos) == 0) {
			extinct = true
			break
		}

		for i := range singles {
			d.mut.MutateSingle(&singles[i])
		}
		for i := range twos {
			d.mut.MutateTwo(&twos[i])
		}
		singles, twos = d.sched.Next(singles, twos, total)
		total = len(singles) + len(twos)
		generationsRun = gen

		if p.PerGeneration {
			if err := emit(gen); err != nil {
				return ReplicateResult{}, err
			}
		}
	}

	if !p.PerGeneration {
		if err := emit(generationsRun); err != nil {
			return ReplicateResult{}, err
		}
	}

	return ReplicateResult{
		Replicate:      rep,
		GenerationsRun: generationsRun,
		FinalPop1:      len(singles),
		FinalPop2:      len(twos),
		Extinct:        extinct,
	}, nil
}

// initialPopulations builds floor(N0*N1r) single-segment and
// floor(N0*(1-N1r)) two-segment agents, all at zero mutation load.
func (d *Driver) initialPopulations() ([]genome.SingleSegment, []genome.TwoSegment) {
	p := d.params
	fp := p.fitness()

	n1 := int(float64(p.InitialSize) * p.SingleRatio)
	n2 := int(float64(p.InitialSize) * (1 - p.SingleRatio))

	singles := make([]genome.SingleSegment, 0, n1)
	for i := 0; i < n1; i++ {
		singles = append(singles, genome.NewSingleSegment(0, fp))
	}
	twos := make([]genome.TwoSegment, 0, n2)
	for i := 0; i < n2; i++ {
		twos = append(twos, genome.NewTwoSegment(0, 0, fp))
	}
	return singles, twos
}
