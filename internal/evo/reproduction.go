package evo

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"reassort/internal/genome"
)

// Scheduler assembles the next generation of both subpopulations from the
// current (already mutated) one.
//
// Expected progeny per agent is fitness damped by the logistic factor
// f = 2/(1+N/K); the realized count is a Poisson draw. Two-segment parents
// reproduce in uniformly drawn pairs so that every reassortment happens
// between two distinct agents; a lone leftover parent self-replicates its
// remaining progeny without mixing.
type Scheduler struct {
	capacity int
	fp       genome.FitnessParams
	rng      *rand.Rand
	cross    *Reassorter
}

func NewScheduler(p Params, rng *rand.Rand) *Scheduler {
	return &Scheduler{
		capacity: p.Capacity,
		fp:       p.fitness(),
		rng:      rng,
		cross:    NewReassorter(p, rng),
	}
}

// Next replaces both subpopulations. total is the combined population size
// the damping factor is computed from (the size after the previous
// generation's reproduction).
func (s *Scheduler) Next(singles []genome.SingleSegment, twos []genome.TwoSegment, total int) ([]genome.SingleSegment, []genome.TwoSegment) {
	f := 2 / (1 + float64(total)/float64(s.capacity))

	next1 := make([]genome.SingleSegment, 0, len(singles))
	for i := range singles {
		n := s.progenyCount(singles[i].W, f)
		for j := 0; j < n; j++ {
			next1 = append(next1, genome.NewSingleSegment(singles[i].K, s.fp))
		}
	}

	pending := make([]int, 0, len(twos))
	for i := range twos {
		twos[i].Progeny = s.progenyCount(twos[i].W, f)
		if twos[i].Progeny > 0 {
			pending = append(pending, i)
		}
	}
	next2 := s.pairPending(twos, pending)

	return next1, next2
}

// progenyCount draws Poisson(w*f) offspring, clamping a non-positive rate to
// zero so the distribution is never built with an invalid parameter.
func (s *Scheduler) progenyCount(w, f float64) int {
	rate := w * f
	if rate <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: rate, Src: s.rng}.Rand())
}

// pairPending consumes the planned progeny of the pending two-segment
// parents. pending holds indices into twos with Progeny > 0 and is used as a
// swap-remove array so exhausted parents leave in O(1).
func (s *Scheduler) pairPending(twos []genome.TwoSegment, pending []int) []genome.TwoSegment {
	next := make([]genome.TwoSegment, 0, 2*len(pending))

	for len(pending) >= 2 {
		// Uniform unordered pair without replacement.
		ai := s.rng.Intn(len(pending))
		bi := s.rng.Intn(len(pending) - 1)
		if bi >= ai {
			bi++
		}
		a, b := pending[ai], pending[bi]

		o1, o2 := s.cross.Cross(twos[a], twos[b])
		next = append(next, o1, o2)
		twos[a].Progeny--
		twos[b].Progeny--

		// Remove the higher position first so the lower stays valid.
		hi, lo := ai, bi
		if hi < lo {
			hi, lo = lo, hi
		}
		if twos[pending[hi]].Progeny == 0 {
			pending[hi] = pending[len(pending)-1]
			pending = pending[:len(pending)-1]
		}
		if twos[pending[lo]].Progeny == 0 {
			pending[lo] = pending[len(pending)-1]
			pending = pending[:len(pending)-1]
		}
	}

	// A lone leftover parent has no partner: replicate its remaining progeny
	// without cross-segment mixing.
	for _, idx := range pending {
		for j := 0; j < twos[idx].Progeny; j++ {
			next = append(next, genome.NewTwoSegment(twos[idx].K1, twos[idx].K2, s.fp))
		}
		twos[idx].Progeny = 0
	}

	return next
}
