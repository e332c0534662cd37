package evo

import (
	"golang.org/x/exp/rand"

	"reassort/internal/genome"
)

// Reassorter produces the two offspring of a reproducing pair of two-segment
// parents, exchanging second segments with probability R.
type Reassorter struct {
	r   float64
	fp  genome.FitnessParams
	rng *rand.Rand
}

func NewReassorter(p Params, rng *rand.Rand) *Reassorter {
	return &Reassorter{r: p.Reassortment, fp: p.fitness(), rng: rng}
}

// Cross returns two offspring for the pair (a, b). With probability r the
// offspring carry mixed segments (a.K1 with b.K2, and b.K1 with a.K2);
// otherwise each offspring is an exact segment-count copy of one parent.
// Offspring fitness is computed fresh and no transient state is inherited.
func (c *Reassorter) Cross(a, b genome.TwoSegment) (genome.TwoSegment, genome.TwoSegment) {
	if c.rng.Float64() < c.r {
		return genome.NewTwoSegment(a.K1, b.K2, c.fp), genome.NewTwoSegment(b.K1, a.K2, c.fp)
	}
	return genome.NewTwoSegment(a.K1, a.K2, c.fp), genome.NewTwoSegment(b.K1, b.K2, c.fp)
}
