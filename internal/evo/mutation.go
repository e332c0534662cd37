package evo

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"reassort/internal/genome"
)

// Mutator applies one generation's worth of mutation events to an agent.
//
// The number of events per agent is a single Binomial(L, mu) draw, an
// aggregate load change rather than a per-base mutation map. Forward events
// only add load; with back mutation enabled each event removes load with
// probability proportional to the agent's current load.
type Mutator struct {
	length int
	back   bool
	fp     genome.FitnessParams

	rng   *rand.Rand
	binom distuv.Binomial
}

func NewMutator(p Params, rng *rand.Rand) *Mutator {
	return &Mutator{
		length: p.SegmentLength,
		back:   p.BackMutation,
		fp:     p.fitness(),
		rng:    rng,
		binom:  distuv.Binomial{N: float64(p.SegmentLength), P: p.MutationRate, Src: rng},
	}
}

func (m *Mutator) eventCount() int {
	if m.binom.P <= 0 {
		return 0
	}
	return int(m.binom.Rand())
}

// MutateSingle applies this generation's mutation events to a single-segment
// agent and recomputes its fitness.
func (m *Mutator) MutateSingle(v *genome.SingleSegment) {
	n := m.eventCount()
	if !m.back {
		v.K += n
	} else {
		for i := 0; i < n; i++ {
			if m.rng.Float64()*float64(m.length) < float64(v.K) {
				v.K--
			} else {
				v.K++
			}
		}
	}
	v.Recompute(m.fp)
}

// MutateTwo applies this generation's mutation events to a two-segment agent
// and recomputes its fitness.
//
// Without back mutation the events are allocated across segments by one
// coarse split draw: floor(U(0,1)*(n+1)) events land on segment 1 and the
// rest on segment 2. With back mutation each event is handled independently:
// removal targets a segment proportional to its share of the total load,
// addition picks a segment with equal probability.
func (m *Mutator) MutateTwo(v *genome.TwoSegment) {
	n := m.eventCount()
	if !m.back {
		split := int(m.rng.Float64() * float64(n+1))
		v.K1 += split
		v.K2 += n - split
	} else {
		for i := 0; i < n; i++ {
			p := m.rng.Float64()
			if m.rng.Float64()*float64(m.length) < float64(v.K()) {
				switch {
				case v.K1 == 0:
					v.K2--
				case v.K2 == 0:
					v.K1--
				default:
					if p < float64(v.K1)/float64(v.K()) {
						v.K1--
					} else {
						v.K2--
					}
				}
			} else {
				if p < 0.5 {
					v.K1++
				} else {
					v.K2++
				}
			}
		}
	}
	v.Recompute(m.fp)
}
