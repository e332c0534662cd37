package genome

import "math"

// FitnessParams holds the selection coefficients shared by both genome kinds.
type FitnessParams struct {
	// S is the multiplicative fitness decrease per deleterious mutation.
	S float64
	// Cost is the fixed penalty for carrying a segmented genome.
	Cost float64
}

// Fitness returns the survival weight for a total load of k deleterious
// mutations, (1-s)^k.
func (p FitnessParams) Fitness(k int) float64 {
	return math.Pow(1-p.S, float64(k))
}

// SingleSegment is a virus agent whose whole genome is a single segment.
type SingleSegment struct {
	K int     // deleterious mutation count across the genome
	W float64 // fitness, (1-s)^K
}

func NewSingleSegment(k int, p FitnessParams) SingleSegment {
	return SingleSegment{K: k, W: p.Fitness(k)}
}

// Recompute refreshes fitness after K changed.
func (v *SingleSegment) Recompute(p FitnessParams) {
	v.W = p.Fitness(v.K)
}

// TwoSegment is a virus agent with two independently mutating segments that
// can be exchanged with a co-reproducing partner.
type TwoSegment struct {
	K1 int // deleterious mutations on segment 1
	K2 int // deleterious mutations on segment 2
	W  float64

	// Progeny counts offspring still owed during one reproduction round.
	// It is zero outside of reproduction.
	Progeny int
}

func NewTwoSegment(k1, k2 int, p FitnessParams) TwoSegment {
	return TwoSegment{K1: k1, K2: k2, W: p.Fitness(k1+k2) - p.Cost}
}

// K is the total mutation load across both segments.
func (v TwoSegment) K() int {
	return v.K1 + v.K2
}

// Recompute refreshes fitness after the segment counts changed.
func (v *TwoSegment) Recompute(p FitnessParams) {
	v.W = p.Fitness(v.K()) - p.Cost
}
