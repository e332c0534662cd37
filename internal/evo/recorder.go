package evo

import (
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"reassort/internal/genome"
)

const (
	// EmptyScalar is the recorded statistic for an empty subpopulation in
	// mean and min modes.
	EmptyScalar = "-1"
	// EmptyList is the recorded statistic for an empty subpopulation in
	// full mode.
	EmptyList = "NA"
)

// Statistic is one subpopulation's recorded mutation-load summary.
type Statistic struct {
	Mode   RecordMode
	Empty  bool
	Mean   float64
	Min    int
	Counts []int
}

// String formats the statistic for the record stream: mean with two
// decimals, min as an integer, full as a dot-joined count list.
func (st Statistic) String() string {
	if st.Empty {
		if st.Mode == RecordFull {
			return EmptyList
		}
		return EmptyScalar
	}
	switch st.Mode {
	case RecordMean:
		return strconv.FormatFloat(st.Mean, 'f', 2, 64)
	case RecordMin:
		return strconv.Itoa(st.Min)
	default:
		parts := make([]string, len(st.Counts))
		for i, k := range st.Counts {
			parts[i] = strconv.Itoa(k)
		}
		return strings.Join(parts, ".")
	}
}

// GenerationRecord is one row of the record stream.
type GenerationRecord struct {
	Replicate  int
	Generation int
	Pop1       int
	Pop2       int
	Stat1      Statistic
	Stat2      Statistic
}

// Recorder summarizes subpopulation mutation loads in one of three modes.
type Recorder struct {
	Mode RecordMode
}

// Subpop1 summarizes the single-segment subpopulation.
func (r Recorder) Subpop1(singles []genome.SingleSegment) Statistic {
	loads := make([]int, len(singles))
	for i := range singles {
		loads[i] = singles[i].K
	}
	return r.statistic(loads)
}

// Subpop2 summarizes the two-segment subpopulation by total load.
func (r Recorder) Subpop2(twos []genome.TwoSegment) Statistic {
	loads := make([]int, len(twos))
	for i := range twos {
		loads[i] = twos[i].K()
	}
	return r.statistic(loads)
}

func (r Recorder) statistic(loads []int) Statistic {
	if len(loads) == 0 {
		return Statistic{Mode: r.Mode, Empty: true}
	}
	st := Statistic{Mode: r.Mode}
	switch r.Mode {
	case RecordMean:
		xs := make([]float64, len(loads))
		for i, k := range loads {
			xs[i] = float64(k)
		}
		st.Mean = stat.Mean(xs, nil)
	case RecordMin:
		min := loads[0]
		for _, k := range loads[1:] {
			if k < min {
				min = k
			}
		}
		st.Min = min
	default:
		st.Counts = loads
	}
	return st
}
