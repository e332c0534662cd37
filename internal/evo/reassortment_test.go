package evo

import (
	"testing"

	"golang.org/x/exp/rand"

	"reassort/internal/genome"
)

func TestCrossAlwaysSwapsAtFullRate(t *testing.T) {
	p := testParams()
	p.Reassortment = 1
	c := NewReassorter(p, rand.New(rand.NewSource(1)))

	a := genome.NewTwoSegment(2, 0, p.fitness())
	b := genome.NewTwoSegment(0, 3, p.fitness())
	for trial := 0; trial < 1000; trial++ {
		o1, o2 := c.Cross(a, b)
		if o1.K1 != 2 || o1.K2 != 3 || o2.K1 != 0 || o2.K2 != 0 {
			t.Fatalf("trial %d: expected swapped segments, got %+v / %+v", trial, o1, o2)
		}
	}
}

func TestCrossNeverSwapsAtZeroRate(t *testing.T) {
	p := testParams()
	p.Reassortment = 0
	c := NewReassorter(p, rand.New(rand.NewSource(1)))

	a := genome.NewTwoSegment(2, 0, p.fitness())
	b := genome.NewTwoSegment(0, 3, p.fitness())
	for trial := 0; trial < 1000; trial++ {
		o1, o2 := c.Cross(a, b)
		if o1.K1 != a.K1 || o1.K2 != a.K2 || o2.K1 != b.K1 || o2.K2 != b.K2 {
			t.Fatalf("trial %d: expected exact copies, got %+v / %+v", trial, o1, o2)
		}
	}
}

func TestCrossConservesTotalLoad(t *testing.T) {
	p := testParams()
	p.Reassortment = 0.5
	rng := rand.New(rand.NewSource(5))
	c := NewReassorter(p, rng)

	for trial := 0; trial < 1000; trial++ {
		a := genome.NewTwoSegment(rng.Intn(10), rng.Intn(10), p.fitness())
		b := genome.NewTwoSegment(rng.Intn(10), rng.Intn(10), p.fitness())
		o1, o2 := c.Cross(a, b)
		if o1.K()+o2.K() != a.K()+b.K() {
			t.Fatalf("trial %d: load not conserved: parents %d, offspring %d",
				trial, a.K()+b.K(), o1.K()+o2.K())
		}
	}
}

func TestCrossOffspringStateIsFresh(t *testing.T) {
	p := testParams()
	p.Cost = 0.1
	p.Reassortment = 1
	c := NewReassorter(p, rand.New(rand.NewSource(2)))

	a := genome.NewTwoSegment(1, 1, p.fitness())
	b := genome.NewTwoSegment(2, 2, p.fitness())
	a.Progeny = 5
	a.W = -99

	o1, o2 := c.Cross(a, b)
	if o1.Progeny != 0 || o2.Progeny != 0 {
		t.Fatalf("offspring inherited progeny counters: %+v / %+v", o1, o2)
	}
	if want := p.fitness().Fitness(o1.K()) - p.Cost; o1.W != want {
		t.Fatalf("offspring fitness = %v, want %v", o1.W, want)
	}
}
