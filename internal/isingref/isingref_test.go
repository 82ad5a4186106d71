package isingref

import (
	"math"
	"testing"

	"mcsim/rng"
)

func TestGridDeltaEInvariant(t *testing.T) {
	g := NewGrid(6, 5, 0.3)
	r := rng.New(1)
	for i := 0; i < 500; i++ {
		before := g.Energy().Float64()
		step := g.ProposeStep(r)
		want := step.DeltaE().Float64()
		g.Commit(step)
		after := g.Energy().Float64()
		if math.Abs((after-before)-want) > 1e-9 {
			t.Fatalf("iteration %d: deltaE invariant violated: after-before=%v, DeltaE()=%v", i, after-before, want)
		}
	}
}

func TestGridEnergyMatchesRecomputation(t *testing.T) {
	g := NewGrid(6, 5, 0.3)
	r := rng.New(2)
	for i := 0; i < 200; i++ {
		g.Commit(g.ProposeStep(r))
	}
	recomputed := g.computeEnergy()
	if math.Abs(recomputed-g.energy) > 1e-9 {
		t.Fatalf("cached energy %v diverged from recomputed energy %v", g.energy, recomputed)
	}
}

func TestChainDeltaEInvariant(t *testing.T) {
	c := NewChain(16)
	r := rng.New(3)
	for i := 0; i < 500; i++ {
		before := c.Energy().Float64()
		step := c.ProposeStep(r)
		want := step.DeltaE().Float64()
		c.Commit(step)
		after := c.Energy().Float64()
		if math.Abs((after-before)-want) > 1e-9 {
			t.Fatalf("iteration %d: deltaE invariant violated: after-before=%v, DeltaE()=%v", i, after-before, want)
		}
	}
}

func TestChainAllSpinsUpIsGroundState(t *testing.T) {
	c := NewChain(16)
	if c.Energy().Float64() != -16 {
		t.Fatalf("all-up energy = %v, want -16", c.Energy().Float64())
	}
}

func TestGridCloneIndependence(t *testing.T) {
	g := NewGrid(4, 4, 0)
	clone := g.Clone()
	r := rng.New(5)
	g.Commit(g.ProposeStep(r))
	if !clone.Equal(clone) {
		t.Fatal("clone not equal to itself")
	}
	if g.Equal(clone) {
		t.Fatal("mutating original also mutated clone")
	}
}
