package isingref

import "mcsim/rng"
import "mcsim/mcmodel"

// Chain is an N-site periodic 1D Ising chain with coupling J=1 and no
// external field, used for the plain-vs-rejection-free agreement check.
type Chain struct {
	Size  int
	Spins []int

	energy float64
}

// NewChain returns a Chain of the given size, all spins up.
func NewChain(size int) *Chain {
	spins := make([]int, size)
	for i := range spins {
		spins[i] = 1
	}
	c := &Chain{Size: size, Spins: spins}
	c.energy = c.computeEnergy()
	return c
}

func (c *Chain) computeEnergy() float64 {
	total := 0.0
	for i := 0; i < c.Size; i++ {
		j := (i + 1) % c.Size
		total -= float64(c.Spins[i] * c.Spins[j])
	}
	return total
}

func (c *Chain) deltaEFlip(i int) float64 {
	left := (i - 1 + c.Size) % c.Size
	right := (i + 1) % c.Size
	s := float64(c.Spins[i])
	neighborSum := float64(c.Spins[left] + c.Spins[right])
	return 2 * s * neighborSum
}

// Energy returns the current total energy.
func (c *Chain) Energy() mcmodel.Float64Energy { return mcmodel.Float64Energy(c.energy) }

// Clone returns a deep copy.
func (c *Chain) Clone() *Chain {
	return &Chain{Size: c.Size, Spins: append([]int(nil), c.Spins...), energy: c.energy}
}

// Equal reports whether two chains have identical spins.
func (c *Chain) Equal(o *Chain) bool {
	if c.Size != o.Size {
		return false
	}
	for i := range c.Spins {
		if c.Spins[i] != o.Spins[i] {
			return false
		}
	}
	return true
}

// ChainFlipStep proposes flipping the spin at Index.
type ChainFlipStep struct {
	chain *Chain
	Index int
	delta float64
}

func (s *ChainFlipStep) DeltaE() mcmodel.Float64Energy       { return mcmodel.Float64Energy(s.delta) }
func (s *ChainFlipStep) IsExecutable() bool                  { return true }
func (s *ChainFlipStep) SelectionProbabilityFactor() float64 { return 1 }

func (s *ChainFlipStep) Execute() {
	s.chain.Spins[s.Index] *= -1
	s.chain.energy += s.delta
}

// PreviewReferenceMatch reports whether committing s would leave the chain
// equal to ref, without mutating the chain.
func (s *ChainFlipStep) PreviewReferenceMatch(ref *Chain) bool {
	for i := range s.chain.Spins {
		want := s.chain.Spins[i]
		if i == s.Index {
			want = -want
		}
		if want != ref.Spins[i] {
			return false
		}
	}
	return true
}

// ProposeStep picks a uniformly random site to flip.
func (c *Chain) ProposeStep(r rng.Source) *ChainFlipStep {
	i := int(r.UniformUint32In(0, uint32(c.Size-1)))
	return &ChainFlipStep{chain: c, Index: i, delta: c.deltaEFlip(i)}
}

// Commit applies s and updates the cached running energy.
func (c *Chain) Commit(s *ChainFlipStep) { s.Execute() }

// AllSteps enumerates a flip of every site.
func (c *Chain) AllSteps(r rng.Source) []*ChainFlipStep {
	steps := make([]*ChainFlipStep, c.Size)
	for i := 0; i < c.Size; i++ {
		steps[i] = &ChainFlipStep{chain: c, Index: i, delta: c.deltaEFlip(i)}
	}
	return steps
}
