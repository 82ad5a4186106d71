// Package isingref implements a 2D periodic Ising lattice and a 1D
// periodic Ising chain: real, checkable physical models used only by the
// engine family's own test suites to exercise Metropolis, Wang-Landau, and
// multicanonical sampling against known statistics. It is not part of the
// public API surface.
//
// This is a from-scratch port, not a translation, of a known reference
// model; it deliberately does not carry over that model's two bugs (a
// swapped lower/upper neighbor index in one lattice direction, and an
// inconsistent 0.5 double-counting factor between the energy and delta-E
// calculations).
package isingref

import "mcsim/rng"
import "mcsim/mcmodel"

// Grid is an L_x by L_y periodic 2D Ising lattice with couplings J=1 and
// an optional uniform external field.
type Grid struct {
	SizeX, SizeY  int
	Spins         [][]int
	ExternalField float64

	energy float64
}

// NewGrid returns a Grid of the given dimensions, all spins up, with its
// running energy total precomputed.
func NewGrid(sizeX, sizeY int, externalField float64) *Grid {
	spins := make([][]int, sizeX)
	for i := range spins {
		spins[i] = make([]int, sizeY)
		for j := range spins[i] {
			spins[i][j] = 1
		}
	}
	g := &Grid{SizeX: sizeX, SizeY: sizeY, Spins: spins, ExternalField: externalField}
	g.energy = g.computeEnergy()
	return g
}

func (g *Grid) neighbors(x, y int) (xl, xu, yl, yu int) {
	xl = (x - 1 + g.SizeX) % g.SizeX
	xu = (x + 1) % g.SizeX
	yl = (y - 1 + g.SizeY) % g.SizeY
	yu = (y + 1) % g.SizeY
	return
}

// computeEnergy sums -0.5*s_i*(sum of four neighbor spins) - h*s_i over
// every site; the 0.5 factor avoids double-counting each bond, which is
// visited once from each of its two endpoints.
func (g *Grid) computeEnergy() float64 {
	total := 0.0
	for x := 0; x < g.SizeX; x++ {
		for y := 0; y < g.SizeY; y++ {
			xl, xu, yl, yu := g.neighbors(x, y)
			s := float64(g.Spins[x][y])
			neighborSum := float64(g.Spins[xl][y] + g.Spins[xu][y] + g.Spins[x][yl] + g.Spins[x][yu])
			total -= 0.5 * s * neighborSum
			total -= g.ExternalField * s
		}
	}
	return total
}

func (g *Grid) deltaEFlip(x, y int) float64 {
	xl, xu, yl, yu := g.neighbors(x, y)
	s := float64(g.Spins[x][y])
	neighborSum := float64(g.Spins[xl][y] + g.Spins[xu][y] + g.Spins[x][yl] + g.Spins[x][yu])
	return 2*s*neighborSum + 2*g.ExternalField*s
}

// Energy returns the current total energy.
func (g *Grid) Energy() mcmodel.Float64Energy { return mcmodel.Float64Energy(g.energy) }

// Magnetization returns the sum of all spins.
func (g *Grid) Magnetization() int {
	total := 0
	for x := range g.Spins {
		for _, s := range g.Spins[x] {
			total += s
		}
	}
	return total
}

// SetSpins overwrites the grid's spin configuration with a copy of spins
// and recomputes the cached energy total. It is used to restore a
// configuration (e.g. from a checkpointed dump) rather than replay every
// step that produced it.
func (g *Grid) SetSpins(spins [][]int) {
	cp := make([][]int, len(spins))
	for i := range spins {
		cp[i] = append([]int(nil), spins[i]...)
	}
	g.Spins = cp
	g.energy = g.computeEnergy()
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	spins := make([][]int, g.SizeX)
	for i := range spins {
		spins[i] = append([]int(nil), g.Spins[i]...)
	}
	return &Grid{SizeX: g.SizeX, SizeY: g.SizeY, Spins: spins, ExternalField: g.ExternalField, energy: g.energy}
}

// Equal reports whether two grids have identical spin configurations,
// satisfying mcmodel.Equatable for multicanonical reference detection.
func (g *Grid) Equal(o *Grid) bool {
	if g.SizeX != o.SizeX || g.SizeY != o.SizeY {
		return false
	}
	for x := range g.Spins {
		for y := range g.Spins[x] {
			if g.Spins[x][y] != o.Spins[x][y] {
				return false
			}
		}
	}
	return true
}

// FlipStep proposes flipping the spin at (X, Y).
type FlipStep struct {
	grid  *Grid
	X, Y  int
	delta float64
}

func (s *FlipStep) DeltaE() mcmodel.Float64Energy       { return mcmodel.Float64Energy(s.delta) }
func (s *FlipStep) IsExecutable() bool                  { return true }
func (s *FlipStep) SelectionProbabilityFactor() float64 { return 1 }

// Execute flips the spin. Engines never call this directly; Grid.Commit
// does, as required by mcmodel.Step.
func (s *FlipStep) Execute() {
	s.grid.Spins[s.X][s.Y] *= -1
	s.grid.energy += s.delta
}

// PreviewReferenceMatch reports whether committing s would leave the grid
// equal to ref, without mutating the grid: every site must already match
// ref except (X, Y), whose post-flip value (the negation of its current
// value) must match ref there.
func (s *FlipStep) PreviewReferenceMatch(ref *Grid) bool {
	for x := range s.grid.Spins {
		for y := range s.grid.Spins[x] {
			want := s.grid.Spins[x][y]
			if x == s.X && y == s.Y {
				want = -want
			}
			if want != ref.Spins[x][y] {
				return false
			}
		}
	}
	return true
}

// ProposeStep picks a uniformly random site to flip.
func (g *Grid) ProposeStep(r rng.Source) *FlipStep {
	x := int(r.UniformUint32In(0, uint32(g.SizeX-1)))
	y := int(r.UniformUint32In(0, uint32(g.SizeY-1)))
	return &FlipStep{grid: g, X: x, Y: y, delta: g.deltaEFlip(x, y)}
}

// Commit applies s and updates the cached running energy.
func (g *Grid) Commit(s *FlipStep) { s.Execute() }

// AllSteps enumerates a flip of every site, for the rejection-free
// Metropolis variant.
func (g *Grid) AllSteps(r rng.Source) []*FlipStep {
	steps := make([]*FlipStep, 0, g.SizeX*g.SizeY)
	for x := 0; x < g.SizeX; x++ {
		for y := 0; y < g.SizeY; y++ {
			steps = append(steps, &FlipStep{grid: g, X: x, Y: y, delta: g.deltaEFlip(x, y)})
		}
	}
	return steps
}
