// Package mcmodel defines the polymorphic configuration/step contract that
// every physical model must satisfy to be driven by the engine family.
// Concrete spin/lattice models are external collaborators; this package
// only defines the interfaces and the common Float64Energy implementation.
package mcmodel

import "mcsim/rng"

// Energy is an F-bounded constraint: a type is a valid Energy for E if it
// supports addition, subtraction, total ordering, and two scalar
// projections, all returning/accepting the same concrete type E.
//
// Float64 and Physical serve different purposes and are not
// interchangeable: Float64 is the binning/ordering key a histogram indexes
// by, and for a composite energy it may fold in bookkeeping beyond the
// physical energy itself (e.g. multicanonical.Extended maps its reference
// configuration to negative infinity so it sorts as a distinct bin).
// Physical is always the actual physical energy a canonical acceptance
// rule should weight by, with any such bookkeeping stripped back out. For
// a plain scalar energy the two coincide.
type Energy[E any] interface {
	Add(E) E
	Sub(E) E
	// Compare returns a negative number, zero, or a positive number as the
	// receiver is less than, equal to, or greater than other.
	Compare(other E) int
	// Float64 is the histogram bin/ordering key.
	Float64() float64
	// Physical is the actual physical energy for Boltzmann weighting.
	Physical() float64
}

// Step is a proposed, reversible mutation of a Configuration[E, Step[E]].
// A Step is valid only against the configuration it was proposed from.
type Step[E Energy[E]] interface {
	// DeltaE is the energy change execution of this step would cause.
	// DeltaE must equal Energy(after Execute) - Energy(before Execute).
	DeltaE() E
	// IsExecutable reports whether the model considers this move possible.
	IsExecutable() bool
	// SelectionProbabilityFactor is the forward-over-reverse proposal
	// ratio q; defaults to 1 for symmetric proposal kernels.
	SelectionProbabilityFactor() float64
	// Execute applies the mutation to the configuration it was proposed
	// from. Engines never call Execute directly; Configuration.Commit
	// calls it as part of committing an accepted step.
	Execute()
}

// Configuration is the physical state being sampled. It is opaque to the
// engines except through this contract.
type Configuration[E Energy[E], S Step[E]] interface {
	// Energy returns the current total energy; a pure function of the
	// configuration's contents.
	Energy() E
	// ProposeStep draws a candidate mutation using r.
	ProposeStep(r rng.Source) S
	// Commit applies an accepted step: it calls s.Execute() and updates
	// any configuration-level state derived from it (e.g. a cached
	// running energy total). s must have been proposed from this
	// configuration's current state. Engines call Commit, never
	// s.Execute() directly.
	Commit(s S)
}

// StepEnumerator is implemented by configurations that support the
// rejection-free Metropolis variant, which needs every reachable step from
// the current state rather than a single proposal.
type StepEnumerator[E Energy[E], S Step[E]] interface {
	Configuration[E, S]
	// AllSteps enumerates every step reachable from the current
	// configuration. r may be used to break ties or order degenerate
	// moves but must not itself decide which steps are reachable.
	AllSteps(r rng.Source) []S
}

// Equatable is implemented by configurations that can be compared for
// equality against a reference configuration, as required by the
// multicanonical extension.
type Equatable[C any] interface {
	Equal(other C) bool
}

// Float64Energy is the common Energy implementation: a plain scalar
// energy backed by float64.
type Float64Energy float64

func (e Float64Energy) Add(o Float64Energy) Float64Energy { return e + o }
func (e Float64Energy) Sub(o Float64Energy) Float64Energy { return e - o }
func (e Float64Energy) Float64() float64                  { return float64(e) }
func (e Float64Energy) Physical() float64                 { return float64(e) }

func (e Float64Energy) Compare(o Float64Energy) int {
	switch {
	case e < o:
		return -1
	case e > o:
		return 1
	default:
		return 0
	}
}
