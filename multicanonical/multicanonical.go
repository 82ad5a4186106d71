package multicanonical

import (
	"mcsim/mcmodel"
	"mcsim/rng"
)

// ReferenceAwareStep is the step contract a model must satisfy to be
// wrapped: in addition to the ordinary mcmodel.Step contract, it must be
// able to report, without mutating anything, whether committing it would
// leave the configuration equal to a given reference.
type ReferenceAwareStep[E mcmodel.Energy[E], C any] interface {
	mcmodel.Step[E]
	// PreviewReferenceMatch reports whether committing this step would
	// leave the originating configuration equal to ref.
	PreviewReferenceMatch(ref C) bool
}

// Model is the contract a configuration type must satisfy to be wrapped:
// full step enumeration (needed by the rejection-free Metropolis variant
// and usable by plain Metropolis and Wang-Landau alike) plus equality
// against a reference configuration.
type Model[E mcmodel.Energy[E], S ReferenceAwareStep[E, C], C any] interface {
	mcmodel.StepEnumerator[E, S]
	mcmodel.Equatable[C]
}

// Configuration wraps an inner configuration and a fixed reference
// configuration with a reference-state-aware extended energy. It caches
// the current extended energy and reference-membership flag rather than
// recomputing Equal on every Energy() call, since equality can be
// expensive for large configurations.
type Configuration[E mcmodel.Energy[E], S ReferenceAwareStep[E, C], C Model[E, S, C]] struct {
	Inner C
	Ref   C

	current     Extended[E]
	isReference bool
}

// Wrap constructs a Configuration around inner, with ref as the designated
// reference configuration.
func Wrap[E mcmodel.Energy[E], S ReferenceAwareStep[E, C], C Model[E, S, C]](inner, ref C) *Configuration[E, S, C] {
	isRef := inner.Equal(ref)
	var refCount int32
	if isRef {
		refCount = 1
	}
	return &Configuration[E, S, C]{
		Inner:       inner,
		Ref:         ref,
		current:     Extended[E]{Original: inner.Energy(), RefCount: refCount},
		isReference: isRef,
	}
}

// Energy returns the current extended energy.
func (c *Configuration[E, S, C]) Energy() Extended[E] { return c.current }

// ProposeStep draws a candidate mutation from the inner configuration and
// wraps it with its reference-membership delta.
func (c *Configuration[E, S, C]) ProposeStep(r rng.Source) *Step[E, S, C] {
	return c.wrap(c.Inner.ProposeStep(r))
}

// AllSteps enumerates every step reachable from the inner configuration,
// each wrapped with its reference-membership delta, for the rejection-free
// Metropolis variant.
func (c *Configuration[E, S, C]) AllSteps(r rng.Source) []*Step[E, S, C] {
	innerSteps := c.Inner.AllSteps(r)
	out := make([]*Step[E, S, C], len(innerSteps))
	for i, inner := range innerSteps {
		out[i] = c.wrap(inner)
	}
	return out
}

func (c *Configuration[E, S, C]) wrap(inner S) *Step[E, S, C] {
	willMatchRef := inner.PreviewReferenceMatch(c.Ref)
	var deltaRef int32
	switch {
	case !c.isReference && willMatchRef:
		deltaRef = 1
	case c.isReference && !willMatchRef:
		deltaRef = -1
	}
	return &Step[E, S, C]{inner: inner, deltaRef: deltaRef}
}

// Commit applies s: it commits the original step to the inner
// configuration, updates the reference-membership flag per s's
// precomputed delta, and refreshes the cached extended energy.
func (c *Configuration[E, S, C]) Commit(s *Step[E, S, C]) {
	c.Inner.Commit(s.inner)
	switch s.deltaRef {
	case 1:
		c.isReference = true
	case -1:
		c.isReference = false
	}
	var refCount int32
	if c.isReference {
		refCount = 1
	}
	c.current = Extended[E]{Original: c.Inner.Energy(), RefCount: refCount}
}

// Step wraps an inner model step with the extended-energy delta the
// multicanonical wrapper needs: the original energy change plus the
// change in reference-membership (+1 on a transition onto the reference's
// equivalence class, -1 the reverse, 0 otherwise).
type Step[E mcmodel.Energy[E], S ReferenceAwareStep[E, C], C Model[E, S, C]] struct {
	inner    S
	deltaRef int32
}

func (s *Step[E, S, C]) DeltaE() Extended[E] {
	return Extended[E]{Original: s.inner.DeltaE(), RefCount: s.deltaRef}
}
func (s *Step[E, S, C]) IsExecutable() bool                  { return s.inner.IsExecutable() }
func (s *Step[E, S, C]) SelectionProbabilityFactor() float64 { return s.inner.SelectionProbabilityFactor() }

// Execute applies the inner step. Engines never call this directly;
// Configuration.Commit does, as required by mcmodel.Step.
func (s *Step[E, S, C]) Execute() { s.inner.Execute() }
