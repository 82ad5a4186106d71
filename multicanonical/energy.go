// Package multicanonical wraps any model configuration with a
// reference-state-aware extended energy, so the Metropolis and Wang-Landau
// engines can sample conditioned on distance from a designated reference
// configuration without any change to either engine.
package multicanonical

import (
	"math"

	"mcsim/mcmodel"
)

// Extended tags an underlying energy with whether the configuration it
// describes belongs to the reference configuration's equivalence class.
// RefCount is 1 exactly when the configuration equals the reference, 0
// otherwise; it is an int32 rather than a bool so a step's delta can carry
// +1/0/-1 and compose with Add the same way a scalar energy delta does.
type Extended[E mcmodel.Energy[E]] struct {
	Original E
	RefCount int32
}

func (e Extended[E]) Add(o Extended[E]) Extended[E] {
	return Extended[E]{Original: e.Original.Add(o.Original), RefCount: e.RefCount + o.RefCount}
}

func (e Extended[E]) Sub(o Extended[E]) Extended[E] {
	return Extended[E]{Original: e.Original.Sub(o.Original), RefCount: e.RefCount - o.RefCount}
}

// Compare orders the reference configuration's equivalence class as a
// single bin below every non-reference energy; within either class,
// energies are ordered by their Original component. This makes the
// reference state a distinct lowest bin, so Wang-Landau run over an
// Extended-energy configuration estimates ln(Z_sys / g(E_ref)) directly.
func (e Extended[E]) Compare(o Extended[E]) int {
	eRef, oRef := e.RefCount > 0, o.RefCount > 0
	switch {
	case eRef && !oRef:
		return -1
	case !eRef && oRef:
		return 1
	default:
		return e.Original.Compare(o.Original)
	}
}

// Float64 maps the reference bin to negative infinity — a single key
// distinct from, and below, every reachable Original energy — and
// otherwise passes Original through unchanged. This is a binning key for
// Wang-Landau's DOS histogram, not a physical energy; see Physical.
func (e Extended[E]) Float64() float64 {
	if e.RefCount > 0 {
		return math.Inf(-1)
	}
	return e.Original.Float64()
}

// Physical returns the actual physical energy, ignoring reference-bin
// membership entirely. A canonical Metropolis acceptance rule run over a
// wrapped configuration must weight by this, not by Float64: reference
// membership is a bookkeeping tag for the density-of-states axis, and has
// no bearing on the physical system's dynamics. Using Float64 here instead
// would make entering the reference bin (RefCount going from 0 to positive)
// always accept, since it collapses to negative infinity regardless of the
// underlying delta's sign or magnitude, while leaving the reference bin used
// the ordinary physical delta with no compensating bias — an asymmetric,
// unphysical acceptance rule.
func (e Extended[E]) Physical() float64 {
	return e.Original.Physical()
}
