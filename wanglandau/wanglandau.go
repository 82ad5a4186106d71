// Package wanglandau implements Wang-Landau density-of-states estimation:
// an adaptive histogram random walk that converges on ln g(E), the log
// density of states, via a shrinking modification factor and a flatness
// criterion on the visit histogram.
package wanglandau

import (
	"math"

	"github.com/rs/zerolog/log"

	"mcsim/engine"
	"mcsim/histogram"
	"mcsim/mcmodel"
)

// Engine is the Wang-Landau sampler. It embeds engine.Base and implements
// engine.StepHandler[E, S] on itself.
type Engine[E mcmodel.Energy[E], S mcmodel.Step[E]] struct {
	*engine.Base[E, S]

	// DOS accumulates ln g(E), the running estimate of the log density
	// of states, indexed by energy bin.
	DOS *histogram.Histogram[float64]
	// Incidence counts visits to each energy bin since the last
	// modification-factor reduction; its flatness drives the outer
	// state machine.
	Incidence *histogram.Histogram[int]

	ModFactor           float64
	ModFactorFinal      float64
	ModFactorMultiplier float64
	FlatnessThreshold   float64
	SweepSteps          int

	currentEnergy E
}

// New constructs a Wang-Landau engine. binWidth <= 0 selects a discrete
// (unbinned) histogram family; binWidth > 0 selects a fixed-width binned
// family anchored at binReference, matching histogram.NewBinned.
func New[E mcmodel.Energy[E], S mcmodel.Step[E]](
	modFactorInitial, modFactorFinal, modFactorMultiplier, flatnessThreshold float64,
	sweepSteps int,
	binWidth, binReference float64,
	seed uint32, dumpDir string,
) (*Engine[E, S], error) {
	base, err := engine.NewBase[E, S](seed, dumpDir)
	if err != nil {
		return nil, err
	}

	var dos *histogram.Histogram[float64]
	var incidence *histogram.Histogram[int]
	if binWidth > 0 {
		dos, err = histogram.NewBinned[float64](binWidth, binReference)
		if err != nil {
			return nil, err
		}
		incidence, err = histogram.NewBinned[int](binWidth, binReference)
		if err != nil {
			return nil, err
		}
	} else {
		dos = histogram.NewDiscrete[float64]()
		incidence = histogram.NewDiscrete[int]()
	}

	return &Engine[E, S]{
		Base:                base,
		DOS:                 dos,
		Incidence:           incidence,
		ModFactor:           modFactorInitial,
		ModFactorFinal:      modFactorFinal,
		ModFactorMultiplier: modFactorMultiplier,
		FlatnessThreshold:   flatnessThreshold,
		SweepSteps:          sweepSteps,
	}, nil
}

// AcceptanceProbability implements engine.StepHandler: the Wang-Landau
// weight exp(g(E_current) - g(E_proposed)), using Histogram.GetOrMin so an
// energy bin not yet visited is treated as the current minimum of g and
// inserted, per the edge case in the outer state machine.
//
// The target energy is computed by adding the typed DeltaE to the typed
// current energy before collapsing either to float64: for a plain scalar
// energy this is equivalent to float64 addition, but for a composite
// energy like multicanonical's Extended[E] it is not — collapsing first
// and adding floats can lose information (e.g. adding a finite delta to an
// already-collapsed negative-infinity sentinel stays negative infinity
// regardless of the delta), where adding the typed values first and
// collapsing the result is exact.
func (w *Engine[E, S]) AcceptanceProbability(s S) float64 {
	target := w.currentEnergy.Add(s.DeltaE())
	gCurrent := w.DOS.GetOrMin(w.DOS.Bin(w.currentEnergy.Float64()))
	gTarget := w.DOS.GetOrMin(w.DOS.Bin(target.Float64()))
	return math.Exp(gCurrent - gTarget)
}

// HandleExecutedStep implements engine.StepHandler; histogram bookkeeping
// happens uniformly in Run regardless of acceptance, so this is a no-op.
func (w *Engine[E, S]) HandleExecutedStep(s S) {}

// HandleRejectedStep implements engine.StepHandler.
func (w *Engine[E, S]) HandleRejectedStep(s S) {}

// Run drives the outer Wang-Landau state machine: sweep SweepSteps inner
// steps, recording every resulting energy into DOS and Incidence
// regardless of whether the step was accepted; check Incidence's
// flatness; if flat, shrink ModFactor, clear Incidence, and re-reference
// DOS to its current minimum. Run terminates when ModFactor drops to or
// below ModFactorFinal, or when the cancellation flag is observed at a
// sweep boundary.
func (w *Engine[E, S]) Run(cfg mcmodel.Configuration[E, S]) error {
	for w.ModFactor > w.ModFactorFinal {
		if w.Signals.Check() {
			log.Warn().Float64("mod_factor", w.ModFactor).Msg("wang-landau run terminated by cancellation flag")
			return nil
		}

		for i := 0; i < w.SweepSteps; i++ {
			w.currentEnergy = cfg.Energy()
			w.RunInnerStep(cfg, w)

			bin := w.DOS.Bin(cfg.Energy().Float64())
			w.DOS.Add(bin, w.ModFactor)
			w.Incidence.Add(bin, 1)
		}

		flat := w.Incidence.Flatness()
		if flat >= w.FlatnessThreshold {
			log.Info().Float64("mod_factor", w.ModFactor).Float64("flatness", flat).Msg("wang-landau histogram flat, shrinking modification factor")
			w.ModFactor *= w.ModFactorMultiplier
			w.Incidence.Reset()
			w.DOS.ReReference()
		}
	}
	return nil
}
