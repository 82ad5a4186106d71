// Package metropolis implements the canonical-temperature Metropolis
// sampler and its rejection-free twin, both embedding engine.Base for RNG
// ownership, cancellation, and checkpointing.
package metropolis

import (
	"math"

	"github.com/rs/zerolog/log"

	"mcsim/engine"
	"mcsim/mcmodel"
	"mcsim/observable"
)

// Engine is the plain Metropolis sampler at inverse temperature Beta. It
// embeds engine.Base and implements engine.StepHandler[E, S] on itself, so
// Run calls e.RunInnerStep(cfg, e) rather than needing a separate adaptor
// type.
type Engine[E mcmodel.Energy[E], S mcmodel.Step[E]] struct {
	*engine.Base[E, S]

	Beta                    float64
	RelaxationSteps         int
	MeasurementNumber       int
	StepsBetweenMeasurement int

	// OnExecuted and OnRejected, if set, are invoked after every inner
	// step in addition to Base's own counters; most callers only need
	// the measurement callback passed to Run.
	OnExecuted func(s S)
	OnRejected func(s S)
}

// New constructs a Metropolis engine at inverse temperature beta, with its
// own RNG seeded with seed and a dump file reserved under dumpDir.
func New[E mcmodel.Energy[E], S mcmodel.Step[E]](beta float64, relaxationSteps, measurementNumber, stepsBetweenMeasurement int, seed uint32, dumpDir string) (*Engine[E, S], error) {
	base, err := engine.NewBase[E, S](seed, dumpDir)
	if err != nil {
		return nil, err
	}
	return &Engine[E, S]{
		Base:                    base,
		Beta:                    beta,
		RelaxationSteps:         relaxationSteps,
		MeasurementNumber:       measurementNumber,
		StepsBetweenMeasurement: stepsBetweenMeasurement,
	}, nil
}

// AcceptanceProbability implements engine.StepHandler: the canonical
// Metropolis weight exp(-beta*deltaE). It is deliberately not clamped to
// 1 here; Base.RunInnerStep's ratio>=1 check already implements the
// min(1, ...) half of the rule.
//
// It weights by DeltaE().Physical(), not DeltaE().Float64(): Float64 is a
// histogram binning key and, for a composite energy like
// multicanonical.Extended, may encode bookkeeping (e.g. a reference
// configuration sorting as negative infinity) that has nothing to do with
// the physical energy change a canonical acceptance rule must weight by.
// Physical strips that bookkeeping back out, so plain Metropolis samples
// correctly whether cfg is a bare model configuration or one wrapped by
// multicanonical.Wrap.
func (e *Engine[E, S]) AcceptanceProbability(s S) float64 {
	return math.Exp(-e.Beta * s.DeltaE().Physical())
}

// HandleExecutedStep implements engine.StepHandler.
func (e *Engine[E, S]) HandleExecutedStep(s S) {
	if e.OnExecuted != nil {
		e.OnExecuted(s)
	}
}

// HandleRejectedStep implements engine.StepHandler.
func (e *Engine[E, S]) HandleRejectedStep(s S) {
	if e.OnRejected != nil {
		e.OnRejected(s)
	}
}

// Run performs RelaxationSteps unmeasured inner steps, then
// MeasurementNumber measurement windows of StepsBetweenMeasurement inner
// steps each, invoking measure after every window. measure may be nil.
// The cooperative cancellation flag is checked at each measurement
// boundary; Run returns early, without error, if termination was
// requested.
func (e *Engine[E, S]) Run(cfg mcmodel.Configuration[E, S], measure func(step int, cfg mcmodel.Configuration[E, S])) error {
	for i := 0; i < e.RelaxationSteps; i++ {
		e.RunInnerStep(cfg, e)
	}

	for m := 0; m < e.MeasurementNumber; m++ {
		if e.Signals.Check() {
			log.Warn().Int("measurements_completed", m).Msg("metropolis run terminated by cancellation flag")
			return nil
		}
		for s := 0; s < e.StepsBetweenMeasurement; s++ {
			e.RunInnerStep(cfg, e)
		}
		if measure != nil {
			measure(m, cfg)
		}
	}
	return nil
}

// RunInto runs e to completion, feeding observe(cfg) into acc after every
// measurement window. It is a free function rather than a method because
// it introduces a type parameter (O) beyond Engine's own E and S, which
// Go does not allow on methods.
func RunInto[E mcmodel.Energy[E], S mcmodel.Step[E], O observable.Accumulable[O]](
	e *Engine[E, S],
	cfg mcmodel.Configuration[E, S],
	observe func(mcmodel.Configuration[E, S]) O,
	acc *observable.MeanVarianceAccumulator[O],
) error {
	return e.Run(cfg, func(_ int, c mcmodel.Configuration[E, S]) {
		acc.Add(observe(c))
	})
}
