// Package engine implements the control plane shared by every concrete
// Monte Carlo engine: RNG ownership, a reserved dump filename, cooperative
// cancellation, step counters, and checkpoint I/O. Base is generic over
// the model's Energy and Step types and is embedded by metropolis.Engine
// and wanglandau.Engine; Go has no virtual
// dispatch through embedding, so the three "derived engine" hooks a
// concrete loop needs are passed explicitly as a StepHandler rather than
// overridden.
package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"mcsim/internal/mcerrors"
	"mcsim/mcmodel"
	"mcsim/rng"
)

// StepHandler supplies the acceptance rule and post-step bookkeeping a
// concrete engine plugs into Base's inner step template.
type StepHandler[E mcmodel.Energy[E], S mcmodel.Step[E]] interface {
	// AcceptanceProbability returns the unclamped acceptance probability
	// for s (e.g. exp(-beta*deltaE) for plain Metropolis); RunInnerStep
	// treats any value >= 1 as certain acceptance.
	AcceptanceProbability(s S) float64
	// HandleExecutedStep is called after s has been committed.
	HandleExecutedStep(s S)
	// HandleRejectedStep is called when s was not committed, whether
	// because it was inexecutable or because it failed the acceptance
	// test.
	HandleRejectedStep(s S)
}

// Base is the simulation control plane every concrete engine embeds. It
// never stores a Configuration long-term; callers pass one into
// RunInnerStep for the duration of a single proposal, consistent with
// "configuration borrow" rather than ownership.
type Base[E mcmodel.Energy[E], S mcmodel.Step[E]] struct {
	RNG      rng.Source
	DumpPath string
	Signals  *SignalController

	StepsExecuted int64
	StepsRejected int64
}

// NewBase constructs a Base with a freshly seeded RNG and a dump file
// reserved under dumpDir: a random "<16 alphanumeric>.dat" name, retried
// against the filesystem until unused.
func NewBase[E mcmodel.Energy[E], S mcmodel.Step[E]](seed uint32, dumpDir string) (*Base[E, S], error) {
	path, err := reserveDumpFile(dumpDir)
	if err != nil {
		return nil, err
	}
	return &Base[E, S]{
		RNG:      rng.New(seed),
		DumpPath: path,
		Signals:  NewSignalController(),
	}, nil
}

func reserveDumpFile(dumpDir string) (string, error) {
	names := rng.NewNameGenerator()
	const maxAttempts = 1000
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := filepath.Join(dumpDir, names.Filename())
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: could not reserve an unused dump filename after %d attempts", mcerrors.ErrCheckpointIO, maxAttempts)
}

// RunInnerStep proposes, and conditionally commits, a single step against
// cfg using handler's hooks. It implements the universal acceptance rule:
// accept with probability min(1, a/q), where a is
// handler.AcceptanceProbability(s) and q is s.SelectionProbabilityFactor()
// (the forward/reverse proposal ratio, 1 for symmetric kernels).
func (b *Base[E, S]) RunInnerStep(cfg mcmodel.Configuration[E, S], handler StepHandler[E, S]) {
	step := cfg.ProposeStep(b.RNG)
	if !step.IsExecutable() {
		handler.HandleRejectedStep(step)
		b.StepsRejected++
		return
	}

	a := handler.AcceptanceProbability(step)
	q := step.SelectionProbabilityFactor()
	ratio := a
	if q != 1 {
		ratio = a / q
	}

	if ratio >= 1 || b.RNG.Uniform() < ratio {
		cfg.Commit(step)
		handler.HandleExecutedStep(step)
		b.StepsExecuted++
		return
	}
	handler.HandleRejectedStep(step)
	b.StepsRejected++
}
