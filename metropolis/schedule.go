package metropolis

import (
	"golang.org/x/sync/errgroup"

	"mcsim/mcmodel"
)

// Schedule runs one independent Metropolis replica per beta value
// concurrently, each with its own RNG, Configuration (built by newConfig),
// and dump file — the one place the control plane allows more than one
// engine to run at once, since each replica owns its resources exclusively.
// It returns the completed engines in the same order as betas, or the
// first error any replica returned.
func Schedule[E mcmodel.Energy[E], S mcmodel.Step[E]](
	betas []float64,
	relaxationSteps, measurementNumber, stepsBetweenMeasurement int,
	baseSeed uint32,
	dumpDir string,
	newConfig func(beta float64) mcmodel.Configuration[E, S],
	measure func(beta float64, step int, cfg mcmodel.Configuration[E, S]),
) ([]*Engine[E, S], error) {
	engines := make([]*Engine[E, S], len(betas))

	var g errgroup.Group
	for i, beta := range betas {
		i, beta := i, beta
		g.Go(func() error {
			eng, err := New[E, S](beta, relaxationSteps, measurementNumber, stepsBetweenMeasurement, baseSeed+uint32(i), dumpDir)
			if err != nil {
				return err
			}
			cfg := newConfig(beta)
			if err := eng.Run(cfg, func(step int, c mcmodel.Configuration[E, S]) {
				if measure != nil {
					measure(beta, step, c)
				}
			}); err != nil {
				return err
			}
			engines[i] = eng
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return engines, nil
}
