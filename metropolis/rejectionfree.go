package metropolis

import (
	"fmt"
	"math"

	"mcsim/internal/mcerrors"
	"mcsim/mcmodel"
)

// RunRejectionFree implements the rejection-free Metropolis variant: at
// each macro-step it enumerates every reachable step via cfg.AllSteps,
// computes w_i = min(1, exp(-beta*deltaE_i)) / q_i for each, picks index i
// with probability w_i / sum(w), commits it unconditionally, and advances
// simulation time by a geometric waiting time -log(uniform()) / sum(w).
// Measurement cadence is expressed in the same simulation-time units:
// measurements fire whenever cumulative simulation time crosses a
// stepsBetweenMeasurement boundary, so step count and simulation time
// diverge from the plain variant by design.
func (e *Engine[E, S]) RunRejectionFree(
	cfg mcmodel.StepEnumerator[E, S],
	stepsBetweenMeasurement float64,
	measure func(step int, simTime float64, cfg mcmodel.Configuration[E, S]),
) error {
	simTime := 0.0
	nextMeasurement := stepsBetweenMeasurement
	measured := 0

	for measured < e.MeasurementNumber {
		if e.Signals.Check() {
			return nil
		}

		steps := cfg.AllSteps(e.RNG)
		if len(steps) == 0 {
			return fmt.Errorf("%w: AllSteps returned no candidate steps", mcerrors.ErrInvalidParameter)
		}

		weights := make([]float64, len(steps))
		sum := 0.0
		for i, s := range steps {
			if !s.IsExecutable() {
				continue
			}
			a := math.Exp(-e.Beta * s.DeltaE().Physical())
			if a > 1 {
				a = 1
			}
			q := s.SelectionProbabilityFactor()
			w := a
			if q != 1 {
				w = a / q
			}
			weights[i] = w
			sum += w
		}
		if sum <= 0 {
			return fmt.Errorf("%w: no executable step had positive weight", mcerrors.ErrInvalidParameter)
		}

		idx := selectWeightedIndex(weights, sum, e.RNG.Uniform())
		chosen := steps[idx]
		cfg.Commit(chosen)
		e.StepsExecuted++
		e.HandleExecutedStep(chosen)

		waitingTime := -math.Log(e.RNG.Uniform()) / sum
		simTime += waitingTime

		for simTime >= nextMeasurement && measured < e.MeasurementNumber {
			if measure != nil {
				measure(measured, simTime, cfg)
			}
			measured++
			nextMeasurement += stepsBetweenMeasurement
		}
	}
	return nil
}

// selectWeightedIndex picks an index i with probability weights[i]/sum,
// given a uniform draw u in [0,1). Floating-point rounding can leave the
// cumulative sum just short of u*sum on the last entry, so the final
// index is always a safe fallback.
func selectWeightedIndex(weights []float64, sum, u float64) int {
	target := u * sum
	cum := 0.0
	for i, w := range weights {
		cum += w
		if target < cum {
			return i
		}
	}
	return len(weights) - 1
}
