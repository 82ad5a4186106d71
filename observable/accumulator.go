package observable

import (
	"fmt"
	"math"
	"sort"

	"mcsim/histogram"
	"mcsim/internal/mcerrors"
)

// Accumulable is the combined capability an observable needs to feed a
// MeanVarianceAccumulator: scalar arithmetic closure plus a flat
// component view for per-component statistics.
type Accumulable[O any] interface {
	Value[O]
	Componentwise
}

// MeanVarianceAccumulator maintains a numerically stable running mean and
// variance per component of an observable stream, using Welford's
// algorithm (the spec's "variance" statistic; Welford avoids the
// catastrophic cancellation of the naive sum-of-squares formula).
type MeanVarianceAccumulator[O Accumulable[O]] struct {
	count int64
	mean  []float64
	m2    []float64
}

// NewMeanVarianceAccumulator creates an empty accumulator.
func NewMeanVarianceAccumulator[O Accumulable[O]]() *MeanVarianceAccumulator[O] {
	return &MeanVarianceAccumulator[O]{}
}

// Add folds one more observation into the running statistics.
func (a *MeanVarianceAccumulator[O]) Add(obs O) {
	comp := obs.Components()
	if a.mean == nil {
		a.mean = make([]float64, len(comp))
		a.m2 = make([]float64, len(comp))
	}
	a.count++
	n := float64(a.count)
	for i, x := range comp {
		delta := x - a.mean[i]
		a.mean[i] += delta / n
		delta2 := x - a.mean[i]
		a.m2[i] += delta * delta2
	}
}

// Count returns the number of observations folded in so far.
func (a *MeanVarianceAccumulator[O]) Count() int64 { return a.count }

// Mean returns the running per-component mean.
func (a *MeanVarianceAccumulator[O]) Mean() []float64 {
	out := make([]float64, len(a.mean))
	copy(out, a.mean)
	return out
}

// Variance returns the running per-component sample variance (Bessel's
// correction, n-1 in the denominator). It returns all zeros if fewer than
// two observations have been added.
func (a *MeanVarianceAccumulator[O]) Variance() []float64 {
	out := make([]float64, len(a.m2))
	if a.count < 2 {
		return out
	}
	for i, m2 := range a.m2 {
		out[i] = m2 / float64(a.count-1)
	}
	return out
}

// ScalarMeanVariance is the common single-component case.
type ScalarMeanVariance = MeanVarianceAccumulator[Scalar]

// DensityAccumulator wraps a histogram.Histogram and exposes it as a
// normalized probability density: each bin's value divided by the sum of
// all bins, so the result sums to 1.0 within a ULP per bin.
type DensityAccumulator[V histogram.Number] struct {
	h *histogram.Histogram[V]
}

// NewDensityAccumulator wraps h; h continues to be updated in place by the
// caller (e.g. an engine's incidence histogram) between reads.
func NewDensityAccumulator[V histogram.Number](h *histogram.Histogram[V]) *DensityAccumulator[V] {
	return &DensityAccumulator[V]{h: h}
}

// Density returns the normalized value of every bin, keyed by bin key.
func (d *DensityAccumulator[V]) Density() map[float64]float64 {
	sum := float64(d.h.SumY())
	out := make(map[float64]float64, d.h.Len())
	if sum == 0 {
		d.h.Range(func(k float64, _ V) bool {
			out[k] = 0
			return true
		})
		return out
	}
	d.h.Range(func(k float64, v V) bool {
		out[k] = float64(v) / sum
		return true
	})
	return out
}

// JackknifeAccumulator computes the delete-one jackknife estimate and
// standard error of a scalar statistic over a fixed sample.
type JackknifeAccumulator struct {
	samples []float64
	stat    func([]float64) float64
}

// NewJackknifeAccumulator builds a jackknife estimator of stat over
// samples. stat is typically a mean, ratio, or other reduction the engine
// loops have already materialized as a []float64.
func NewJackknifeAccumulator(samples []float64, stat func([]float64) float64) *JackknifeAccumulator {
	cp := make([]float64, len(samples))
	copy(cp, samples)
	return &JackknifeAccumulator{samples: cp, stat: stat}
}

// Estimate returns the jackknife bias-corrected estimate and its standard
// error. It returns (0, 0, error) if fewer than two samples are present.
func (j *JackknifeAccumulator) Estimate() (estimate, stderr float64, err error) {
	n := len(j.samples)
	if n < 2 {
		return 0, 0, fmt.Errorf("%w: jackknife requires at least 2 samples, got %d", mcerrors.ErrInvalidParameter, n)
	}
	full := j.stat(j.samples)
	pseudo := make([]float64, n)
	leaveOneOut := make([]float64, n-1)
	for i := range j.samples {
		copy(leaveOneOut, j.samples[:i])
		copy(leaveOneOut[i:], j.samples[i+1:])
		pseudo[i] = float64(n)*full - float64(n-1)*j.stat(leaveOneOut)
	}
	mean := 0.0
	for _, p := range pseudo {
		mean += p
	}
	mean /= float64(n)
	var ss float64
	for _, p := range pseudo {
		d := p - mean
		ss += d * d
	}
	variance := ss / float64(n*(n-1))
	return mean, math.Sqrt(variance), nil
}

// BootstrapAccumulator computes a percentile bootstrap confidence interval
// of a scalar statistic over a fixed sample using a caller-supplied
// uniform generator, so resampling stays within the engine family's
// deterministic-for-a-seed contract.
type BootstrapAccumulator struct {
	samples  []float64
	stat     func([]float64) float64
	resample int
}

// NewBootstrapAccumulator builds a bootstrap estimator drawing resample
// resamples of len(samples) each.
func NewBootstrapAccumulator(samples []float64, stat func([]float64) float64, resamples int) *BootstrapAccumulator {
	cp := make([]float64, len(samples))
	copy(cp, samples)
	return &BootstrapAccumulator{samples: cp, stat: stat, resample: resamples}
}

// UniformSource is the minimal random surface bootstrap resampling needs;
// rng.Source satisfies it.
type UniformSource interface {
	UniformUint32In(min, max uint32) uint32
}

// Estimate draws resamples with replacement using r and returns the
// sorted bootstrap replicate statistics, from which the caller can read
// any percentile (e.g. a 95% interval is replicates[2.5%] .. replicates[97.5%]).
func (b *BootstrapAccumulator) Estimate(r UniformSource) ([]float64, error) {
	n := len(b.samples)
	if n == 0 {
		return nil, fmt.Errorf("%w: bootstrap requires at least 1 sample", mcerrors.ErrInvalidParameter)
	}
	replicates := make([]float64, b.resample)
	draw := make([]float64, n)
	for rep := 0; rep < b.resample; rep++ {
		for i := 0; i < n; i++ {
			idx := r.UniformUint32In(0, uint32(n-1))
			draw[i] = b.samples[idx]
		}
		replicates[rep] = b.stat(draw)
	}
	sort.Float64s(replicates)
	return replicates, nil
}
