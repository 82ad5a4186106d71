package observable

import (
	"fmt"

	"mcsim/histogram"
	"mcsim/internal/mcerrors"
)

// HistogramObservable is a histogram-valued observable: arithmetic is
// component-wise over matching keys. Per Design Note 9's resolution of the
// "operator semantics on histogram-valued observables" open question, the
// key sets must match exactly; a mismatch is an error rather than a
// union-with-zero-fill.
type HistogramObservable[V histogram.Number] struct {
	H *histogram.Histogram[V]
}

func sameKeySet[V histogram.Number](a, b *histogram.Histogram[V]) bool {
	if a.Len() != b.Len() {
		return false
	}
	same := true
	a.Range(func(k float64, _ V) bool {
		if _, ok := b.Lookup(k); !ok {
			same = false
			return false
		}
		return true
	})
	return same
}

func (h HistogramObservable[V]) Add(o HistogramObservable[V]) (HistogramObservable[V], error) {
	if !sameKeySet(h.H, o.H) {
		return HistogramObservable[V]{}, fmt.Errorf("%w: histogram observable key sets differ", mcerrors.ErrDimensionMismatch)
	}
	out := h.H.Clone()
	h.H.Range(func(k float64, v V) bool {
		ov, _ := o.H.Lookup(k)
		out.Set(k, v+ov)
		return true
	})
	return HistogramObservable[V]{out}, nil
}

func (h HistogramObservable[V]) Sub(o HistogramObservable[V]) (HistogramObservable[V], error) {
	if !sameKeySet(h.H, o.H) {
		return HistogramObservable[V]{}, fmt.Errorf("%w: histogram observable key sets differ", mcerrors.ErrDimensionMismatch)
	}
	out := h.H.Clone()
	h.H.Range(func(k float64, v V) bool {
		ov, _ := o.H.Lookup(k)
		out.Set(k, v-ov)
		return true
	})
	return HistogramObservable[V]{out}, nil
}

func (h HistogramObservable[V]) Scale(f float64) HistogramObservable[V] {
	out := h.H.Clone()
	h.H.Range(func(k float64, v V) bool {
		out.Set(k, V(float64(v)*f))
		return true
	})
	return HistogramObservable[V]{out}
}
