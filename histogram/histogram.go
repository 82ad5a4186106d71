// Package histogram implements the discrete and binned histogram family
// shared by the Wang-Landau and multicanonical engines: a mapping from an
// observable key to a count or weight, with an optional binning function.
//
// Per Design Note 9, the discrete/binned distinction is composition with an
// enum tag rather than an inheritance hierarchy: Histogram carries a Kind
// and, for the binned variant, a plain (width, reference) value.
package histogram

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"mcsim/internal/mcerrors"
)

// Number is the constraint satisfied by both histogram keys and y-values:
// any of Go's built-in integer or floating-point types.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Kind distinguishes a discrete histogram (direct keys, no bin collapsing)
// from a binned histogram (keys floored to a bin boundary).
type Kind int

const (
	// Discrete histograms key directly; no collapsing occurs.
	Discrete Kind = iota
	// Binned histograms floor incoming keys to reference + n*width.
	Binned
)

// Histogram is a mapping from a float64-valued key to a Number-valued
// y-value. It is used both as a Histocrete (Kind == Discrete) and as a
// Histogram proper (Kind == Binned), per §3 of the specification.
type Histogram[V Number] struct {
	kind      Kind
	width     float64
	reference float64
	data      map[float64]V
}

// NewDiscrete constructs an empty discrete histogram.
func NewDiscrete[V Number]() *Histogram[V] {
	return &Histogram[V]{kind: Discrete, data: make(map[float64]V)}
}

// NewBinned constructs an empty binned histogram with the given bin width
// and reference point. It returns mcerrors.ErrInvalidParameter if width is
// not strictly positive.
func NewBinned[V Number](width, reference float64) (*Histogram[V], error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: binning width must be positive, got %v", mcerrors.ErrInvalidParameter, width)
	}
	return &Histogram[V]{kind: Binned, width: width, reference: reference, data: make(map[float64]V)}, nil
}

// Kind reports whether h is discrete or binned.
func (h *Histogram[V]) Kind() Kind { return h.kind }

// Width returns the binning width (0 for discrete histograms).
func (h *Histogram[V]) Width() float64 { return h.width }

// Reference returns the binning reference point (0 for discrete histograms).
func (h *Histogram[V]) Reference() float64 { return h.reference }

// Bin applies the binning function to key: for a discrete histogram this is
// the identity; for a binned histogram it floors key to
// reference + floor((key-reference)/width)*width.
func (h *Histogram[V]) Bin(key float64) float64 {
	if h.kind == Discrete {
		return key
	}
	return h.reference + math.Floor((key-h.reference)/h.width)*h.width
}

// Get performs a read-only lookup; it never creates a bin. Missing keys
// return the zero value of V.
func (h *Histogram[V]) Get(key float64) V {
	return h.data[h.Bin(key)]
}

// Lookup is like Get but also reports whether the bin exists.
func (h *Histogram[V]) Lookup(key float64) (V, bool) {
	v, ok := h.data[h.Bin(key)]
	return v, ok
}

// Set writes v into the bin containing key, creating it if necessary. This
// is the one mutating access that may auto-create a zero bin.
func (h *Histogram[V]) Set(key float64, v V) {
	h.data[h.Bin(key)] = v
}

// Add accumulates delta into the bin containing key, creating it (at zero)
// if necessary.
func (h *Histogram[V]) Add(key float64, delta V) {
	k := h.Bin(key)
	h.data[k] += delta
}

// GetOrMin implements the Wang-Landau edge case: if key's bin does not yet
// exist, it is created and initialized to the histogram's current minimum
// y-value (or the zero value if h is empty), and that value is returned.
func (h *Histogram[V]) GetOrMin(key float64) V {
	k := h.Bin(key)
	if v, ok := h.data[k]; ok {
		return v
	}
	_, minV, ok := h.MinY()
	if !ok {
		minV = 0
	}
	h.data[k] = minV
	return minV
}

// Len returns the number of occupied bins.
func (h *Histogram[V]) Len() int { return len(h.data) }

// Keys returns the occupied bin keys in ascending order.
func (h *Histogram[V]) Keys() []float64 {
	keys := make([]float64, 0, len(h.data))
	for k := range h.data {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}

// Range calls f for every (key, value) pair in ascending key order,
// stopping early if f returns false.
func (h *Histogram[V]) Range(f func(key float64, value V) bool) {
	for _, k := range h.Keys() {
		if !f(k, h.data[k]) {
			return
		}
	}
}

func isNaN[V Number](v V) bool { return v != v }

// SumY returns the sum of all y-values, including NaN entries (which
// propagate, matching the invariant that NaN is preserved rather than
// silently dropped).
func (h *Histogram[V]) SumY() V {
	var sum V
	for _, v := range h.data {
		sum += v
	}
	return sum
}

// MinY returns the key and value of the minimum non-NaN y-value, and
// whether any such entry exists.
func (h *Histogram[V]) MinY() (key float64, value V, ok bool) {
	first := true
	for k, v := range h.data {
		if isNaN(v) {
			continue
		}
		if first || v < value {
			key, value, ok = k, v, true
			first = false
		}
	}
	return key, value, ok
}

// MaxY returns the key and value of the maximum non-NaN y-value, and
// whether any such entry exists.
func (h *Histogram[V]) MaxY() (key float64, value V, ok bool) {
	first := true
	for k, v := range h.data {
		if isNaN(v) {
			continue
		}
		if first || v > value {
			key, value, ok = k, v, true
			first = false
		}
	}
	return key, value, ok
}

// Flatness returns min_y / mean_y over non-empty, non-NaN bins. It returns
// 0 for an empty histogram (the empty case is documented behavior, not an
// error return, per the error handling design).
func (h *Histogram[V]) Flatness() float64 {
	count := 0
	var sum float64
	minV := math.Inf(1)
	for _, v := range h.data {
		if isNaN(v) {
			continue
		}
		f := float64(v)
		sum += f
		if f < minV {
			minV = f
		}
		count++
	}
	if count == 0 {
		return 0
	}
	mean := sum / float64(count)
	if mean == 0 {
		return 0
	}
	return minV / mean
}

// ShiftBinZero subtracts the y-value stored at refKey's bin from every
// bin's y-value, including refKey's own (which becomes zero). It is a
// no-op if refKey's bin does not exist.
func (h *Histogram[V]) ShiftBinZero(refKey float64) {
	ref, ok := h.data[h.Bin(refKey)]
	if !ok {
		return
	}
	for k, v := range h.data {
		h.data[k] = v - ref
	}
}

// ReReference re-references the histogram by subtracting its minimum
// non-NaN value from every bin, as Wang-Landau does periodically to keep
// log g(E) magnitudes bounded. It is a no-op on an empty histogram.
func (h *Histogram[V]) ReReference() {
	minKey, _, ok := h.MinY()
	if !ok {
		return
	}
	h.ShiftBinZero(minKey)
}

// Reset clears every bin's count to the zero value without removing the
// bins themselves (used by Wang-Landau to clear the incidence histogram
// between iterations while keeping its key set, which mirrors the DOS
// histogram's keys).
func (h *Histogram[V]) Reset() {
	for k := range h.data {
		h.data[k] = 0
	}
}

// Clone returns a deep copy of h.
func (h *Histogram[V]) Clone() *Histogram[V] {
	out := &Histogram[V]{kind: h.kind, width: h.width, reference: h.reference, data: make(map[float64]V, len(h.data))}
	for k, v := range h.data {
		out.data[k] = v
	}
	return out
}

// SaveCSV writes h as tab-separated "<key>\t<value>\n" lines in ascending
// key order, per the I/O format in §6.
func (h *Histogram[V]) SaveCSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, k := range h.Keys() {
		v := h.data[k]
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", formatFloat(k), formatValue(v)); err != nil {
			return fmt.Errorf("%w: %v", mcerrors.ErrCheckpointIO, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", mcerrors.ErrCheckpointIO, err)
	}
	return nil
}

// LoadCSV reads tab-separated "<key>\t<value>\n" lines into h, ignoring
// blank lines and lines whose first non-whitespace character is '#'. It
// preserves h's existing Kind/width/reference (the binning function is
// applied to loaded keys exactly as it is to inserted ones), so a round
// trip through Save then Load onto a fresh histogram of the same kind
// reproduces the original contents.
func (h *Histogram[V]) LoadCSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != 2 {
			return fmt.Errorf("%w: line %d: expected \"key\\tvalue\", got %q", mcerrors.ErrLoadFormat, line, text)
		}
		key, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return fmt.Errorf("%w: line %d: invalid key: %v", mcerrors.ErrLoadFormat, line, err)
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return fmt.Errorf("%w: line %d: invalid value: %v", mcerrors.ErrLoadFormat, line, err)
		}
		h.data[h.Bin(key)] = V(val)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", mcerrors.ErrLoadFormat, err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatValue[V Number](v V) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 64)
}
