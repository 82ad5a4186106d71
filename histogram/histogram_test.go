package histogram

import (
	"bytes"
	"math"
	"testing"
)

func TestBinningInvariant(t *testing.T) {
	h, err := NewBinned[int](2.0, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	keys := []float64{-3.2, -0.6, 0.0, 0.4, 1.9, 5.5}
	for _, k := range keys {
		h.Add(k, 1)
		stored := h.Bin(k)
		want := h.reference + math.Floor((k-h.reference)/h.width)*h.width
		if stored != want {
			t.Fatalf("Bin(%v) = %v, want %v", k, stored, want)
		}
	}
}

func TestNewBinnedRejectsNonPositiveWidth(t *testing.T) {
	if _, err := NewBinned[float64](0, 0); err == nil {
		t.Fatal("expected error for zero width")
	}
	if _, err := NewBinned[float64](-1, 0); err == nil {
		t.Fatal("expected error for negative width")
	}
}

func TestFlatnessHandcrafted(t *testing.T) {
	h := NewDiscrete[int]()
	h.Set(1, 10)
	h.Set(2, 10)
	h.Set(3, 10)
	if f := h.Flatness(); f != 1.0 {
		t.Fatalf("Flatness() = %v, want 1.0", f)
	}

	h2 := NewDiscrete[int]()
	h2.Set(1, 10)
	h2.Set(2, 10)
	h2.Set(3, 5)
	if f, want := h2.Flatness(), 5.0/(25.0/3.0); math.Abs(f-want) > 1e-12 {
		t.Fatalf("Flatness() = %v, want %v", f, want)
	}
}

func TestFlatnessEmpty(t *testing.T) {
	h := NewDiscrete[int]()
	if f := h.Flatness(); f != 0 {
		t.Fatalf("Flatness() on empty histogram = %v, want 0", f)
	}
}

func TestGetDoesNotAutoCreate(t *testing.T) {
	h := NewDiscrete[int]()
	_ = h.Get(5)
	if h.Len() != 0 {
		t.Fatalf("read-only Get created a bin; Len() = %d", h.Len())
	}
	h.Add(5, 1)
	if h.Len() != 1 {
		t.Fatalf("Add did not create a bin")
	}
}

func TestShiftBinZero(t *testing.T) {
	h := NewDiscrete[float64]()
	h.Set(1, 5)
	h.Set(2, 8)
	h.Set(3, 12)
	h.ShiftBinZero(1)
	if v := h.Get(1); v != 0 {
		t.Fatalf("reference bin after shift = %v, want 0", v)
	}
	if v := h.Get(2); v != 3 {
		t.Fatalf("Get(2) = %v, want 3", v)
	}
	if v := h.Get(3); v != 7 {
		t.Fatalf("Get(3) = %v, want 7", v)
	}
}

func TestReReference(t *testing.T) {
	h := NewDiscrete[float64]()
	h.Set(1, 5)
	h.Set(2, 2)
	h.Set(3, 9)
	h.ReReference()
	if v := h.Get(2); v != 0 {
		t.Fatalf("min bin after ReReference = %v, want 0", v)
	}
	if v := h.Get(1); v != 3 {
		t.Fatalf("Get(1) = %v, want 3", v)
	}
}

func TestNaNPreservedNotSummedIntoFlatness(t *testing.T) {
	h := NewDiscrete[float64]()
	h.Set(1, math.NaN())
	h.Set(2, 4)
	h.Set(3, 4)
	if f := h.Flatness(); f != 1.0 {
		t.Fatalf("Flatness() with a NaN bin = %v, want 1.0 (NaN excluded)", f)
	}
	sum := h.SumY()
	if !math.IsNaN(sum) {
		t.Fatalf("SumY() should propagate NaN, got %v", sum)
	}
}

func TestGetOrMinInsertsAtMinimum(t *testing.T) {
	h := NewDiscrete[float64]()
	h.Set(1, 3)
	h.Set(2, -7)
	v := h.GetOrMin(99)
	if v != -7 {
		t.Fatalf("GetOrMin() = %v, want -7", v)
	}
	if got := h.Get(99); got != -7 {
		t.Fatalf("bin not inserted at minimum: got %v", got)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	h := NewDiscrete[float64]()
	h.Set(0, 1.5)
	h.Set(1, 2.25)
	h.Set(-3.5, 9)

	var buf bytes.Buffer
	if err := h.SaveCSV(&buf); err != nil {
		t.Fatalf("SaveCSV: %v", err)
	}

	h2 := NewDiscrete[float64]()
	if err := h2.LoadCSV(&buf); err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}

	if h2.Len() != h.Len() {
		t.Fatalf("Len mismatch: %d != %d", h2.Len(), h.Len())
	}
	h.Range(func(k float64, v float64) bool {
		got, ok := h2.Lookup(k)
		if !ok || got != v {
			t.Fatalf("round trip mismatch at key %v: got (%v,%v), want %v", k, got, ok, v)
		}
		return true
	})
}

func TestCSVIgnoresCommentsAndBlankLines(t *testing.T) {
	input := "# a comment\n\n1\t2\n  \n2\t4\n"
	h := NewDiscrete[int]()
	if err := h.LoadCSV(bytes.NewBufferString(input)); err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	if v := h.Get(1); v != 2 {
		t.Fatalf("Get(1) = %v, want 2", v)
	}
}

func TestResetKeepsKeys(t *testing.T) {
	h := NewDiscrete[int]()
	h.Set(1, 5)
	h.Set(2, 9)
	h.Reset()
	if h.Len() != 2 {
		t.Fatalf("Reset() changed key count: %d", h.Len())
	}
	if v := h.Get(1); v != 0 {
		t.Fatalf("Reset() left nonzero value: %v", v)
	}
}
