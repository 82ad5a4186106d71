package wanglandau

import (
	"math"
	"path/filepath"
	"testing"

	"mcsim/internal/isingref"
	"mcsim/mcmodel"
)

// localEnergy recomputes the same -0.5*s_i*sum(neighbors) formula isingref.Grid
// uses, independently of the package under test, so the exact degeneracy
// oracle below does not depend on the code being verified.
func localEnergy(spins [][]int, sizeX, sizeY int) float64 {
	total := 0.0
	for x := 0; x < sizeX; x++ {
		for y := 0; y < sizeY; y++ {
			xl := (x - 1 + sizeX) % sizeX
			xu := (x + 1) % sizeX
			yl := (y - 1 + sizeY) % sizeY
			yu := (y + 1) % sizeY
			s := float64(spins[x][y])
			neighborSum := float64(spins[xl][y] + spins[xu][y] + spins[x][yl] + spins[x][yu])
			total -= 0.5 * s * neighborSum
		}
	}
	return math.Round(total*1000) / 1000
}

// exactDegeneracies enumerates every one of the 2^(sizeX*sizeY) spin
// configurations of a periodic grid and counts how many share each energy,
// the true density of states up to an overall additive constant in log
// space.
func exactDegeneracies(sizeX, sizeY int) map[float64]int {
	n := sizeX * sizeY
	deg := make(map[float64]int)
	for pattern := 0; pattern < (1 << uint(n)); pattern++ {
		spins := make([][]int, sizeX)
		for x := range spins {
			spins[x] = make([]int, sizeY)
		}
		for bit := 0; bit < n; bit++ {
			x, y := bit/sizeY, bit%sizeY
			if pattern&(1<<uint(bit)) != 0 {
				spins[x][y] = 1
			} else {
				spins[x][y] = -1
			}
		}
		e := localEnergy(spins, sizeX, sizeY)
		deg[e]++
	}
	return deg
}

// TestWangLandauRecoversExactDOSOnSmallGrid runs Wang-Landau on a 2x3
// periodic Ising grid, whose full 64-state space can be enumerated exactly,
// and checks that the converged ln g(E) differences match the exact
// ln(degeneracy) differences within a loosened tolerance appropriate for a
// scaled-down run.
func TestWangLandauRecoversExactDOSOnSmallGrid(t *testing.T) {
	const sizeX, sizeY = 2, 3
	exact := exactDegeneracies(sizeX, sizeY)

	grid := isingref.NewGrid(sizeX, sizeY, 0)
	eng, err := New[mcmodel.Float64Energy, *isingref.FlipStep](1.0, 1e-3, 0.5, 0.8, 2000, 0, 0, 7, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.Run(grid); err != nil {
		t.Fatal(err)
	}

	if eng.ModFactor > eng.ModFactorFinal {
		t.Fatalf("modification factor %v did not shrink to the termination threshold %v", eng.ModFactor, eng.ModFactorFinal)
	}

	var energies []float64
	for e := range exact {
		if _, ok := eng.DOS.Lookup(e); ok {
			energies = append(energies, e)
		}
	}
	if len(energies) < 2 {
		t.Fatalf("Wang-Landau visited only %d of %d exact energy levels", len(energies), len(exact))
	}

	ref := energies[0]
	for _, e := range energies[1:] {
		gotDiff := eng.DOS.Get(e) - eng.DOS.Get(ref)
		wantDiff := math.Log(float64(exact[e])) - math.Log(float64(exact[ref]))
		if math.Abs(gotDiff-wantDiff) > 0.75 {
			t.Fatalf("ln g(%v)-ln g(%v) = %v, want approximately %v (exact degeneracies %d and %d)",
				e, ref, gotDiff, wantDiff, exact[e], exact[ref])
		}
	}
}

// TestCheckpointRoundTripRestoresDOSAndModFactor verifies that saving and
// reloading a Wang-Landau checkpoint reproduces the modification factor and
// both histograms exactly.
func TestCheckpointRoundTripRestoresDOSAndModFactor(t *testing.T) {
	dir := t.TempDir()
	grid := isingref.NewGrid(4, 4, 0)

	eng, err := New[mcmodel.Float64Energy, *isingref.FlipStep](1.0, 0.01, 0.5, 0.8, 200, 0, 0, 9, dir)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 500; i++ {
		eng.currentEnergy = grid.Energy()
		eng.RunInnerStep(grid, eng)
		bin := eng.DOS.Bin(grid.Energy().Float64())
		eng.DOS.Add(bin, eng.ModFactor)
		eng.Incidence.Add(bin, 1)
	}

	path := filepath.Join(dir, "wl-checkpoint.json")
	if err := eng.SaveCheckpoint(path); err != nil {
		t.Fatal(err)
	}

	eng2, err := New[mcmodel.Float64Energy, *isingref.FlipStep](1.0, 0.01, 0.5, 0.8, 200, 0, 0, 999, dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := eng2.LoadCheckpoint(path); err != nil {
		t.Fatal(err)
	}

	if eng2.ModFactor != eng.ModFactor {
		t.Fatalf("restored ModFactor = %v, want %v", eng2.ModFactor, eng.ModFactor)
	}

	eng.DOS.Range(func(k, v float64) bool {
		if got := eng2.DOS.Get(k); got != v {
			t.Fatalf("restored DOS[%v] = %v, want %v", k, got, v)
		}
		return true
	})
	eng.Incidence.Range(func(k float64, v int) bool {
		if got := eng2.Incidence.Get(k); got != v {
			t.Fatalf("restored Incidence[%v] = %v, want %v", k, got, v)
		}
		return true
	})
}
