package nuclide

import (
	"math"
	"testing"
)

func TestLocateBracketInvariant(t *testing.T) {
	g := EnergyGrid{Energy: testGrid}

	for _, e := range []float64{1e-5, 2.3e-4, 0.999, 1.0, 55.1, 1e2, 7.77e3, 1e4, 4.2e5, 1e6, 1.9e7, 2e7} {
		i := g.Locate(e)
		if i < 0 || i+1 >= len(g.Energy) {
			t.Fatalf("Locate(%g) = %d out of range", e, i)
		}
		if g.Energy[i] > e || e > g.Energy[i+1] {
			t.Fatalf("Locate(%g) = %d: bracket [%g, %g] does not contain e",
				e, i, g.Energy[i], g.Energy[i+1])
		}
	}
}

func TestLocateClamping(t *testing.T) {
	g := EnergyGrid{Energy: testGrid}

	if i := g.Locate(1e-8); i != 0 {
		t.Fatalf("Locate below grid = %d, want 0", i)
	}
	if i := g.Locate(1e9); i != len(testGrid)-2 {
		t.Fatalf("Locate above grid = %d, want %d", i, len(testGrid)-2)
	}
	// Exact hit on the last point brackets from below.
	if i := g.Locate(testGrid[len(testGrid)-1]); i != len(testGrid)-2 {
		t.Fatalf("Locate(last point) = %d, want %d", i, len(testGrid)-2)
	}
}

func TestLocateDegeneratePoints(t *testing.T) {
	// Duplicated point at a reaction threshold discontinuity.
	g := EnergyGrid{Energy: []float64{1, 2, 2, 3}}

	i := g.Locate(2)
	if i != 2 {
		t.Fatalf("Locate(2) = %d, want 2", i)
	}
	if g.Energy[i] != g.Energy[i+1] && g.Energy[i] > 2 {
		t.Fatalf("degenerate bracket [%g, %g] invalid", g.Energy[i], g.Energy[i+1])
	}
	// Interpolation over the bracket must not divide by zero.
	if f := g.InterpFactor(2, i); math.IsNaN(f) || math.IsInf(f, 0) {
		t.Fatalf("InterpFactor on degenerate bracket = %g", f)
	}
}

func TestLocateLogMatchesLocate(t *testing.T) {
	opts := DefaultOptions()
	g := EnergyGrid{Energy: testGrid}
	g.buildIndex(opts)

	e := opts.EnergyMin
	for e < opts.EnergyMax {
		fast := g.LocateLog(e, opts.LogUnionBin(e))
		slow := g.Locate(e)
		if fast != slow {
			t.Fatalf("LocateLog(%g) = %d, Locate = %d", e, fast, slow)
		}
		e *= 1.37
	}

	// Out-of-range energies clamp identically.
	if g.LocateLog(1e-9, 0) != g.Locate(1e-9) {
		t.Fatal("low clamp mismatch")
	}
	if g.LocateLog(1e9, opts.NLogBins-1) != g.Locate(1e9) {
		t.Fatal("high clamp mismatch")
	}
}

func TestLocateLogShortGrid(t *testing.T) {
	// A grid that tops out far below the union mesh maximum must still
	// index without walking past its end.
	opts := DefaultOptions()
	g := EnergyGrid{Energy: []float64{1e-5, 1e-2, 1.0, 10.0}}
	g.buildIndex(opts)

	if i := g.LocateLog(0.5, opts.LogUnionBin(0.5)); i != 1 {
		t.Fatalf("LocateLog(0.5) = %d, want 1", i)
	}
	if i := g.LocateLog(100.0, opts.LogUnionBin(100.0)); i != 2 {
		t.Fatalf("LocateLog above short grid = %d, want 2", i)
	}
}

func TestInterpFactor(t *testing.T) {
	g := EnergyGrid{Energy: testGrid}

	i := g.Locate(1.0)
	if f := g.InterpFactor(1.0, i); f != 0.0 {
		t.Fatalf("exact grid point fraction = %g, want 0", f)
	}

	e := 50.5 // midway between 1 and 100
	i = g.Locate(e)
	if f := g.InterpFactor(e, i); math.Abs(f-0.5) > 1e-12 {
		t.Fatalf("midpoint fraction = %g, want 0.5", f)
	}
}
