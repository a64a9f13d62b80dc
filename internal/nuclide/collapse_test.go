package nuclide

import (
	"errors"
	"math"
	"testing"
)

// constantXSRaw builds a nuclide whose elastic cross section is flat: c0 at
// 300 K and c1 at 600 K.
func constantXSRaw(c0, c1 float64) *Raw {
	flat := func(c float64) []float64 {
		v := make([]float64, len(testGrid))
		for i := range v {
			v[i] = c
		}
		return v
	}
	raw := newTestRaw()
	for i := range raw.Reactions {
		if raw.Reactions[i].MT == Elastic {
			raw.Reactions[i].XS = map[int]TabulatedXS{
				300: {Value: flat(c0)},
				600: {Value: flat(c1)},
			}
		}
	}
	return raw
}

func TestCollapseRateFlatXS(t *testing.T) {
	n := newTestNuclide(t, constantXSRaw(3.0, 5.0), nil)

	energy := []float64{1.0, 10.0, 100.0}
	flux := []float64{2.0, 4.0}

	// A constant cross section collapses to xs times the integrated flux.
	rate, err := n.CollapseRate(Elastic, 300, energy, flux)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 3.0 * 6.0; math.Abs(rate-want) > 1e-9 {
		t.Fatalf("rate = %g, want %g", rate, want)
	}
}

func TestCollapseRateAbsentReaction(t *testing.T) {
	n := newTestNuclide(t, newTestRaw(), nil)

	rate, err := n.CollapseRate(NA, 300, []float64{1, 100}, []float64{1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 0.0 {
		t.Fatalf("rate for absent MT = %g, want 0", rate)
	}
}

func TestCollapseRateGroupBounds(t *testing.T) {
	n := newTestNuclide(t, newTestRaw(), nil)

	if _, err := n.CollapseRate(Elastic, 300, []float64{1, 100}, []float64{1, 2}); !errors.Is(err, ErrGroupBounds) {
		t.Fatalf("err = %v, want ErrGroupBounds", err)
	}
}

func TestCollapseRateBelowThreshold(t *testing.T) {
	n := newTestNuclide(t, newTestRaw(), nil)

	// The (n,2n) channel starts at 1e4 eV; a group entirely below it
	// contributes nothing.
	rate, err := n.CollapseRate(N2N, 300, []float64{1.0, 100.0}, []float64{1.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rate != 0.0 {
		t.Fatalf("rate below threshold = %g, want 0", rate)
	}
}

func TestCollapseRateLinearSegment(t *testing.T) {
	n := newTestNuclide(t, newTestRaw(), nil)

	// One group spanning exactly one grid segment: the rate reduces to the
	// average of the endpoint cross sections times the integrated flux.
	rate, err := n.CollapseRate(NFission, 300, []float64{1.0, 100.0}, []float64{1.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 0.5 * (testFission[0][1] + testFission[0][2])
	if math.Abs(rate-want) > 1e-9 {
		t.Fatalf("rate = %g, want %g", rate, want)
	}
}

func TestCollapseRatePartialGroup(t *testing.T) {
	n := newTestNuclide(t, newTestRaw(), nil)

	// A group clipped by the tabulated range: only the covered part of the
	// group integrates, with the group's flux density.
	value := func(e float64) float64 {
		f := (e - 1.0) / 99.0
		return (1.0-f)*testFission[0][1] + f*testFission[0][2]
	}
	a, b := 10.0, 50.0
	flux := 3.0
	want := flux / (b - a) * 0.5 * (value(a) + value(b)) * (b - a)

	rate, err := n.CollapseRate(NFission, 300, []float64{a, b}, []float64{flux})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(rate-want) > 1e-9 {
		t.Fatalf("rate = %g, want %g", rate, want)
	}
}

func TestCollapseRateTemperatureInterpolation(t *testing.T) {
	opts := DefaultOptions()
	opts.Method = MethodInterpolation
	n := newTestNuclide(t, constantXSRaw(3.0, 5.0), opts)

	energy := []float64{1.0, 10.0, 100.0}
	flux := []float64{2.0, 4.0}

	// Exactly on a stored temperature the fraction is zero and only the
	// lower integration runs.
	rate, err := n.CollapseRate(Elastic, 300, energy, flux)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 18.0; math.Abs(rate-want) > 1e-9 {
		t.Fatalf("rate at 300 K = %g, want %g", rate, want)
	}

	// Midway the rate is the average of the two temperatures' rates.
	rate, err = n.CollapseRate(Elastic, 450, energy, flux)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 24.0; math.Abs(rate-want) > 1e-9 {
		t.Fatalf("rate at 450 K = %g, want %g", rate, want)
	}
}
