package nuclide

import (
	"math"
	"testing"

	"github.com/san-kum/nucsim/internal/particle"
)

func newTestParticle(opts *Options) *particle.Particle {
	p := particle.New(1, 12345, 1, len(opts.DepletionRx))
	p.SetSqrtKT(math.Sqrt(300 * KBoltzmann))
	return p
}

func evalAt(n *Nuclide, p *particle.Particle, e float64) *particle.MicroXS {
	p.SetE(e)
	n.CalculateXS(p, nil, 0.0, n.opts.LogUnionBin(e))
	return p.MicroXS(n.Index())
}

func TestCalculateXSAtGridPoints(t *testing.T) {
	opts := DefaultOptions()
	opts.NeedDepletionRx = true
	n := newTestNuclide(t, newTestRaw(), opts)
	p := newTestParticle(opts)

	for k, e := range testGrid[:len(testGrid)-1] {
		micro := evalAt(n, p, e)

		total, absorption, fission := expectedComposed(0, k)
		if math.Abs(micro.Total-total) > 1e-12 {
			t.Fatalf("E=%g: total = %g, want %g", e, micro.Total, total)
		}
		if math.Abs(micro.Absorption-absorption) > 1e-12 {
			t.Fatalf("E=%g: absorption = %g, want %g", e, micro.Absorption, absorption)
		}
		if math.Abs(micro.Fission-fission) > 1e-12 {
			t.Fatalf("E=%g: fission = %g, want %g", e, micro.Fission, fission)
		}
		if math.Abs(micro.NuFission-testNuTotal*fission) > 1e-12 {
			t.Fatalf("E=%g: nu-fission = %g, want %g", e, micro.NuFission, testNuTotal*fission)
		}
		if micro.IndexTemp != 0 {
			t.Fatalf("E=%g: temperature index = %d, want 0", e, micro.IndexTemp)
		}
		if micro.IndexGrid != k {
			t.Fatalf("E=%g: grid index = %d, want %d", e, micro.IndexGrid, k)
		}
		if micro.InterpFactor != 0.0 {
			t.Fatalf("E=%g: fraction = %g, want 0", e, micro.InterpFactor)
		}
		if micro.LastE != e || micro.LastSqrtKT != p.SqrtKT() {
			t.Fatalf("E=%g: stale validity stamp", e)
		}
		if micro.ElasticValid() {
			t.Fatalf("E=%g: elastic filled eagerly on the tabulated path", e)
		}
	}
}

func TestCalculateXSInterpolates(t *testing.T) {
	opts := DefaultOptions()
	n := newTestNuclide(t, newTestRaw(), opts)
	p := newTestParticle(opts)

	e := 50.5 // midway between grid points 1 and 100
	micro := evalAt(n, p, e)

	t1, _, _ := expectedComposed(0, 1)
	t2, _, _ := expectedComposed(0, 2)
	if want := 0.5 * (t1 + t2); math.Abs(micro.Total-want) > 1e-12 {
		t.Fatalf("total = %g, want %g", micro.Total, want)
	}
}

func TestCalculateXSSecondTemperature(t *testing.T) {
	opts := DefaultOptions()
	n := newTestNuclide(t, newTestRaw(), opts)
	p := newTestParticle(opts)
	p.SetSqrtKT(math.Sqrt(600 * KBoltzmann))

	micro := evalAt(n, p, testGrid[0])
	if micro.IndexTemp != 1 {
		t.Fatalf("temperature index = %d, want 1", micro.IndexTemp)
	}
	total, _, _ := expectedComposed(1, 0)
	if math.Abs(micro.Total-total) > 1e-12 {
		t.Fatalf("total at 600 K = %g, want %g", micro.Total, total)
	}
}

func TestDepletionReactions(t *testing.T) {
	opts := DefaultOptions()
	opts.NeedDepletionRx = true
	n := newTestNuclide(t, newTestRaw(), opts)
	p := newTestParticle(opts)

	// Below the (n,2n) threshold only capture is nonzero; the scan stops at
	// the first multi-neutron channel not yet reached.
	micro := evalAt(n, p, testGrid[2])
	if micro.Reaction[0] != testCapture[0][2] {
		t.Fatalf("capture = %g, want %g", micro.Reaction[0], testCapture[0][2])
	}
	for j := 1; j < len(micro.Reaction); j++ {
		if micro.Reaction[j] != 0.0 {
			t.Fatalf("reaction %d = %g below threshold, want 0", j, micro.Reaction[j])
		}
	}

	// Above the threshold (n,2n) contributes.
	micro = evalAt(n, p, testGrid[4])
	if micro.Reaction[0] != testCapture[0][4] {
		t.Fatalf("capture = %g, want %g", micro.Reaction[0], testCapture[0][4])
	}
	if micro.Reaction[3] != testN2N[0][1] {
		t.Fatalf("(n,2n) = %g, want %g", micro.Reaction[3], testN2N[0][1])
	}
	// (n,p), (n,alpha), (n,3n), (n,4n) are absent from the data.
	for _, j := range []int{1, 2, 4, 5} {
		if micro.Reaction[j] != 0.0 {
			t.Fatalf("absent reaction %d = %g, want 0", j, micro.Reaction[j])
		}
	}
}

func TestDepletionReactionTruncatedValues(t *testing.T) {
	// A reaction whose value array stops short of the grid end is legal
	// (threshold + length <= grid length); evaluating just past its last
	// tabulated point must yield zero, not read out of range.
	raw := newTestRaw()
	for i := range raw.Reactions {
		if raw.Reactions[i].MT == N2N {
			raw.Reactions[i].XS = map[int]TabulatedXS{
				300: {Threshold: 3, Value: []float64{0.01, 0.05}},
				600: {Threshold: 3, Value: []float64{0.012, 0.055}},
			}
		}
	}

	opts := DefaultOptions()
	opts.NeedDepletionRx = true
	n := newTestNuclide(t, raw, opts)
	p := newTestParticle(opts)

	micro := evalAt(n, p, testGrid[4])
	if micro.Reaction[3] != 0.0 {
		t.Fatalf("(n,2n) past its value array = %g, want 0", micro.Reaction[3])
	}
	// Inside the tabulated span the values still interpolate.
	micro = evalAt(n, p, testGrid[3])
	if micro.Reaction[3] != 0.01 {
		t.Fatalf("(n,2n) at threshold = %g, want 0.01", micro.Reaction[3])
	}
}

type fakeMultipole struct {
	emin, emax       float64
	sigS, sigA, sigF float64
}

func (m *fakeMultipole) EnergyRange() (float64, float64) { return m.emin, m.emax }

func (m *fakeMultipole) Evaluate(e, sqrtKT float64) (float64, float64, float64) {
	return m.sigS, m.sigA, m.sigF
}

func TestCalculateXSMultipole(t *testing.T) {
	raw := newTestRaw()
	raw.Multipole = &fakeMultipole{emin: 0.5, emax: 1e3, sigS: 11, sigA: 9, sigF: 4}

	opts := DefaultOptions()
	opts.NeedDepletionRx = true
	n := newTestNuclide(t, raw, opts)
	p := newTestParticle(opts)

	micro := evalAt(n, p, 100.0)
	if micro.Total != 20 || micro.Absorption != 9 || micro.Fission != 4 {
		t.Fatalf("multipole xs = (%g, %g, %g), want (20, 9, 4)",
			micro.Total, micro.Absorption, micro.Fission)
	}
	if !micro.ElasticValid() || micro.Elastic != 11 {
		t.Fatalf("multipole elastic = %g (valid %v), want 11", micro.Elastic, micro.ElasticValid())
	}
	if want := 4 * testNuTotal; math.Abs(micro.NuFission-want) > 1e-12 {
		t.Fatalf("multipole nu-fission = %g, want %g", micro.NuFission, want)
	}
	if micro.Reaction[0] != 5 {
		t.Fatalf("multipole capture = %g, want 5", micro.Reaction[0])
	}
	if micro.IndexTemp != particle.IndexNone || micro.IndexGrid != particle.IndexNone {
		t.Fatalf("multipole path must use sentinel indices, got (%d, %d)",
			micro.IndexTemp, micro.IndexGrid)
	}

	// Outside the multipole range the tabulated path takes over and the two
	// answers genuinely differ.
	micro = evalAt(n, p, 1e4)
	if micro.IndexTemp == particle.IndexNone {
		t.Fatal("tabulated path expected outside multipole range")
	}
	total, _, _ := expectedComposed(0, 3)
	if math.Abs(micro.Total-total) > 1e-12 {
		t.Fatalf("tabulated total = %g, want %g", micro.Total, total)
	}
}

type fakeThermal struct {
	cutoff    float64
	elastic   float64
	inelastic float64
	iTemp     int
}

func (s *fakeThermal) CutoffEnergy() float64 { return s.cutoff }

func (s *fakeThermal) CalculateXS(e, sqrtKT float64, seed *uint64) (int, float64, float64) {
	return s.iTemp, s.elastic, s.inelastic
}

func TestCalculateXSThermal(t *testing.T) {
	opts := DefaultOptions()
	n := newTestNuclide(t, newTestRaw(), opts)
	p := newTestParticle(opts)

	sab := &fakeThermal{cutoff: 4.0, elastic: 3.0, inelastic: 7.0, iTemp: 2}
	frac := 0.25
	e := testGrid[1] // below cutoff, exactly on a grid point

	p.SetE(e)
	n.CalculateXS(p, sab, frac, opts.LogUnionBin(e))
	micro := p.MicroXS(0)

	freeTotal, _, _ := expectedComposed(0, 1)
	freeElastic := testElastic[0][1]
	thermal := frac * (sab.elastic + sab.inelastic)

	if !micro.SabActive || micro.SabFrac != frac || micro.IndexTempSab != 2 {
		t.Fatalf("thermal bookkeeping = (%v, %g, %d)", micro.SabActive, micro.SabFrac, micro.IndexTempSab)
	}
	if math.Abs(micro.Thermal-thermal) > 1e-12 {
		t.Fatalf("thermal = %g, want %g", micro.Thermal, thermal)
	}
	if want := frac * sab.elastic; math.Abs(micro.ThermalElast-want) > 1e-12 {
		t.Fatalf("thermal elastic = %g, want %g", micro.ThermalElast, want)
	}
	if want := freeTotal + thermal - frac*freeElastic; math.Abs(micro.Total-want) > 1e-12 {
		t.Fatalf("corrected total = %g, want %g", micro.Total, want)
	}
	if want := thermal + (1.0-frac)*freeElastic; math.Abs(micro.Elastic-want) > 1e-12 {
		t.Fatalf("corrected elastic = %g, want %g", micro.Elastic, want)
	}

	// Above the cutoff the correction does not apply.
	e = testGrid[2]
	p.SetE(e)
	n.CalculateXS(p, sab, frac, opts.LogUnionBin(e))
	if micro.SabActive || micro.Thermal != 0.0 {
		t.Fatal("thermal correction applied above cutoff")
	}
}

func TestCalculateXSFullFraction(t *testing.T) {
	// With the whole nuclide bound (fraction 1) the free elastic part
	// vanishes from both total and elastic.
	opts := DefaultOptions()
	n := newTestNuclide(t, newTestRaw(), opts)
	p := newTestParticle(opts)

	sab := &fakeThermal{cutoff: 4.0, elastic: 3.0, inelastic: 7.0}
	e := testGrid[1]
	p.SetE(e)
	n.CalculateXS(p, sab, 1.0, opts.LogUnionBin(e))
	micro := p.MicroXS(0)

	freeTotal, _, _ := expectedComposed(0, 1)
	want := freeTotal + 10.0 - testElastic[0][1]
	if math.Abs(micro.Total-want) > 1e-12 {
		t.Fatalf("fully bound total = %g, want %g", micro.Total, want)
	}
	if math.Abs(micro.Elastic-10.0) > 1e-12 {
		t.Fatalf("fully bound elastic = %g, want 10", micro.Elastic)
	}
}
