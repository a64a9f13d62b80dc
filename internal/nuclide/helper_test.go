package nuclide

import (
	"go.uber.org/zap"
)

// testGrid is the shared synthetic energy grid: six points spanning the
// default union mesh.
var testGrid = []float64{1e-5, 1.0, 1e2, 1e4, 1e6, 2e7}

// Channel values at each grid point, per temperature index.
var (
	testElastic = [2][]float64{
		{20, 18, 10, 5, 2, 2},
		{21, 19, 11, 6, 3, 3},
	}
	testCapture = [2][]float64{
		{50, 10, 2, 0.5, 0.1, 0.05},
		{48, 9, 1.8, 0.4, 0.09, 0.04},
	}
	testFission = [2][]float64{
		{100, 30, 5, 1, 0.5, 0.2},
		{95, 28, 4.5, 0.9, 0.45, 0.18},
	}
	// threshold 3
	testN2N = [2][]float64{
		{0.01, 0.05, 0.1},
		{0.012, 0.055, 0.11},
	}
	// threshold 2
	testInelastic = [2][]float64{
		{0.5, 1.0, 0.8, 0.6},
		{0.55, 1.05, 0.85, 0.65},
	}
)

const (
	testNuPrompt  = 2.43
	testNuDelayed = 0.016
	testNuTotal   = 2.9
	testPhotonYld = 7.0
)

// newTestRaw builds a synthetic fissionable nuclide with stored temperatures
// 300 K and 600 K.
func newTestRaw() *Raw {
	perTemp := func(vals [2][]float64, threshold int) map[int]TabulatedXS {
		return map[int]TabulatedXS{
			300: {Threshold: threshold, Value: append([]float64(nil), vals[0]...)},
			600: {Threshold: threshold, Value: append([]float64(nil), vals[1]...)},
		}
	}

	return &Raw{
		Name: "U235",
		Z:    92,
		A:    235,
		AWR:  233.0248,
		KTs: map[int]float64{
			300: 300 * KBoltzmann,
			600: 600 * KBoltzmann,
		},
		Energy: map[int][]float64{
			300: append([]float64(nil), testGrid...),
			600: append([]float64(nil), testGrid...),
		},
		Reactions: []RawReaction{
			{MT: N2N, XS: perTemp(testN2N, 3)},
			{
				MT: NFission,
				XS: perTemp(testFission, 0),
				Products: []Product{
					{Particle: Neutron, Emission: EmissionPrompt, Yield: Constant(testNuPrompt)},
					{Particle: Neutron, Emission: EmissionDelayed, Yield: Constant(testNuDelayed)},
					{Particle: Photon, Emission: EmissionPrompt, Yield: Constant(testPhotonYld)},
				},
			},
			{MT: Elastic, XS: perTemp(testElastic, 0)},
			{MT: NGamma, XS: perTemp(testCapture, 0)},
			{MT: 51, XS: perTemp(testInelastic, 2)},
		},
		TotalNu: Constant(testNuTotal),
	}
}

// testURRTable builds a one-band lin-lin probability table valid on
// [10, 1000] eV.
func testURRTable(multiply bool, inelasticMT int) *URRTable {
	return &URRTable{
		Energy: []float64{10, 100, 1000},
		CDF: [][]float64{
			{0.6, 1.0},
			{0.6, 1.0},
			{0.6, 1.0},
		},
		XS: [][]URRXS{
			{{Elastic: 12, Fission: 6, NGamma: 3}, {Elastic: 14, Fission: 7, NGamma: 3.5}},
			{{Elastic: 8, Fission: 4, NGamma: 2}, {Elastic: 10, Fission: 5, NGamma: 2.5}},
			{{Elastic: 4, Fission: 2, NGamma: 1}, {Elastic: 6, Fission: 3, NGamma: 1.5}},
		},
		Interp:         LinLin,
		InelasticMT:    inelasticMT,
		MultiplySmooth: multiply,
	}
}

func withURR(raw *Raw, multiply bool, inelasticMT int) *Raw {
	raw.URR = map[int]*URRTable{
		300: testURRTable(multiply, inelasticMT),
		600: testURRTable(multiply, inelasticMT),
	}
	return raw
}

func newTestNuclide(t testingT, raw *Raw, opts *Options) *Nuclide {
	t.Helper()
	if opts == nil {
		opts = DefaultOptions()
	}
	n, err := New(raw, []float64{300, 600}, 0, opts, zap.NewNop())
	if err != nil {
		t.Fatalf("building test nuclide: %v", err)
	}
	return n
}

// testingT is the subset of *testing.T the helpers need.
type testingT interface {
	Fatalf(format string, args ...any)
	Helper()
}
