package nuclide

import "math"

// KBoltzmann converts temperature in kelvin to kT in eV.
const KBoltzmann = 8.617333262e-5

// Method selects how a requested temperature maps onto stored temperatures.
type Method int

const (
	// MethodNearest picks the single closest stored temperature.
	MethodNearest Method = iota
	// MethodInterpolation uses the bracketing pair: both members are loaded
	// at setup time, and evaluation stochastically rounds to one of them.
	MethodInterpolation
)

func (m Method) String() string {
	if m == MethodInterpolation {
		return "interpolation"
	}
	return "nearest"
}

// Options carries the engine configuration shared by all nuclides. It is
// fixed before any evaluation starts and read-only afterwards.
type Options struct {
	Method    Method
	Tolerance float64 // K

	// TemperatureRange, when Max > 0, loads every stored temperature in the
	// expanded [Min, Max] range regardless of the nominal model temperatures.
	TemperatureRange [2]float64 // K

	CreateDelayedNeutrons bool
	DelayedPhotonScaling  bool
	URRPTables            bool

	ResScatOn       bool
	ResScatNuclides []string

	// NeedDepletionRx enables per-reaction depletion cross sections,
	// evaluated for the MTs in DepletionRx.
	NeedDepletionRx bool
	DepletionRx     []int

	// Union logarithmic energy mesh shared by all nuclide grids.
	NLogBins  int
	EnergyMin float64 // eV
	EnergyMax float64 // eV
}

// DefaultDepletionRx is the ordered depletion reaction list: radiative
// capture first (threshold-free), then (n,p), (n,alpha), and the
// multi-neutron-emission chain whose thresholds are non-decreasing.
func DefaultDepletionRx() []int {
	return []int{NGamma, NP, NA, N2N, N3N, N4N}
}

func DefaultOptions() *Options {
	return &Options{
		Method:                MethodNearest,
		Tolerance:             10.0,
		CreateDelayedNeutrons: true,
		DelayedPhotonScaling:  true,
		URRPTables:            true,
		DepletionRx:           DefaultDepletionRx(),
		NLogBins:              8000,
		EnergyMin:             1e-5,
		EnergyMax:             2e7,
	}
}

// LogSpacing returns the width of one coarse logarithmic-union bin.
func (o *Options) LogSpacing() float64 {
	return math.Log(o.EnergyMax/o.EnergyMin) / float64(o.NLogBins)
}

// LogUnionBin maps an energy onto the shared coarse logarithmic mesh. The
// result is computed once per particle energy change and passed to every
// nuclide evaluated at that energy.
func (o *Options) LogUnionBin(e float64) int {
	if e <= o.EnergyMin {
		return 0
	}
	bin := int(math.Log(e/o.EnergyMin) / o.LogSpacing())
	if bin >= o.NLogBins {
		bin = o.NLogBins - 1
	}
	return bin
}
