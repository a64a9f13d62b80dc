// Package thermal provides the S(a,b) bound-scattering tables consumed by
// the cross-section engine. A table splits the bound cross section of a
// molecular or crystalline material into elastic and inelastic parts at the
// particle's energy; the engine mixes it with the free-atom cross section
// according to the bound-atom fraction.
package thermal

import (
	"github.com/san-kum/nucsim/internal/nuclide"
	"github.com/san-kum/nucsim/internal/rng"
)

// TemperatureXS is the bound elastic/inelastic cross section tabulated at
// one temperature.
type TemperatureXS struct {
	KT        float64 // eV
	Elastic   nuclide.Tabulated1D
	Inelastic nuclide.Tabulated1D
}

// Table is one thermal scattering law, applicable below its cutoff energy,
// stored at one or more temperatures.
type Table struct {
	Name string
	// Cutoff is the highest energy (eV) at which the law applies.
	Cutoff float64
	// Temps are ascending in KT.
	Temps []TemperatureXS

	// Stochastic selects stochastic rounding between bracketing
	// temperatures instead of nearest selection.
	Stochastic bool
}

// CutoffEnergy implements nuclide.ThermalTable.
func (t *Table) CutoffEnergy() float64 { return t.Cutoff }

// CalculateXS selects a stored temperature for the particle's kT and
// evaluates the bound elastic and inelastic cross sections at e.
func (t *Table) CalculateXS(e, sqrtKT float64, seed *uint64) (int, float64, float64) {
	iTemp := t.selectTemperature(sqrtKT*sqrtKT, seed)
	xs := &t.Temps[iTemp]
	return iTemp, xs.Elastic.At(e), xs.Inelastic.At(e)
}

func (t *Table) selectTemperature(kT float64, seed *uint64) int {
	n := len(t.Temps)
	if n == 1 || kT <= t.Temps[0].KT {
		return 0
	}
	if kT >= t.Temps[n-1].KT {
		return n - 1
	}

	i := 0
	for ; i < n-1; i++ {
		if t.Temps[i].KT <= kT && kT < t.Temps[i+1].KT {
			break
		}
	}

	if t.Stochastic {
		f := (kT - t.Temps[i].KT) / (t.Temps[i+1].KT - t.Temps[i].KT)
		if f > rng.Prn(seed) {
			i++
		}
		return i
	}

	// Nearest of the bracketing pair.
	if kT-t.Temps[i].KT > t.Temps[i+1].KT-kT {
		i++
	}
	return i
}

var _ nuclide.ThermalTable = (*Table)(nil)
