package nuclide

import "math"

// ENDF MT numbers used directly by the engine.
const (
	Elastic  = 2
	N2N      = 16
	N3N      = 17
	NFission = 18
	NF       = 19 // first-chance fission
	NNF      = 20
	N2NF     = 21
	N4N      = 37
	N3NF     = 38
	NGamma   = 102
	NP       = 103
	NA       = 107
)

// reactionIndexMax bounds the direct-address MT lookup table.
const reactionIndexMax = 902

// indexNone marks an absent entry in direct-address tables.
const indexNone = -1

// IsFission reports whether mt is total fission or a partial fission channel.
func IsFission(mt int) bool {
	switch mt {
	case NFission, NF, NNF, N2NF, N3NF:
		return true
	}
	return false
}

// IsDisappearance reports whether mt absorbs the neutron without re-emission.
func IsDisappearance(mt int) bool {
	return mt >= 101 && mt <= 117
}

// IsInelasticScatter reports whether mt scatters with internal excitation.
func IsInelasticScatter(mt int) bool {
	switch {
	case mt < 100:
		return !IsFission(mt) && mt >= 5 && mt != 27
	case mt <= 200:
		return !IsDisappearance(mt)
	default:
		return false
	}
}

// ParticleType identifies the species of an emitted reaction product.
type ParticleType int

const (
	Neutron ParticleType = iota
	Photon
)

// EmissionMode distinguishes the timing of an emitted product.
type EmissionMode int

const (
	EmissionPrompt EmissionMode = iota
	EmissionDelayed
	EmissionTotal
)

// Product is one emitted particle of a reaction channel with its
// energy-dependent yield.
type Product struct {
	Particle ParticleType
	Emission EmissionMode
	Yield    Function1D
}

// TabulatedXS is the sparse per-temperature cross section of one reaction:
// zeros below the threshold index are not stored.
type TabulatedXS struct {
	// Threshold is the index into the temperature's energy grid at which
	// Value begins.
	Threshold int
	Value     []float64
}

// Reaction is one reaction channel of a nuclide.
type Reaction struct {
	MT        int
	Redundant bool
	// XS holds one tabulated cross section per stored temperature, in the
	// nuclide's temperature order.
	XS       []TabulatedXS
	Products []Product
}

// at interpolates the reaction cross section between grid points iGrid and
// iGrid+1 with factor f, honoring the threshold offset. Below threshold the
// cross section is zero.
func (r *Reaction) at(iTemp, iGrid int, f float64) float64 {
	xs := &r.XS[iTemp]
	i := iGrid - xs.Threshold
	if i < 0 || i+1 >= len(xs.Value) {
		return 0.0
	}
	return (1.0-f)*xs.Value[i] + f*xs.Value[i+1]
}

// collapseRate integrates the reaction's tabulated cross section at one
// temperature against a histogram flux. energy has one more entry than flux;
// each flux value is the integrated flux of its group, treated as a constant
// density across the group width.
func (r *Reaction) collapseRate(iTemp int, energy, flux, grid []float64) float64 {
	xs := &r.XS[iTemp]
	if len(xs.Value) < 2 {
		return 0.0
	}
	lo := grid[xs.Threshold]
	hi := grid[xs.Threshold+len(xs.Value)-1]

	rate := 0.0
	for g := 0; g < len(flux); g++ {
		a := math.Max(energy[g], lo)
		b := math.Min(energy[g+1], hi)
		if b <= a || flux[g] == 0.0 {
			continue
		}
		density := flux[g] / (energy[g+1] - energy[g])
		rate += density * r.integrate(iTemp, grid, a, b)
	}
	return rate
}

// integrate computes the integral of the linearly interpolated cross section
// over [a, b], both assumed within the tabulated range.
func (r *Reaction) integrate(iTemp int, grid []float64, a, b float64) float64 {
	xs := &r.XS[iTemp]
	j0 := xs.Threshold

	value := func(e float64, i int) float64 {
		// linear interpolation on segment [grid[i], grid[i+1]]
		f := (e - grid[i]) / (grid[i+1] - grid[i])
		return (1.0-f)*xs.Value[i-j0] + f*xs.Value[i-j0+1]
	}

	sum := 0.0
	i := lowerBoundIndex(grid[j0:j0+len(xs.Value)], a) + j0
	for e := a; e < b; {
		if grid[i+1] <= e {
			// duplicate grid point
			i++
			if i-j0+1 >= len(xs.Value) {
				break
			}
			continue
		}
		eNext := math.Min(grid[i+1], b)
		sum += 0.5 * (value(e, i) + value(eNext, i)) * (eNext - e)
		e = eNext
		i++
		if i-j0+1 >= len(xs.Value) {
			break
		}
	}
	return sum
}
