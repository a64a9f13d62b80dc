package nuclide

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/san-kum/nucsim/internal/rng"
)

// SelectTemperatures is the construction-time temperature selection: it
// decides which of the available stored temperatures (kelvin, rounded,
// ascending) must be loaded to cover the requested nominal temperatures.
// Under the interpolation method both bracketing temperatures are loaded
// deterministically; the stochastic rounding between them happens only at
// evaluation time. An empty requested set loads every available
// temperature. The returned list is sorted and duplicate-free.
func SelectTemperatures(name string, available, requested []float64, opts *Options, log *zap.Logger) ([]int, error) {
	var selected []int
	contains := func(t int) bool {
		for _, s := range selected {
			if s == t {
				return true
			}
		}
		return false
	}

	// A configured temperature range loads every available temperature in
	// the expanded range, one step past each bound, regardless of the
	// nominal temperatures in the model. With no nominal temperatures at
	// all the range is unbounded and everything available is loaded.
	tMin, tMax := opts.TemperatureRange[0], opts.TemperatureRange[1]
	if len(requested) == 0 {
		tMin, tMax = 0.0, math.Inf(1)
	}
	if tMax > 0.0 {
		lo := sort.SearchFloat64s(available, tMin)
		if lo == len(available) || available[lo] > tMin {
			if lo > 0 {
				lo--
			}
		}
		hi := sort.SearchFloat64s(available, tMax)
		if hi < len(available) {
			hi++
		}
		for i := lo; i < hi && i < len(available); i++ {
			t := int(math.Round(available[i]))
			if !contains(t) {
				selected = append(selected, t)
			}
		}
	}

	switch opts.Method {
	case MethodNearest:
		for _, want := range requested {
			best, minDelta := 0.0, math.Inf(1)
			for _, t := range available {
				if d := math.Abs(t - want); d < minDelta {
					best, minDelta = t, d
				}
			}
			if minDelta >= opts.Tolerance {
				return nil, fmt.Errorf("%w: %g K requested, available %v K",
					ErrNoTemperatureMatch, want, available)
			}
			if t := int(math.Round(best)); !contains(t) {
				selected = append(selected, t)
				// Resonance elastic scattering wants 0 K data; flag the
				// substitution when only a warmer temperature exists.
				if want == 0.0 && minDelta > 0 {
					log.Warn("no 0 K data for resonance scattering, substituting nearest temperature",
						zap.String("nuclide", name), zap.Float64("temperature", best))
				}
			}
		}

	case MethodInterpolation:
		for _, want := range requested {
			found := false
			for j := 0; j+1 < len(available); j++ {
				if available[j] <= want && want < available[j+1] {
					for _, t := range []int{int(available[j]), int(available[j+1])} {
						if !contains(t) {
							selected = append(selected, t)
						}
					}
					found = true
				}
			}
			if found {
				continue
			}
			// The requested temperature may fall just outside the stored
			// span; accept it if within tolerance of an extreme.
			if math.Abs(want-available[0]) <= opts.Tolerance {
				if t := int(available[0]); !contains(t) {
					selected = append(selected, t)
				}
				continue
			}
			if math.Abs(want-available[len(available)-1]) <= opts.Tolerance {
				if t := int(available[len(available)-1]); !contains(t) {
					selected = append(selected, t)
				}
				continue
			}
			return nil, fmt.Errorf("%w: %g K requested, available %v K",
				ErrNoBracketingPair, want, available)
		}
	}

	sort.Ints(selected)
	return selected, nil
}

// effectiveMethod reverts interpolation to nearest when only one stored
// temperature exists. This is a warning, not an error.
func effectiveMethod(name string, nAvailable int, opts *Options, log *zap.Logger) Method {
	if nAvailable == 1 && opts.Method == MethodInterpolation {
		log.Warn("cross sections available at a single temperature, reverting to nearest method",
			zap.String("nuclide", name))
		return MethodNearest
	}
	return opts.Method
}

// findTemperature is the runtime selection used on every evaluation: nearest
// picks the closest stored kT; interpolation clamps outside the stored span
// and otherwise stochastically rounds to one of the bracketing temperatures
// by comparing the interpolation fraction against a uniform draw.
func (n *Nuclide) findTemperature(kT float64, seed *uint64) int {
	switch n.method {
	case MethodInterpolation:
		if kT < n.kTs[0] {
			return 0
		}
		last := len(n.kTs) - 1
		if kT > n.kTs[last] {
			return last
		}
		i := 0
		for ; i < last; i++ {
			if n.kTs[i] <= kT && kT < n.kTs[i+1] {
				break
			}
		}
		if i == last {
			// kT equals the highest stored temperature
			return last
		}
		f := (kT - n.kTs[i]) / (n.kTs[i+1] - n.kTs[i])
		if f > rng.Prn(seed) {
			i++
		}
		return i

	default:
		best, minDiff := 0, math.Inf(1)
		for t, stored := range n.kTs {
			if d := math.Abs(stored - kT); d < minDiff {
				best, minDiff = t, d
			}
		}
		return best
	}
}

// FindTemperature is the deterministic variant used by rate collapsing:
// under interpolation it returns the lower bracket and the interpolation
// fraction instead of sampling. An exact hit on a stored temperature
// returns that temperature with fraction zero, letting the caller skip
// the upper-bracket computation.
func (n *Nuclide) FindTemperature(temperature float64) (int, float64) {
	kT := KBoltzmann * temperature
	switch n.method {
	case MethodInterpolation:
		last := len(n.kTs) - 1
		if kT <= n.kTs[0] {
			return 0, 0.0
		}
		if kT >= n.kTs[last] {
			return last, 0.0
		}
		i := 0
		for kT >= n.kTs[i+1] {
			i++
		}
		return i, (kT - n.kTs[i]) / (n.kTs[i+1] - n.kTs[i])

	default:
		best, minDiff := 0, math.Inf(1)
		for t, stored := range n.kTs {
			if d := math.Abs(stored - kT); d < minDiff {
				best, minDiff = t, d
			}
		}
		return best, 0.0
	}
}
