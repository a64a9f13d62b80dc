package nuclide

import (
	"math"
	"sort"
)

// EnergyGrid is one stored temperature's strictly increasing energy grid plus
// the mapping from coarse logarithmic-union bins to grid indices. The mapping
// bounds the binary search to a small window, which matters because the
// lookup runs for every nuclide on every particle energy change.
type EnergyGrid struct {
	Energy []float64
	// GridIndex[k] is the largest grid index whose energy does not exceed
	// the k-th union mesh point.
	GridIndex []int
}

// lowerBoundIndex returns i such that a[i] <= v <= a[i+1] for v within
// [a[0], a[len-1]]; exact interior hits return the hit index (fraction 0),
// a hit on the last point returns len-2 (fraction 1).
func lowerBoundIndex(a []float64, v float64) int {
	i := sort.SearchFloat64s(a, v)
	switch {
	case i == len(a):
		return len(a) - 2
	case a[i] == v:
		if i == len(a)-1 {
			return i - 1
		}
		return i
	case i == 0:
		return 0
	default:
		return i - 1
	}
}

// Locate performs an unaccelerated bracket search with boundary clamping and
// the degenerate-equal-points rule. Used for 0 K grids and as a reference in
// tests.
func (g *EnergyGrid) Locate(e float64) int {
	n := len(g.Energy)
	var i int
	switch {
	case e < g.Energy[0]:
		i = 0
	case e > g.Energy[n-1]:
		i = n - 2
	default:
		i = lowerBoundIndex(g.Energy, e)
	}
	if g.Energy[i] == g.Energy[i+1] {
		i++
	}
	return i
}

// LocateLog brackets e using the coarse union bin supplied by the caller to
// restrict the binary search to [GridIndex[bin], GridIndex[bin+1]+1].
func (g *EnergyGrid) LocateLog(e float64, bin int) int {
	n := len(g.Energy)
	var i int
	switch {
	case e < g.Energy[0]:
		i = 0
	case e > g.Energy[n-1]:
		i = n - 2
	default:
		lo := g.GridIndex[bin]
		hi := g.GridIndex[bin+1] + 1
		if hi >= n {
			hi = n - 1
		}
		i = lo + lowerBoundIndex(g.Energy[lo:hi+1], e)
	}
	if g.Energy[i] == g.Energy[i+1] {
		i++
	}
	return i
}

// InterpFactor returns the linear interpolation fraction for e on the
// bracket [i, i+1].
func (g *EnergyGrid) InterpFactor(e float64, i int) float64 {
	return (e - g.Energy[i]) / (g.Energy[i+1] - g.Energy[i])
}

// buildIndex fills GridIndex for the shared union mesh defined by opts.
func (g *EnergyGrid) buildIndex(opts *Options) {
	m := opts.NLogBins
	spacing := opts.LogSpacing()

	g.GridIndex = make([]int, m+1)
	j := 0
	for k := 0; k <= m; k++ {
		for math.Log(g.Energy[j+1]/opts.EnergyMin) <= float64(k)*spacing {
			// Guard isotopes whose grid tops out far below the union
			// mesh maximum.
			if j+2 == len(g.Energy) {
				break
			}
			j++
		}
		g.GridIndex[k] = j
	}
}
