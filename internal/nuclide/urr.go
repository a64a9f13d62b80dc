package nuclide

import (
	"math"
	"sort"

	"github.com/san-kum/nucsim/internal/particle"
	"github.com/san-kum/nucsim/internal/rng"
)

// Interpolation selects how probability-table band values are interpolated
// between energy breakpoints.
type Interpolation int

const (
	LinLin Interpolation = iota
	LogLog
)

// URRXS is one band's (elastic, fission, capture) triple.
type URRXS struct {
	Elastic float64
	Fission float64
	NGamma  float64
}

// URRTable is one temperature's unresolved-resonance probability table.
type URRTable struct {
	// Energy breakpoints, ascending.
	Energy []float64
	// CDF[i][b] is the cumulative probability of band b at breakpoint i.
	CDF [][]float64
	// XS[i][b] holds the band cross sections (or multiplicative factors).
	XS     [][]URRXS
	Interp Interpolation
	// InelasticMT names the ordinary reaction supplying the inelastic
	// competition cross section; 0 means none.
	InelasticMT int
	// MultiplySmooth flags table values as factors on the smooth cross
	// section rather than absolute values.
	MultiplySmooth bool
}

// InBounds reports whether e lies strictly inside the table's energy domain.
func (u *URRTable) InBounds(e float64) bool {
	return u.Energy[0] < e && e < u.Energy[len(u.Energy)-1]
}

// HasNegative reports whether any tabulated band value is negative.
func (u *URRTable) HasNegative() bool {
	for _, row := range u.XS {
		for _, b := range row {
			if b.Elastic < 0 || b.Fission < 0 || b.NGamma < 0 {
				return true
			}
		}
	}
	return false
}

// Sanitize clamps negative cumulative probabilities to zero. Clamping keeps
// every CDF row non-decreasing, which the band selection relies on.
func (u *URRTable) Sanitize() {
	for _, row := range u.CDF {
		for b, v := range row {
			if v < 0 {
				row[b] = 0
			}
		}
	}
}

// selectBand returns the first band whose cumulative value exceeds r.
func (u *URRTable) selectBand(i int, r float64) int {
	row := u.CDF[i]
	b := sort.Search(len(row), func(j int) bool { return row[j] > r })
	if b == len(row) {
		b = len(row) - 1
	}
	return b
}

// calculateURRXS overwrites the cached elastic/absorption/fission/total (and
// capture rate) with values sampled from the probability table at the
// already-selected temperature.
//
// The random draw comes from a dedicated stream indexed by the nuclide's
// registry position, taken without advancing the stream. Different
// temperatures of the same nuclide therefore see the same draw for a given
// history, preserving inter-temperature correlation of the sampled band.
func (n *Nuclide) calculateURRXS(iTemp int, p *particle.Particle) {
	micro := p.MicroXS(n.index)
	micro.UsePtable = true

	urr := n.urr[iTemp]
	e := p.E()

	iEnergy := lowerBoundIndex(urr.Energy, e)

	r := rng.FuturePrn(int64(n.index), *p.Seeds(rng.StreamURRPtable))

	bLow := urr.selectBand(iEnergy, r)
	bUp := urr.selectBand(iEnergy+1, r)

	var elastic, fission, capture float64
	switch urr.Interp {
	case LinLin:
		f := (e - urr.Energy[iEnergy]) /
			(urr.Energy[iEnergy+1] - urr.Energy[iEnergy])
		lo, up := urr.XS[iEnergy][bLow], urr.XS[iEnergy+1][bUp]
		elastic = (1.0-f)*lo.Elastic + f*up.Elastic
		fission = (1.0-f)*lo.Fission + f*up.Fission
		capture = (1.0-f)*lo.NGamma + f*up.NGamma

	case LogLog:
		f := math.Log(e/urr.Energy[iEnergy]) /
			math.Log(urr.Energy[iEnergy+1]/urr.Energy[iEnergy])
		lo, up := urr.XS[iEnergy][bLow], urr.XS[iEnergy+1][bUp]

		// A zero endpoint would put a log at -inf; the channel
		// interpolates to zero instead.
		if lo.Elastic > 0 && up.Elastic > 0 {
			elastic = math.Exp((1.0-f)*math.Log(lo.Elastic) + f*math.Log(up.Elastic))
		}
		if lo.Fission > 0 && up.Fission > 0 {
			fission = math.Exp((1.0-f)*math.Log(lo.Fission) + f*math.Log(up.Fission))
		}
		if lo.NGamma > 0 && up.NGamma > 0 {
			capture = math.Exp((1.0-f)*math.Log(lo.NGamma) + f*math.Log(up.NGamma))
		}
	}

	// Inelastic competition comes from an ordinary tabulated reaction,
	// reusing the interpolation state established by the tabulated path.
	inelastic := 0.0
	if urr.InelasticMT != 0 {
		rx := n.reactions[n.urrInelastic]
		xs := &rx.XS[iTemp]
		i := micro.IndexGrid - xs.Threshold
		if i >= 0 && i+1 < len(xs.Value) {
			f := micro.InterpFactor
			inelastic = (1.0-f)*xs.Value[i] + f*xs.Value[i+1]
		}
	}

	if urr.MultiplySmooth {
		n.calculateElasticXS(p)
		elastic *= micro.Elastic
		capture *= micro.Absorption - micro.Fission
		fission *= micro.Fission
	}

	// Numerical noise guard.
	if elastic < 0 {
		elastic = 0
	}
	if fission < 0 {
		fission = 0
	}
	if capture < 0 {
		capture = 0
	}

	// Total is recomposed as a sum of parts; any table-provided total is
	// intentionally ignored.
	micro.SetElastic(elastic)
	micro.Absorption = capture + fission
	micro.Fission = fission
	micro.Total = elastic + inelastic + capture + fission
	if n.opts.NeedDepletionRx && len(micro.Reaction) > 0 {
		micro.Reaction[0] = capture
	}

	if n.fissionable {
		micro.NuFission = n.Nu(e, EmissionTotal, 0) * micro.Fission
	}
}
