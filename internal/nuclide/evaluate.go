package nuclide

import (
	"github.com/san-kum/nucsim/internal/particle"
)

// ThermalTable is the S(a,b) bound-scattering contract supplied by the
// material layer. A table applies below its cutoff energy and splits the
// bound cross section into elastic and inelastic parts at the particle's
// energy and temperature.
type ThermalTable interface {
	// CutoffEnergy is the upper energy bound of applicability (eV).
	CutoffEnergy() float64

	// CalculateXS returns the selected table temperature index and the
	// bound elastic/inelastic cross sections. seed may be advanced when
	// the table itself samples between temperatures.
	CalculateXS(e, sqrtKT float64, seed *uint64) (iTemp int, elastic, inelastic float64)
}

// CalculateXS evaluates the microscopic cross sections of this nuclide at
// the particle's current energy and temperature, writing the result into the
// particle-local cache. sab and sabFrac describe an optional bound thermal
// treatment for this nuclide in the current material; logBin is the coarse
// union-mesh bin for the particle energy, shared across nuclides.
func (n *Nuclide) CalculateXS(p *particle.Particle, sab ThermalTable, sabFrac float64, logBin int) {
	micro := p.MicroXS(n.index)

	micro.InvalidateElastic()
	micro.Thermal = 0.0
	micro.ThermalElast = 0.0

	useMP := n.multipoleInRange(p.E())

	if useMP {
		n.calculateMultipoleXS(p, micro)
	} else {
		n.calculateTabulatedXS(p, micro, logBin)
	}

	micro.SabActive = false
	micro.SabFrac = 0.0
	micro.UsePtable = false

	if sab != nil && p.E() < sab.CutoffEnergy() {
		n.calculateSabXS(p, sab, sabFrac)
	}

	// Probability tables apply only on the tabulated path: the multipole
	// evaluation already resolves the resonance structure pointwise.
	if n.opts.URRPTables && n.urrPresent && !useMP {
		if u := n.urr[micro.IndexTemp]; u != nil && u.InBounds(p.E()) {
			n.calculateURRXS(micro.IndexTemp, p)
		}
	}

	micro.LastE = p.E()
	micro.LastSqrtKT = p.SqrtKT()
}

// calculateMultipoleXS fills the cache from the closed-form multipole
// evaluation. No energy-grid interpolation happens, so the index fields are
// set to their sentinel.
func (n *Nuclide) calculateMultipoleXS(p *particle.Particle, micro *particle.MicroXS) {
	sigS, sigA, sigF := n.multipole.Evaluate(p.E(), p.SqrtKT())

	micro.Total = sigS + sigA
	micro.SetElastic(sigS)
	micro.Absorption = sigA
	micro.Fission = sigF
	if n.fissionable {
		micro.NuFission = sigF * n.Nu(p.E(), EmissionTotal, 0)
	} else {
		micro.NuFission = 0.0
	}

	if n.opts.NeedDepletionRx {
		// Radiative capture is the only nonzero depletion reaction here.
		micro.Reaction[0] = sigA - sigF
		for i := 1; i < len(micro.Reaction); i++ {
			micro.Reaction[i] = 0.0
		}
	}

	micro.IndexTemp = particle.IndexNone
	micro.IndexGrid = particle.IndexNone
	micro.InterpFactor = 0.0
}

// calculateTabulatedXS resolves temperature and grid bracket, then
// interpolates every composed cross-section column with the same fraction.
func (n *Nuclide) calculateTabulatedXS(p *particle.Particle, micro *particle.MicroXS, logBin int) {
	kT := p.SqrtKT() * p.SqrtKT()
	iTemp := n.findTemperature(kT, p.CurrentSeed())

	grid := &n.grid[iTemp]
	xs := &n.xs[iTemp]

	iGrid := grid.LocateLog(p.E(), logBin)
	f := grid.InterpFactor(p.E(), iGrid)

	micro.IndexTemp = iTemp
	micro.IndexGrid = iGrid
	micro.InterpFactor = f

	micro.Total = (1.0-f)*xs.total[iGrid] + f*xs.total[iGrid+1]
	micro.Absorption = (1.0-f)*xs.absorption[iGrid] + f*xs.absorption[iGrid+1]

	if n.fissionable {
		micro.Fission = (1.0-f)*xs.fission[iGrid] + f*xs.fission[iGrid+1]
		micro.NuFission = (1.0-f)*xs.nuFission[iGrid] + f*xs.nuFission[iGrid+1]
	} else {
		micro.Fission = 0.0
		micro.NuFission = 0.0
	}

	micro.PhotonProd = (1.0-f)*xs.photonProd[iGrid] + f*xs.photonProd[iGrid+1]

	if n.opts.NeedDepletionRx {
		n.calculateDepletionRx(micro, iTemp, iGrid, f)
	}
}

// calculateDepletionRx evaluates the configured depletion reactions. The
// first entry (radiative capture) has no threshold; the multi-neutron
// emission chain at the tail has non-decreasing thresholds, so the scan can
// stop at the first one not yet reached.
func (n *Nuclide) calculateDepletionRx(micro *particle.MicroXS, iTemp, iGrid int, f float64) {
	for i := range micro.Reaction {
		micro.Reaction[i] = 0.0
	}

	for j, mt := range n.opts.DepletionRx {
		rx := n.ReactionByMT(mt)
		if rx == nil {
			continue
		}

		if j == 0 {
			micro.Reaction[0] = rx.at(iTemp, iGrid, f)
			continue
		}

		if iGrid >= rx.XS[iTemp].Threshold {
			// at returns zero past the end of a value array that stops
			// short of the grid end.
			micro.Reaction[j] = rx.at(iTemp, iGrid, f)
		} else if j >= 3 {
			// Below the threshold of (n,xn); the (n,(x+1)n) thresholds
			// are no lower, so the remaining entries stay zero.
			break
		}
	}
}

// calculateElasticXS lazily fills the free-atom elastic entry from the
// elastic reaction at the cached temperature and grid bracket. On the
// multipole path the entry is already valid.
func (n *Nuclide) calculateElasticXS(p *particle.Particle) {
	micro := p.MicroXS(n.index)
	if micro.IndexTemp < 0 {
		return
	}
	xs := n.reactions[0].XS[micro.IndexTemp].Value
	f := micro.InterpFactor
	micro.SetElastic((1.0-f)*xs[micro.IndexGrid] + f*xs[micro.IndexGrid+1])
}

// calculateSabXS applies the bound thermal scattering correction: the bound
// cross section replaces the bound-atom fraction of the free elastic one.
func (n *Nuclide) calculateSabXS(p *particle.Particle, sab ThermalTable, sabFrac float64) {
	micro := p.MicroXS(n.index)
	micro.SabActive = true

	iTemp, elastic, inelastic := sab.CalculateXS(p.E(), p.SqrtKT(), p.CurrentSeed())

	micro.Thermal = sabFrac * (elastic + inelastic)
	micro.ThermalElast = sabFrac * elastic

	n.calculateElasticXS(p)

	micro.Total = micro.Total + micro.Thermal - sabFrac*micro.Elastic
	micro.SetElastic(micro.Thermal + (1.0-sabFrac)*micro.Elastic)

	micro.IndexTempSab = iTemp
	micro.SabFrac = sabFrac
}
