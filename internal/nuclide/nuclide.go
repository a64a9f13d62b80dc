// Package nuclide implements the in-memory nuclear data model and the
// microscopic cross-section evaluation that runs on every collision and
// tracking step of a Monte Carlo transport simulation. All shared data is
// built single-threaded at load time and read-only during transport; the
// only mutable evaluation state lives in the particle's own cache.
package nuclide

import (
	"math"
	"sort"

	"go.uber.org/zap"
)

// FissionEnergyRelease groups the energy-release components of fission as
// functions of incident energy.
type FissionEnergyRelease struct {
	QPrompt        Function1D
	QRecoverable   Function1D
	Fragments      Function1D
	Betas          Function1D
	PromptPhotons  Function1D
	DelayedPhotons Function1D
}

// Raw is the data-source contract: everything the excluded file-format
// loader supplies for one nuclide, keyed by rounded temperature in kelvin
// where per-temperature.
type Raw struct {
	Name       string
	Z, A       int
	Metastable bool
	AWR        float64

	// KTs maps each available temperature (K, rounded) to its exact kT (eV).
	KTs map[int]float64
	// Energy maps each available temperature to its energy grid (eV).
	Energy map[int][]float64

	Reactions []RawReaction

	Energy0K  []float64
	Elastic0K []float64

	// URR maps temperatures to probability tables; may cover a subset.
	URR map[int]*URRTable

	TotalNu       Function1D
	EnergyRelease *FissionEnergyRelease
	Multipole     Multipole
}

// RawReaction is one reaction channel as delivered by the data source.
type RawReaction struct {
	MT        int
	Redundant bool
	// XS maps each available temperature to the sparse cross section.
	XS       map[int]TabulatedXS
	Products []Product
}

// composedXS holds one temperature's composed cross-section columns,
// parallel to the energy grid.
type composedXS struct {
	total      []float64
	absorption []float64
	fission    []float64
	nuFission  []float64
	photonProd []float64
}

// Nuclide is one isotope's loaded nuclear data. Immutable after load.
type Nuclide struct {
	index      int
	name       string
	z, a       int
	metastable bool
	awr        float64

	// Stored temperatures as exact kT values (eV), ascending.
	kTs  []float64
	grid []EnergyGrid
	xs   []composedXS

	reactions     []*Reaction
	reactionIndex [reactionIndexMax]int32

	indexInelasticScatter []int
	fissionRx             []*Reaction
	fissionable           bool
	hasPartialFission     bool
	nPrecursor            int

	totalNu       Function1D
	energyRelease *FissionEnergyRelease

	energy0K  []float64
	elastic0K []float64
	xsCDF     []float64
	resonant  bool

	urr          []*URRTable
	urrPresent   bool
	urrInelastic int

	multipole Multipole

	// method is the effective temperature method for this nuclide; it can
	// differ from the configured one when only a single temperature exists.
	method Method

	opts *Options
	log  *zap.Logger
}

// New constructs a nuclide from raw data, selecting which stored
// temperatures to load for the requested nominal temperatures (kelvin) and
// building all derived tables. index is the registry position the nuclide
// will occupy.
func New(raw *Raw, requested []float64, index int, opts *Options, log *zap.Logger) (*Nuclide, error) {
	n := &Nuclide{
		index:         index,
		name:          raw.Name,
		z:             raw.Z,
		a:             raw.A,
		metastable:    raw.Metastable,
		awr:           raw.AWR,
		totalNu:       raw.TotalNu,
		energyRelease: raw.EnergyRelease,
		multipole:     raw.Multipole,
		urrInelastic:  indexNone,
		opts:          opts,
		log:           log,
	}

	available := make([]float64, 0, len(raw.KTs))
	for t := range raw.KTs {
		available = append(available, float64(t))
	}
	sort.Float64s(available)

	n.method = effectiveMethod(raw.Name, len(available), opts, log)

	local := *opts
	local.Method = n.method
	selected, err := SelectTemperatures(raw.Name, available, requested, &local, log)
	if err != nil {
		return nil, &LoadError{Name: raw.Name, Wrapped: err}
	}

	for _, t := range selected {
		n.kTs = append(n.kTs, raw.KTs[t])
		n.grid = append(n.grid, EnergyGrid{Energy: raw.Energy[t]})
	}

	for _, rr := range raw.Reactions {
		rx := &Reaction{MT: rr.MT, Redundant: rr.Redundant, Products: rr.Products}
		for _, t := range selected {
			rx.XS = append(rx.XS, rr.XS[t])
		}
		n.reactions = append(n.reactions, rx)
	}
	// The evaluator addresses elastic scattering as reactions[0].
	sort.SliceStable(n.reactions, func(i, j int) bool {
		return n.reactions[i].MT < n.reactions[j].MT
	})

	for i, rx := range n.reactions {
		if IsInelasticScatter(rx.MT) && !rx.Redundant {
			n.indexInelasticScatter = append(n.indexInelasticScatter, i)
		}
	}

	if len(raw.Energy0K) > 0 {
		n.energy0K = append([]float64(nil), raw.Energy0K...)
		n.elastic0K = append([]float64(nil), raw.Elastic0K...)
	}

	if len(raw.URR) > 0 {
		n.urrPresent = true
		for _, t := range selected {
			u := raw.URR[t]
			if u != nil {
				if u.HasNegative() {
					log.Warn("negative values found on probability table",
						zap.String("nuclide", raw.Name), zap.Int("temperature", t))
				}
				u.Sanitize()
			}
			n.urr = append(n.urr, u)
		}
		if err := n.resolveURRInelastic(); err != nil {
			return nil, &LoadError{Name: raw.Name, Wrapped: err}
		}
	}

	if err := n.buildDerived(); err != nil {
		return nil, &LoadError{Name: raw.Name, Wrapped: err}
	}
	n.InitGrid()

	return n, nil
}

// resolveURRInelastic checks the inelastic competition flag for consistency
// across temperatures and resolves it to a reaction list index.
func (n *Nuclide) resolveURRInelastic() error {
	var first *URRTable
	for _, u := range n.urr {
		if u == nil {
			continue
		}
		if first == nil {
			first = u
			continue
		}
		if u.InelasticMT != first.InelasticMT {
			return ErrInconsistentURR
		}
	}
	if first == nil || first.InelasticMT == 0 {
		return nil
	}
	for i, rx := range n.reactions {
		if rx.MT == first.InelasticMT {
			n.urrInelastic = i
			return nil
		}
	}
	return ErrURRInelasticNotFound
}

// buildDerived composes the per-temperature total/absorption/fission/
// nu-fission/photon-production tables from the individual reaction channels,
// fills the direct-address MT lookup, counts delayed-neutron precursors, and
// prepares the 0 K elastic CDF for resonance scattering.
func (n *Nuclide) buildDerived() error {
	for t := range n.kTs {
		m := len(n.grid[t].Energy)
		n.xs = append(n.xs, composedXS{
			total:      make([]float64, m),
			absorption: make([]float64, m),
			fission:    make([]float64, m),
			nuFission:  make([]float64, m),
			photonProd: make([]float64, m),
		})
	}

	for mt := range n.reactionIndex {
		n.reactionIndex[mt] = indexNone
	}

	for i, rx := range n.reactions {
		if rx.MT < reactionIndexMax {
			n.reactionIndex[rx.MT] = int32(i)
		}

		for t := range n.kTs {
			j := rx.XS[t].Threshold
			vals := rx.XS[t].Value
			xs := &n.xs[t]

			for _, prod := range rx.Products {
				if prod.Particle != Photon {
					continue
				}
				for k, v := range vals {
					e := n.grid[t].Energy[k+j]

					// For fission, artificially increase the photon
					// yield to account for delayed photons.
					f := 1.0
					if n.opts.DelayedPhotonScaling && IsFission(rx.MT) &&
						n.energyRelease != nil &&
						n.energyRelease.PromptPhotons != nil &&
						n.energyRelease.DelayedPhotons != nil {
						prompt := n.energyRelease.PromptPhotons.At(e)
						delayed := n.energyRelease.DelayedPhotons.At(e)
						f = (prompt + delayed) / prompt
					}
					xs.photonProd[k+j] += f * v * prod.Yield.At(e)
				}
			}

			if rx.Redundant {
				continue
			}

			for k, v := range vals {
				xs.total[k+j] += v
			}
			if IsDisappearance(rx.MT) {
				for k, v := range vals {
					xs.absorption[k+j] += v
				}
			}
			if IsFission(rx.MT) {
				n.fissionable = true
				for k, v := range vals {
					xs.fission[k+j] += v
					xs.absorption[k+j] += v
				}
				if t == 0 {
					n.fissionRx = append(n.fissionRx, rx)
					if rx.MT == NF {
						n.hasPartialFission = true
					}
				}
			}
		}
	}

	if n.fissionable {
		for _, prod := range n.fissionRx[0].Products {
			if prod.Emission == EmissionDelayed {
				n.nPrecursor++
			}
		}
	}

	for t := range n.kTs {
		if !n.fissionable {
			break
		}
		for i, e := range n.grid[t].Energy {
			n.xs[t].nuFission[i] = n.Nu(e, EmissionTotal, 0) * n.xs[t].fission[i]
		}
	}

	if n.opts.ResScatOn {
		return n.initResonant()
	}
	return nil
}

// initResonant decides whether this nuclide is treated as a resonant
// scatterer and builds the 0 K elastic CDF. An explicitly configured
// resonant nuclide without 0 K data is a setup error.
func (n *Nuclide) initResonant() error {
	if len(n.opts.ResScatNuclides) > 0 {
		for _, name := range n.opts.ResScatNuclides {
			if name == n.name {
				n.resonant = true
				break
			}
		}
		if n.resonant && len(n.energy0K) == 0 {
			return ErrMissingZeroK
		}
	} else {
		// Any nuclide carrying 0 K elastic data is treated as resonant.
		n.resonant = len(n.energy0K) > 0
	}
	if !n.resonant {
		return nil
	}

	// Negative cross sections would make the CDF non-monotonic; clamp them.
	sum := 0.0
	n.xsCDF = make([]float64, len(n.energy0K))
	for i := 0; i+1 < len(n.energy0K); i++ {
		if n.elastic0K[i] < 0 {
			n.elastic0K[i] = 0
		}
		e0, e1 := n.energy0K[i], n.energy0K[i+1]
		sum += (math.Sqrt(e0)*n.elastic0K[i] + math.Sqrt(e1)*n.elastic0K[i+1]) / 2.0 * (e1 - e0)
		n.xsCDF[i+1] = sum
	}
	return nil
}

// InitGrid builds each temperature's logarithmic-union index table. The
// mesh is shared across all nuclides so a single coarse bin computed per
// particle energy serves every lookup.
func (n *Nuclide) InitGrid() {
	for t := range n.grid {
		n.grid[t].buildIndex(n.opts)
	}
}

// Nu returns the mean fission neutron yield at energy e for the given
// emission mode. group selects one delayed precursor group (1-based);
// zero sums all delayed groups.
func (n *Nuclide) Nu(e float64, mode EmissionMode, group int) float64 {
	if !n.fissionable {
		return 0.0
	}

	switch mode {
	case EmissionPrompt:
		return n.fissionRx[0].Products[0].Yield.At(e)

	case EmissionDelayed:
		if n.nPrecursor == 0 || !n.opts.CreateDelayedNeutrons {
			return 0.0
		}
		rx := n.fissionRx[0]
		if group >= 1 && group < len(rx.Products) {
			return rx.Products[group].Yield.At(e)
		}
		nu := 0.0
		for _, prod := range rx.Products[1:] {
			if prod.Particle != Neutron {
				continue
			}
			if prod.Emission == EmissionDelayed {
				nu += prod.Yield.At(e)
			}
		}
		return nu

	default: // EmissionTotal
		if n.totalNu != nil && n.opts.CreateDelayedNeutrons {
			return n.totalNu.At(e)
		}
		return n.fissionRx[0].Products[0].Yield.At(e)
	}
}

// Elastic0K evaluates the 0 K elastic cross section with a clamped bracket
// search on the 0 K grid.
func (n *Nuclide) Elastic0K(e float64) float64 {
	g := EnergyGrid{Energy: n.energy0K}
	i := g.Locate(e)
	f := g.InterpFactor(e, i)
	return (1.0-f)*n.elastic0K[i] + f*n.elastic0K[i+1]
}

// Accessors.

func (n *Nuclide) Index() int           { return n.index }
func (n *Nuclide) Name() string         { return n.name }
func (n *Nuclide) Z() int               { return n.z }
func (n *Nuclide) A() int               { return n.a }
func (n *Nuclide) Metastable() bool     { return n.metastable }
func (n *Nuclide) AWR() float64         { return n.awr }
func (n *Nuclide) Fissionable() bool    { return n.fissionable }
func (n *Nuclide) Resonant() bool       { return n.resonant }
func (n *Nuclide) NPrecursor() int      { return n.nPrecursor }
func (n *Nuclide) Method() Method       { return n.method }
func (n *Nuclide) KTs() []float64       { return n.kTs }
func (n *Nuclide) NReactions() int      { return len(n.reactions) }
func (n *Nuclide) URRPresent() bool     { return n.urrPresent }
func (n *Nuclide) HasMultipole() bool   { return n.multipole != nil }
func (n *Nuclide) Grid(t int) *EnergyGrid {
	return &n.grid[t]
}

// EnergyRelease exposes the fission energy-release functions; nil when the
// data source supplied none.
func (n *Nuclide) EnergyRelease() *FissionEnergyRelease { return n.energyRelease }

// InelasticScatter returns the reaction list indices of the non-redundant
// inelastic scattering channels, used by secondary-particle sampling to pick
// an exit channel once scattering is chosen.
func (n *Nuclide) InelasticScatter() []int { return n.indexInelasticScatter }

// ReactionByMT returns the reaction with the given MT, or nil.
func (n *Nuclide) ReactionByMT(mt int) *Reaction {
	if mt < 0 || mt >= reactionIndexMax {
		return nil
	}
	i := n.reactionIndex[mt]
	if i == indexNone {
		return nil
	}
	return n.reactions[i]
}
