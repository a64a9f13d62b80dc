// Package particle holds the per-history state consumed by the cross-section
// engine: current energy, thermal speed, independently seeded random streams,
// and the per-nuclide micro cross-section cache. A Particle is owned by
// exactly one worker goroutine; nothing in this package is safe for
// concurrent use and nothing needs to be.
package particle

import "github.com/san-kum/nucsim/internal/rng"

// IndexNone marks an index field that does not apply to the current cache
// entry (e.g. no temperature/grid index after a multipole evaluation).
const IndexNone = -1

// MicroXS caches the microscopic cross sections of one nuclide at the
// particle's current (energy, temperature). It is recomputed whenever LastE
// or LastSqrtKT go stale.
type MicroXS struct {
	Total      float64
	Absorption float64
	Fission    float64
	NuFission  float64
	Elastic    float64
	PhotonProd float64

	// Depletion reaction cross sections, parallel to the configured
	// depletion MT list.
	Reaction []float64

	// Indices and interpolation factor from the tabulated lookup.
	// IndexNone on the multipole fast path.
	IndexTemp    int
	IndexGrid    int
	InterpFactor float64

	// Thermal scattering bookkeeping.
	SabActive    bool
	SabFrac      float64
	IndexTempSab int
	Thermal      float64
	ThermalElast float64

	// Probability-table bookkeeping.
	UsePtable bool

	// Validity stamp.
	LastE      float64
	LastSqrtKT float64

	// elasticValid reports whether Elastic holds a usable value; the
	// tabulated path fills it lazily.
	elasticValid bool
}

// ElasticValid reports whether the cached elastic cross section is usable.
func (m *MicroXS) ElasticValid() bool { return m.elasticValid }

// SetElastic stores an elastic cross section and marks it valid.
func (m *MicroXS) SetElastic(xs float64) {
	m.Elastic = xs
	m.elasticValid = true
}

// InvalidateElastic marks the elastic entry stale without clearing the value.
func (m *MicroXS) InvalidateElastic() { m.elasticValid = false }

// Particle is the transport-loop state visible to the cross-section engine.
type Particle struct {
	id     int64
	e      float64
	sqrtKT float64

	seeds  [rng.NStreams]uint64
	stream int

	micro []MicroXS
}

// New creates a particle history with per-stream seeds derived from id and
// the master seed, and a micro cache sized for nNuclides nuclides, each with
// room for nDepletionRx depletion reactions.
func New(id int64, master uint64, nNuclides, nDepletionRx int) *Particle {
	p := &Particle{
		id:    id,
		seeds: rng.InitSeeds(id, rng.Normalize(master)),
		micro: make([]MicroXS, nNuclides),
	}
	for i := range p.micro {
		p.micro[i].Reaction = make([]float64, nDepletionRx)
		p.micro[i].IndexTemp = IndexNone
		p.micro[i].IndexGrid = IndexNone
		p.micro[i].IndexTempSab = IndexNone
	}
	return p
}

func (p *Particle) ID() int64       { return p.id }
func (p *Particle) E() float64      { return p.e }
func (p *Particle) SqrtKT() float64 { return p.sqrtKT }

// SetE updates the particle energy. Cached micro cross sections become stale
// and are detected as such through their LastE stamp.
func (p *Particle) SetE(e float64) { p.e = e }

// SetSqrtKT updates the thermal speed parameter (square root of kT, eV).
func (p *Particle) SetSqrtKT(s float64) { p.sqrtKT = s }

// MicroXS returns the cache entry for the nuclide at registry index i.
func (p *Particle) MicroXS(i int) *MicroXS { return &p.micro[i] }

// CurrentSeed exposes the active stream's seed for in-place advancement.
func (p *Particle) CurrentSeed() *uint64 { return &p.seeds[p.stream] }

// Seeds exposes the seed of a specific sub-stream.
func (p *Particle) Seeds(stream int) *uint64 { return &p.seeds[stream] }

// Prn draws from the particle's active stream.
func (p *Particle) Prn() float64 { return rng.Prn(p.CurrentSeed()) }
