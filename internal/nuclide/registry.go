package nuclide

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Source is the data-source contract from the excluded file-format loader:
// it produces the raw record for a nuclide by name.
type Source interface {
	Nuclide(name string) (*Raw, error)
}

// Registry owns all loaded nuclides for a run: an append-only arena of
// records plus a name-to-index map. It is populated during the
// single-threaded setup phase and read-only during transport, so evaluation
// requires no locking. Clear resets it between independent runs in the same
// process.
type Registry struct {
	opts *Options
	log  *zap.Logger

	nuclides []*Nuclide
	names    map[string]int

	tempMin float64
	tempMax float64
}

// NewRegistry creates an empty registry bound to the run configuration.
func NewRegistry(opts *Options, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		opts:    opts,
		log:     log,
		names:   make(map[string]int),
		tempMin: math.Inf(1),
		tempMax: 0.0,
	}
}

// Load fetches a nuclide from the data source unless it is already present,
// selecting stored temperatures for the requested nominal temperatures
// (kelvin). It returns the registry index either way. Loading happens at
// most once per distinct name per run.
func (r *Registry) Load(src Source, name string, temperatures []float64) (int, error) {
	if i, ok := r.names[name]; ok {
		return i, nil
	}

	raw, err := src.Nuclide(name)
	if err != nil {
		return 0, &LoadError{Name: name, Wrapped: err}
	}

	n, err := New(raw, temperatures, len(r.nuclides), r.opts, r.log)
	if err != nil {
		return 0, err
	}

	r.nuclides = append(r.nuclides, n)
	r.names[name] = n.index

	kTs := n.KTs()
	r.tempMin = math.Min(r.tempMin, kTs[0]/KBoltzmann)
	r.tempMax = math.Max(r.tempMax, kTs[len(kTs)-1]/KBoltzmann)

	r.log.Info("loaded nuclide",
		zap.String("name", name),
		zap.Int("temperatures", len(kTs)),
		zap.Bool("fissionable", n.Fissionable()))

	return n.index, nil
}

// Index returns the registry index for a nuclide name.
func (r *Registry) Index(name string) (int, error) {
	i, ok := r.names[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNuclide, name)
	}
	return i, nil
}

// Name returns the nuclide name at a registry index.
func (r *Registry) Name(i int) (string, error) {
	if i < 0 || i >= len(r.nuclides) {
		return "", fmt.Errorf("%w: %d", ErrIndexOutOfBounds, i)
	}
	return r.nuclides[i].name, nil
}

// Get returns the nuclide at a registry index.
func (r *Registry) Get(i int) (*Nuclide, error) {
	if i < 0 || i >= len(r.nuclides) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfBounds, i)
	}
	return r.nuclides[i], nil
}

// Len reports the number of loaded nuclides.
func (r *Registry) Len() int { return len(r.nuclides) }

// Options exposes the run configuration the registry was built with.
func (r *Registry) Options() *Options { return r.opts }

// CollapseRate invokes the group collapse on the nuclide at index i.
func (r *Registry) CollapseRate(i, mt int, temperature float64, energy, flux []float64) (float64, error) {
	n, err := r.Get(i)
	if err != nil {
		return 0.0, err
	}
	return n.CollapseRate(mt, temperature, energy, flux)
}

// TemperatureBounds returns the lowest and highest loaded temperatures (K)
// across all nuclides.
func (r *Registry) TemperatureBounds() (min, max float64) {
	return r.tempMin, r.tempMax
}

// Clear empties the registry between independent runs.
func (r *Registry) Clear() {
	r.nuclides = r.nuclides[:0]
	r.names = make(map[string]int)
	r.tempMin = math.Inf(1)
	r.tempMax = 0.0
}
