// Package library reads nuclear data libraries from yaml files and serves
// them to the registry through the data-source contract. The format carries
// a version header; a major-version mismatch is a setup error, since a run
// on partially understood data is worse than no run.
package library

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/nucsim/internal/nuclide"
)

// FormatVersion is the major data format version this engine understands.
const FormatVersion = 1

// ErrVersionMismatch indicates a library file with an incompatible major
// format version.
var ErrVersionMismatch = errors.New("library: data format version mismatch")

// ErrNotInLibrary indicates a nuclide name the library does not carry.
var ErrNotInLibrary = errors.New("library: nuclide not present in library")

type fileFormat struct {
	Version  []int         `yaml:"version"`
	Nuclides []nuclideYAML `yaml:"nuclides"`
}

type nuclideYAML struct {
	Name       string  `yaml:"name"`
	Z          int     `yaml:"z"`
	A          int     `yaml:"a"`
	Metastable bool    `yaml:"metastable"`
	AWR        float64 `yaml:"awr"`

	Temperatures []temperatureYAML `yaml:"temperatures"`
	Reactions    []reactionYAML    `yaml:"reactions"`

	Energy0K  []float64 `yaml:"energy_0k"`
	Elastic0K []float64 `yaml:"elastic_0k"`

	URR []urrYAML `yaml:"urr"`

	TotalNu       *functionYAML      `yaml:"total_nu"`
	EnergyRelease *energyReleaseYAML `yaml:"fission_energy_release"`
}

type temperatureYAML struct {
	Kelvin int       `yaml:"kelvin"`
	KT     float64   `yaml:"kt"`
	Energy []float64 `yaml:"energy"`
}

type reactionYAML struct {
	MT        int           `yaml:"mt"`
	Redundant bool          `yaml:"redundant"`
	XS        []xsYAML      `yaml:"xs"`
	Products  []productYAML `yaml:"products"`
}

type xsYAML struct {
	Kelvin    int       `yaml:"kelvin"`
	Threshold int       `yaml:"threshold"`
	Value     []float64 `yaml:"value"`
}

type productYAML struct {
	Particle string       `yaml:"particle"` // "neutron" or "photon"
	Emission string       `yaml:"emission"` // "prompt", "delayed", "total"
	Yield    functionYAML `yaml:"yield"`
}

type urrYAML struct {
	Kelvin         int         `yaml:"kelvin"`
	Energy         []float64   `yaml:"energy"`
	CDF            [][]float64 `yaml:"cdf"`
	Elastic        [][]float64 `yaml:"elastic"`
	Fission        [][]float64 `yaml:"fission"`
	Capture        [][]float64 `yaml:"capture"`
	Interp         string      `yaml:"interp"` // "lin-lin" or "log-log"
	InelasticMT    int         `yaml:"inelastic_mt"`
	MultiplySmooth bool        `yaml:"multiply_smooth"`
}

type functionYAML struct {
	Type         string    `yaml:"type"` // "tabulated", "polynomial", "constant"
	X            []float64 `yaml:"x"`
	Y            []float64 `yaml:"y"`
	Coefficients []float64 `yaml:"coefficients"`
	Value        float64   `yaml:"value"`
}

type energyReleaseYAML struct {
	QPrompt        functionYAML `yaml:"q_prompt"`
	QRecoverable   functionYAML `yaml:"q_recoverable"`
	Fragments      functionYAML `yaml:"fragments"`
	Betas          functionYAML `yaml:"betas"`
	PromptPhotons  functionYAML `yaml:"prompt_photons"`
	DelayedPhotons functionYAML `yaml:"delayed_photons"`
}

// Library is an opened nuclear data library.
type Library struct {
	path     string
	nuclides map[string]*nuclideYAML
}

// Open reads and version-checks a library file.
func Open(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("library: parsing %s: %w", path, err)
	}
	if len(ff.Version) == 0 || ff.Version[0] != FormatVersion {
		return nil, fmt.Errorf("%w: file %s has version %v, engine expects %d.x",
			ErrVersionMismatch, path, ff.Version, FormatVersion)
	}

	lib := &Library{path: path, nuclides: make(map[string]*nuclideYAML)}
	for i := range ff.Nuclides {
		n := &ff.Nuclides[i]
		lib.nuclides[n.Name] = n
	}
	return lib, nil
}

// Names lists the nuclides the library carries.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.nuclides))
	for name := range l.nuclides {
		names = append(names, name)
	}
	return names
}

// Path returns the file the library was opened from.
func (l *Library) Path() string { return l.path }

// Nuclide implements nuclide.Source.
func (l *Library) Nuclide(name string) (*nuclide.Raw, error) {
	ny, ok := l.nuclides[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrNotInLibrary, name, l.path)
	}
	return ny.toRaw()
}

func (ny *nuclideYAML) toRaw() (*nuclide.Raw, error) {
	raw := &nuclide.Raw{
		Name:       ny.Name,
		Z:          ny.Z,
		A:          ny.A,
		Metastable: ny.Metastable,
		AWR:        ny.AWR,
		KTs:        make(map[int]float64),
		Energy:     make(map[int][]float64),
		Energy0K:   ny.Energy0K,
		Elastic0K:  ny.Elastic0K,
	}

	for _, t := range ny.Temperatures {
		raw.KTs[t.Kelvin] = t.KT
		raw.Energy[t.Kelvin] = t.Energy
	}

	for _, ry := range ny.Reactions {
		rr := nuclide.RawReaction{
			MT:        ry.MT,
			Redundant: ry.Redundant,
			XS:        make(map[int]nuclide.TabulatedXS),
		}
		for _, x := range ry.XS {
			grid, ok := raw.Energy[x.Kelvin]
			if !ok {
				return nil, fmt.Errorf("library: %s MT=%d has xs at unknown temperature %d K",
					ny.Name, ry.MT, x.Kelvin)
			}
			if x.Threshold+len(x.Value) > len(grid) {
				return nil, fmt.Errorf("library: %s MT=%d xs exceeds grid at %d K",
					ny.Name, ry.MT, x.Kelvin)
			}
			rr.XS[x.Kelvin] = nuclide.TabulatedXS{Threshold: x.Threshold, Value: x.Value}
		}
		for _, py := range ry.Products {
			prod, err := py.toProduct(ny.Name, ry.MT)
			if err != nil {
				return nil, err
			}
			rr.Products = append(rr.Products, prod)
		}
		raw.Reactions = append(raw.Reactions, rr)
	}

	if len(ny.URR) > 0 {
		raw.URR = make(map[int]*nuclide.URRTable)
		for _, uy := range ny.URR {
			u, err := uy.toTable(ny.Name)
			if err != nil {
				return nil, err
			}
			raw.URR[uy.Kelvin] = u
		}
	}

	if ny.TotalNu != nil {
		fn, err := ny.TotalNu.toFunction()
		if err != nil {
			return nil, fmt.Errorf("library: %s total_nu: %w", ny.Name, err)
		}
		raw.TotalNu = fn
	}

	if ny.EnergyRelease != nil {
		fer, err := ny.EnergyRelease.toRelease()
		if err != nil {
			return nil, fmt.Errorf("library: %s fission_energy_release: %w", ny.Name, err)
		}
		raw.EnergyRelease = fer
	}

	return raw, nil
}

func (py *productYAML) toProduct(name string, mt int) (nuclide.Product, error) {
	var prod nuclide.Product
	switch py.Particle {
	case "", "neutron":
		prod.Particle = nuclide.Neutron
	case "photon":
		prod.Particle = nuclide.Photon
	default:
		return prod, fmt.Errorf("library: %s MT=%d unknown particle %q", name, mt, py.Particle)
	}
	switch py.Emission {
	case "", "prompt":
		prod.Emission = nuclide.EmissionPrompt
	case "delayed":
		prod.Emission = nuclide.EmissionDelayed
	case "total":
		prod.Emission = nuclide.EmissionTotal
	default:
		return prod, fmt.Errorf("library: %s MT=%d unknown emission %q", name, mt, py.Emission)
	}
	fn, err := py.Yield.toFunction()
	if err != nil {
		return prod, fmt.Errorf("library: %s MT=%d yield: %w", name, mt, err)
	}
	prod.Yield = fn
	return prod, nil
}

func (uy *urrYAML) toTable(name string) (*nuclide.URRTable, error) {
	u := &nuclide.URRTable{
		Energy:         uy.Energy,
		CDF:            uy.CDF,
		InelasticMT:    uy.InelasticMT,
		MultiplySmooth: uy.MultiplySmooth,
	}
	switch uy.Interp {
	case "", "lin-lin":
		u.Interp = nuclide.LinLin
	case "log-log":
		u.Interp = nuclide.LogLog
	default:
		return nil, fmt.Errorf("library: %s urr: unknown interpolation %q", name, uy.Interp)
	}
	if len(uy.CDF) != len(uy.Energy) || len(uy.Elastic) != len(uy.Energy) ||
		len(uy.Fission) != len(uy.Energy) || len(uy.Capture) != len(uy.Energy) {
		return nil, fmt.Errorf("library: %s urr: table rows do not match energy breakpoints", name)
	}
	u.XS = make([][]nuclide.URRXS, len(uy.Energy))
	for i := range uy.Energy {
		nb := len(uy.CDF[i])
		if len(uy.Elastic[i]) != nb || len(uy.Fission[i]) != nb || len(uy.Capture[i]) != nb {
			return nil, fmt.Errorf("library: %s urr: band count mismatch at row %d", name, i)
		}
		u.XS[i] = make([]nuclide.URRXS, nb)
		for b := 0; b < nb; b++ {
			u.XS[i][b] = nuclide.URRXS{
				Elastic: uy.Elastic[i][b],
				Fission: uy.Fission[i][b],
				NGamma:  uy.Capture[i][b],
			}
		}
	}
	return u, nil
}

func (fy *functionYAML) toFunction() (nuclide.Function1D, error) {
	switch fy.Type {
	case "tabulated":
		if len(fy.X) != len(fy.Y) || len(fy.X) == 0 {
			return nil, errors.New("tabulated function needs matching non-empty x and y")
		}
		return &nuclide.Tabulated1D{X: fy.X, Y: fy.Y}, nil
	case "polynomial":
		if len(fy.Coefficients) == 0 {
			return nil, errors.New("polynomial function needs coefficients")
		}
		return nuclide.Polynomial(fy.Coefficients), nil
	case "", "constant":
		return nuclide.Constant(fy.Value), nil
	default:
		return nil, fmt.Errorf("unknown function type %q", fy.Type)
	}
}

func (ey *energyReleaseYAML) toRelease() (*nuclide.FissionEnergyRelease, error) {
	fer := &nuclide.FissionEnergyRelease{}
	for _, item := range []struct {
		fn  *functionYAML
		dst *nuclide.Function1D
	}{
		{&ey.QPrompt, &fer.QPrompt},
		{&ey.QRecoverable, &fer.QRecoverable},
		{&ey.Fragments, &fer.Fragments},
		{&ey.Betas, &fer.Betas},
		{&ey.PromptPhotons, &fer.PromptPhotons},
		{&ey.DelayedPhotons, &fer.DelayedPhotons},
	} {
		fn, err := item.fn.toFunction()
		if err != nil {
			return nil, err
		}
		*item.dst = fn
	}
	return fer, nil
}
