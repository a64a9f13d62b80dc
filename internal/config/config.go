// Package config loads and validates run settings for the cross-section
// engine.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/nucsim/internal/nuclide"
)

const (
	DefaultTolerance = 10.0 // K
	DefaultLogBins   = 8000
	DefaultEnergyMin = 1e-5 // eV
	DefaultEnergyMax = 2e7  // eV
)

type Settings struct {
	// Temperature selection: "nearest" or "interpolation".
	TemperatureMethod    string     `yaml:"temperature_method"`
	TemperatureTolerance float64    `yaml:"temperature_tolerance"`
	TemperatureRange     [2]float64 `yaml:"temperature_range"`

	CreateDelayedNeutrons bool `yaml:"create_delayed_neutrons"`
	DelayedPhotonScaling  bool `yaml:"delayed_photon_scaling"`
	URRPTables            bool `yaml:"urr_ptables"`

	ResScatOn       bool     `yaml:"resonance_scattering"`
	ResScatNuclides []string `yaml:"resonance_scattering_nuclides"`

	NeedDepletionRx bool  `yaml:"depletion_reactions"`
	DepletionMTs    []int `yaml:"depletion_mts"`

	LogBins   int     `yaml:"log_bins"`
	EnergyMin float64 `yaml:"energy_min"`
	EnergyMax float64 `yaml:"energy_max"`

	Seed int64 `yaml:"seed"`
}

func DefaultSettings() *Settings {
	return &Settings{
		TemperatureMethod:     "nearest",
		TemperatureTolerance:  DefaultTolerance,
		CreateDelayedNeutrons: true,
		DelayedPhotonScaling:  true,
		URRPTables:            true,
		LogBins:               DefaultLogBins,
		EnergyMin:             DefaultEnergyMin,
		EnergyMax:             DefaultEnergyMax,
		Seed:                  1,
	}
}

func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultSettings()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Settings) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Options converts the settings into the engine's option block.
func (s *Settings) Options() (*nuclide.Options, error) {
	opts := nuclide.DefaultOptions()

	switch s.TemperatureMethod {
	case "", "nearest":
		opts.Method = nuclide.MethodNearest
	case "interpolation":
		opts.Method = nuclide.MethodInterpolation
	default:
		return nil, fmt.Errorf("config: unknown temperature method %q", s.TemperatureMethod)
	}

	if s.TemperatureTolerance > 0 {
		opts.Tolerance = s.TemperatureTolerance
	}
	opts.TemperatureRange = s.TemperatureRange
	opts.CreateDelayedNeutrons = s.CreateDelayedNeutrons
	opts.DelayedPhotonScaling = s.DelayedPhotonScaling
	opts.URRPTables = s.URRPTables
	opts.ResScatOn = s.ResScatOn
	opts.ResScatNuclides = s.ResScatNuclides
	opts.NeedDepletionRx = s.NeedDepletionRx
	if len(s.DepletionMTs) > 0 {
		opts.DepletionRx = s.DepletionMTs
	}
	if s.LogBins > 0 {
		opts.NLogBins = s.LogBins
	}
	if s.EnergyMin > 0 {
		opts.EnergyMin = s.EnergyMin
	}
	if s.EnergyMax > 0 {
		opts.EnergyMax = s.EnergyMax
	}
	if opts.EnergyMax <= opts.EnergyMin {
		return nil, fmt.Errorf("config: energy_max %g must exceed energy_min %g",
			opts.EnergyMax, opts.EnergyMin)
	}
	return opts, nil
}
