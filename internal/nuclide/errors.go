package nuclide

import (
	"errors"
	"fmt"
)

// Domain errors for nuclide data and registry operations.
var (
	// ErrUnknownNuclide indicates a registry lookup by a name that was
	// never loaded.
	ErrUnknownNuclide = errors.New("nuclide: unknown nuclide name")

	// ErrIndexOutOfBounds indicates a registry index outside the loaded set.
	ErrIndexOutOfBounds = errors.New("nuclide: registry index out of bounds")

	// ErrNoTemperatureMatch indicates that under the nearest method no
	// stored temperature lies within the configured tolerance.
	ErrNoTemperatureMatch = errors.New("nuclide: no stored temperature within tolerance")

	// ErrNoBracketingPair indicates that under the interpolation method a
	// requested temperature has no bracketing pair and is not within
	// tolerance of either extreme.
	ErrNoBracketingPair = errors.New("nuclide: no bracketing temperature pair")

	// ErrInconsistentURR indicates probability tables whose inelastic
	// competition flag differs between temperatures of the same nuclide.
	ErrInconsistentURR = errors.New("nuclide: inconsistent URR inelastic flag across temperatures")

	// ErrURRInelasticNotFound indicates a probability table naming an
	// inelastic competition reaction the nuclide does not carry.
	ErrURRInelasticNotFound = errors.New("nuclide: URR inelastic competition reaction not found")

	// ErrGroupBounds indicates group boundaries and flux of incompatible
	// lengths passed to a rate collapse.
	ErrGroupBounds = errors.New("nuclide: energy group bounds must have one more entry than flux")

	// ErrMissingZeroK indicates a nuclide configured as a resonant
	// scatterer without 0 K elastic data.
	ErrMissingZeroK = errors.New("nuclide: resonant scatterer has no 0 K elastic data")
)

// LoadError wraps a setup-time failure with the nuclide it concerns.
type LoadError struct {
	Name    string
	Wrapped error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Name, e.Wrapped)
}

func (e *LoadError) Unwrap() error {
	return e.Wrapped
}
