package nuclide

// Multipole is the evaluation contract of a windowed-multipole resonance
// representation. Construction of the pole/window data happens outside this
// package; the engine only needs closed-form evaluation inside a validity
// range. Dispatch onto the fast path is a range check, not virtual dispatch
// buried in the data model.
type Multipole interface {
	// EnergyRange returns the inclusive [min, max] energy domain (eV) in
	// which Evaluate may be called.
	EnergyRange() (emin, emax float64)

	// Evaluate returns the elastic scattering, absorption, and fission
	// cross sections at energy e (eV) and thermal speed sqrtKT (sqrt eV).
	Evaluate(e, sqrtKT float64) (elastic, absorption, fission float64)
}

// multipoleInRange reports whether the nuclide has multipole data covering e.
func (n *Nuclide) multipoleInRange(e float64) bool {
	if n.multipole == nil {
		return false
	}
	emin, emax := n.multipole.EnergyRange()
	return e >= emin && e <= emax
}
