package nuclide

// CollapseRate computes the flux-weighted rate of one reaction, collapsed
// over the supplied energy groups, for depletion coupling. energy holds the
// group boundaries (ascending, one more entry than flux). A nuclide without
// the requested MT contributes a zero rate, not an error.
func (n *Nuclide) CollapseRate(mt int, temperature float64, energy, flux []float64) (float64, error) {
	if len(energy) != len(flux)+1 {
		return 0.0, ErrGroupBounds
	}

	rx := n.ReactionByMT(mt)
	if rx == nil {
		return 0.0, nil
	}

	iTemp, f := n.FindTemperature(temperature)

	low := rx.collapseRate(iTemp, energy, flux, n.grid[iTemp].Energy)
	if f <= 0.0 {
		// Exactly on a stored temperature; skip the second integration.
		return low, nil
	}

	high := rx.collapseRate(iTemp+1, energy, flux, n.grid[iTemp+1].Energy)
	return low + f*(high-low), nil
}
