package nuclide

import "sort"

// Function1D is a one-dimensional function of incident energy, used for
// fission yields, total nu, and fission energy release components.
type Function1D interface {
	At(e float64) float64
}

// Polynomial evaluates a polynomial in energy with coefficients in
// increasing order.
type Polynomial []float64

func (p Polynomial) At(e float64) float64 {
	y := 0.0
	for i := len(p) - 1; i >= 0; i-- {
		y = y*e + p[i]
	}
	return y
}

// Tabulated1D is a linearly interpolated table, clamped outside its domain.
type Tabulated1D struct {
	X []float64
	Y []float64
}

func (t *Tabulated1D) At(e float64) float64 {
	n := len(t.X)
	if n == 0 {
		return 0.0
	}
	if e <= t.X[0] {
		return t.Y[0]
	}
	if e >= t.X[n-1] {
		return t.Y[n-1]
	}
	i := sort.SearchFloat64s(t.X, e)
	if t.X[i] == e {
		return t.Y[i]
	}
	i--
	f := (e - t.X[i]) / (t.X[i+1] - t.X[i])
	return (1.0-f)*t.Y[i] + f*t.Y[i+1]
}

// Constant is a fixed yield, convenient for synthetic data.
type Constant float64

func (c Constant) At(float64) float64 { return float64(c) }
