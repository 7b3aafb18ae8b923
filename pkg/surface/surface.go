// Package surface fits a smooth penalized regression surface to scattered
// bivariate observations. The model is a low-rank thin-plate regression
// spline: a planar term plus radial basis functions centered on knots
// chosen from the data, with a ridge penalty on the spline coefficients
// whose strength is selected by a restricted-likelihood criterion.
package surface

// Surface is a fitted response surface. It is an immutable closure over the
// training normalization, the knot set and the penalized coefficients;
// evaluating it never mutates state.
type Surface struct {
	scale  scaler
	knots  []knot
	beta   []float64
	lambda float64
	edf    float64
}

// Eval returns the fitted (transformed-scale) response at (x, y). Raw
// coordinates are accepted; the surface applies its training normalization.
func (s *Surface) Eval(x, y float64) float64 {
	u, v := s.scale.apply(x, y)
	row := make([]float64, len(s.beta))
	basisRow(row, u, v, s.knots)
	sum := 0.0
	for i, b := range s.beta {
		sum += b * row[i]
	}
	return sum
}

// Lambda returns the smoothing-penalty weight selected during fitting.
func (s *Surface) Lambda() float64 {
	return s.lambda
}

// EDF returns the effective degrees of freedom of the fitted surface.
func (s *Surface) EDF() float64 {
	return s.edf
}

// Dim returns the basis dimension (planar null space plus knots).
func (s *Surface) Dim() int {
	return len(s.beta)
}
