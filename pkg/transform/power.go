// Package transform implements the monotone power transform applied to the
// response before fitting. Fitting on the square root of the response and
// squaring the predictions afterwards keeps the back-transformed surface
// nonnegative without constraining the regression itself.
package transform

import "math"

// Power is a monotone power transform v -> v^p together with its inverse.
// The zero value is not useful; construct one with NewPower.
type Power struct {
	exponent float64
	inverse  float64
}

// NewPower returns the transform used by the pipeline: exponent 0.5 when
// forcePositive is set, identity otherwise.
func NewPower(forcePositive bool) Power {
	if forcePositive {
		return Power{exponent: 0.5, inverse: 2.0}
	}
	return Power{exponent: 1.0, inverse: 1.0}
}

// Exponent returns the forward exponent p.
func (p Power) Exponent() float64 {
	return p.exponent
}

// Forward maps a single response value into fitting space. NaN passes
// through unchanged. With exponent 0.5 a negative input yields NaN, which
// downstream code treats as a missing response.
func (p Power) Forward(v float64) float64 {
	if math.IsNaN(v) || p.exponent == 1.0 {
		return v
	}
	return math.Pow(v, p.exponent)
}

// Inverse maps a fitted value back to original units.
func (p Power) Inverse(v float64) float64 {
	if math.IsNaN(v) || p.inverse == 1.0 {
		return v
	}
	return math.Pow(v, p.inverse)
}

// ForwardAll applies Forward element-wise, returning a new column.
func (p Power) ForwardAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = p.Forward(v)
	}
	return out
}

// InverseAll applies Inverse element-wise, returning a new column.
func (p Power) InverseAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = p.Inverse(v)
	}
	return out
}
