// Package models defines the internal data structures shared by the
// pipeline stages: the columnar working view of the input table, the
// positional prediction records, and the NaN-as-missing helpers used
// throughout.
package models

import "math"

// Missing reports whether v represents a missing value.
func Missing(v float64) bool {
	return math.IsNaN(v)
}

// MissingValue returns the canonical missing marker.
func MissingValue() float64 {
	return math.NaN()
}

// Frame is the columnar working view of one pipeline invocation. Row
// identity is positional: index i in each column is input row i, so
// predictions can be written back without any join.
type Frame struct {
	// X, Y, Z are the full input columns in caller row order. Z may
	// contain missing (NaN) entries.
	X, Y, Z []float64

	// Anchors lists, in input order, the indices of rows whose response
	// is present. These are the only rows that participate in fitting.
	Anchors []int
}

// NewFrame builds a frame over the given columns, recording which rows
// carry a measured response.
func NewFrame(x, y, z []float64) *Frame {
	f := &Frame{X: x, Y: y, Z: z}
	for i, v := range z {
		if !Missing(v) {
			f.Anchors = append(f.Anchors, i)
		}
	}
	return f
}

// Len returns the input row count.
func (f *Frame) Len() int {
	return len(f.X)
}

// AnchorColumns gathers the coordinate and response columns restricted to
// the anchor rows, preserving input order.
func (f *Frame) AnchorColumns() (x, y, z []float64) {
	x = make([]float64, len(f.Anchors))
	y = make([]float64, len(f.Anchors))
	z = make([]float64, len(f.Anchors))
	for i, r := range f.Anchors {
		x[i] = f.X[r]
		y[i] = f.Y[r]
		z[i] = f.Z[r]
	}
	return x, y, z
}

// Prediction ties a back-transformed fitted value to its input row.
type Prediction struct {
	Row   int
	Value float64
}
