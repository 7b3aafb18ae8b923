package surface

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridData builds a 4x5 regular grid over the unit square with response
// z = x + y plus a tiny deterministic perturbation.
func gridData() (x, y, z []float64) {
	for i := 0; i < 4; i++ {
		for j := 0; j < 5; j++ {
			xi := float64(i) / 3
			yj := float64(j) / 4
			x = append(x, xi)
			y = append(y, yj)
			z = append(z, xi+yj+1e-3*math.Sin(float64(7*(i*5+j))))
		}
	}
	return x, y, z
}

func TestFitRecoversPlane(t *testing.T) {
	x, y, z := gridData()

	surf, err := Fit(x, y, z, nil, 10)
	require.NoError(t, err)

	mae := 0.0
	for i := range x {
		mae += math.Abs(surf.Eval(x[i], y[i]) - z[i])
	}
	mae /= float64(len(x))
	assert.Less(t, mae, 0.05, "in-sample mean absolute error")
}

func TestFitEmptyTrainingSet(t *testing.T) {
	_, err := Fit(nil, nil, nil, nil, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyTrainingSet)
}

func TestFitWeightMismatch(t *testing.T) {
	x, y, z := gridData()

	_, err := Fit(x, y, z, []float64{1, 1, 1}, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWeightMismatch)
}

func TestFitRankDeficiency(t *testing.T) {
	x := []float64{0, 0.25, 0.5, 0.75, 1}
	y := []float64{0, 1, 0, 1, 0.5}
	z := []float64{1, 2, 3, 4, 5}

	_, err := Fit(x, y, z, nil, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRankDeficiency)
}

func TestFitRankDeficiencyCountsDistinctCoordinates(t *testing.T) {
	// Twelve rows but only three distinct coordinate pairs: duplicated
	// coordinates add no rank.
	var x, y, z []float64
	for i := 0; i < 12; i++ {
		x = append(x, float64(i%3))
		y = append(y, float64(i%3))
		z = append(z, float64(i))
	}

	_, err := Fit(x, y, z, nil, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRankDeficiency)
}

func TestFitEDFWithinCapacity(t *testing.T) {
	x, y, z := gridData()

	surf, err := Fit(x, y, z, nil, 10)
	require.NoError(t, err)

	assert.Equal(t, 10, surf.Dim())
	assert.Greater(t, surf.EDF(), 0.0)
	assert.LessOrEqual(t, surf.EDF(), 10.0+1e-6)
	assert.Greater(t, surf.Lambda(), 0.0)
}

func TestFitUniformWeightsMatchUnweighted(t *testing.T) {
	x, y, z := gridData()

	w := make([]float64, len(z))
	for i := range w {
		w[i] = 2
	}

	unweighted, err := Fit(x, y, z, nil, 10)
	require.NoError(t, err)
	weighted, err := Fit(x, y, z, w, 10)
	require.NoError(t, err)

	// The plane is in the unpenalized null space, so both fits reproduce
	// it regardless of the smoothing weight each one selects.
	for i := range x {
		assert.InDelta(t, unweighted.Eval(x[i], y[i]), weighted.Eval(x[i], y[i]), 1e-2)
	}
}

func TestFitPlanarOnly(t *testing.T) {
	// k=3 leaves no room for spline terms: the fit is an exact plane.
	x := []float64{0, 1, 0, 1}
	y := []float64{0, 0, 1, 1}
	z := []float64{1, 2, 3, 4}

	surf, err := Fit(x, y, z, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, surf.Dim())

	for i := range x {
		assert.InDelta(t, z[i], surf.Eval(x[i], y[i]), 1e-4)
	}
}

func TestFitConstantResponse(t *testing.T) {
	x, y, _ := gridData()
	z := make([]float64, len(x))
	for i := range z {
		z[i] = 7.5
	}

	surf, err := Fit(x, y, z, nil, 8)
	require.NoError(t, err)

	assert.InDelta(t, 7.5, surf.Eval(0.5, 0.5), 1e-3)
	assert.InDelta(t, 7.5, surf.Eval(0.1, 0.9), 1e-3)
}

func TestEvalIsPure(t *testing.T) {
	x, y, z := gridData()

	surf, err := Fit(x, y, z, nil, 10)
	require.NoError(t, err)

	first := surf.Eval(0.3, 0.7)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, surf.Eval(0.3, 0.7))
	}
}
