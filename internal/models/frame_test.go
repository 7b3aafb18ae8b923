package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFrameTracksAnchors(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{0, 1, 2, 3}
	z := []float64{1, math.NaN(), 3, math.NaN()}

	f := NewFrame(x, y, z)
	assert.Equal(t, 4, f.Len())
	assert.Equal(t, []int{0, 2}, f.Anchors)

	ax, ay, az := f.AnchorColumns()
	assert.Equal(t, []float64{0, 2}, ax)
	assert.Equal(t, []float64{0, 2}, ay)
	assert.Equal(t, []float64{1, 3}, az)
}

func TestMissing(t *testing.T) {
	assert.True(t, Missing(MissingValue()))
	assert.False(t, Missing(0))
	assert.False(t, Missing(math.Inf(1)))
}
