package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowerRoundTrip(t *testing.T) {
	values := []float64{0, 1e-9, 0.25, 1, 2, 42.5, 1e6}

	for _, forcePositive := range []bool{true, false} {
		p := NewPower(forcePositive)
		for _, v := range values {
			got := p.Inverse(p.Forward(v))
			assert.InDelta(t, v, got, 1e-9*math.Max(v, 1),
				"forcePositive=%v v=%v", forcePositive, v)
		}
	}
}

func TestPowerIdentityKeepsNegatives(t *testing.T) {
	p := NewPower(false)
	assert.Equal(t, -3.5, p.Forward(-3.5))
	assert.Equal(t, -3.5, p.Inverse(-3.5))
}

func TestPowerSqrtOfNegativeIsMissing(t *testing.T) {
	p := NewPower(true)
	assert.True(t, math.IsNaN(p.Forward(-1)))
}

func TestPowerMissingPassesThrough(t *testing.T) {
	for _, forcePositive := range []bool{true, false} {
		p := NewPower(forcePositive)
		assert.True(t, math.IsNaN(p.Forward(math.NaN())))
		assert.True(t, math.IsNaN(p.Inverse(math.NaN())))
	}
}

func TestPowerForwardAll(t *testing.T) {
	p := NewPower(true)
	in := []float64{4, math.NaN(), 9, 0}

	out := p.ForwardAll(in)
	require.Len(t, out, len(in))
	assert.Equal(t, 2.0, out[0])
	assert.True(t, math.IsNaN(out[1]))
	assert.Equal(t, 3.0, out[2])
	assert.Equal(t, 0.0, out[3])

	// The input column is never mutated.
	assert.Equal(t, 4.0, in[0])

	// Deterministic: a second application of the same transform to the
	// same column yields the same result.
	again := p.ForwardAll(in)
	assert.Equal(t, out[0], again[0])
	assert.Equal(t, out[2], again[2])
}

func TestPowerExponent(t *testing.T) {
	assert.Equal(t, 0.5, NewPower(true).Exponent())
	assert.Equal(t, 1.0, NewPower(false).Exponent())
}
