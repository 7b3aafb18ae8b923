package surface

import (
	"math"
	"sort"
)

// scaler maps raw coordinates into the unit square spanned by the training
// data. Normalizing before building the radial basis keeps the penalized
// system well conditioned regardless of the original coordinate units.
type scaler struct {
	xMin, xRange float64
	yMin, yRange float64
}

func newScaler(x, y []float64) scaler {
	s := scaler{
		xMin: math.Inf(1), xRange: math.Inf(-1),
		yMin: math.Inf(1), yRange: math.Inf(-1),
	}
	for i := range x {
		s.xMin = math.Min(s.xMin, x[i])
		s.xRange = math.Max(s.xRange, x[i])
		s.yMin = math.Min(s.yMin, y[i])
		s.yRange = math.Max(s.yRange, y[i])
	}
	s.xRange -= s.xMin
	s.yRange -= s.yMin
	return s
}

// apply rescales one coordinate pair. A degenerate axis (zero span in the
// training data) collapses to 0 on that axis.
func (s scaler) apply(x, y float64) (float64, float64) {
	u, v := 0.0, 0.0
	if s.xRange > 0 {
		u = (x - s.xMin) / s.xRange
	}
	if s.yRange > 0 {
		v = (y - s.yMin) / s.yRange
	}
	return u, v
}

// knot is a radial basis center in normalized coordinates.
type knot struct {
	u, v float64
}

// eta is the thin-plate spline radial function r^2 * log(r), with the
// removable singularity at r = 0 taken as 0.
func eta(r float64) float64 {
	if r <= 0 {
		return 0
	}
	return r * r * math.Log(r)
}

// distinctPoints returns the deduplicated normalized training coordinates,
// sorted by (u, v) so knot placement is reproducible for a given input.
func distinctPoints(u, v []float64) []knot {
	seen := make(map[knot]struct{}, len(u))
	points := make([]knot, 0, len(u))
	for i := range u {
		p := knot{u[i], v[i]}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].u != points[j].u {
			return points[i].u < points[j].u
		}
		return points[i].v < points[j].v
	})
	return points
}

// selectKnots picks m knots from the distinct training points with a
// deterministic stride, spreading them over the support.
func selectKnots(points []knot, m int) []knot {
	if m >= len(points) {
		out := make([]knot, len(points))
		copy(out, points)
		return out
	}
	if m == 1 {
		return []knot{points[len(points)/2]}
	}
	out := make([]knot, m)
	for i := 0; i < m; i++ {
		// Evenly spaced indices over [0, len(points)-1].
		idx := (i * (len(points) - 1)) / (m - 1)
		out[i] = points[idx]
	}
	return out
}

// basisRow writes the design row for a normalized coordinate: the planar
// null space (1, u, v) followed by one radial column per knot.
func basisRow(dst []float64, u, v float64, knots []knot) {
	dst[0] = 1
	dst[1] = u
	dst[2] = v
	for j, q := range knots {
		du := u - q.u
		dv := v - q.v
		dst[3+j] = eta(math.Sqrt(du*du + dv*dv))
	}
}
