// Package support decides whether predicted coordinates are close enough to
// genuinely measured ones to be trusted. Both the predicted points and the
// anchor set (the measured coordinates) are rescaled into the unit square
// spanned by the predicted points; a prediction whose nearest anchor in
// that space is farther than the threshold is judged out of support. This
// is a nearest-neighbor test, not a convex-hull test: points between sparse
// anchor clusters can be rejected even inside the anchor bounding box.
package support

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// bruteForceLimit is the anchor count below which a linear scan beats the
// kd-tree; small sets skip the index entirely.
const bruteForceLimit = 32

// Point2D is a rescaled coordinate stored in the spatial index.
type Point2D struct {
	X, Y float64
}

// Compare implements kdtree.Comparable.
func (p Point2D) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(Point2D)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions for the kd-tree.
func (p Point2D) Dims() int { return 2 }

// Distance returns the squared Euclidean distance between two points.
func (p Point2D) Distance(c kdtree.Comparable) float64 {
	q := c.(Point2D)
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

// Points2D is a collection of Point2D that satisfies kdtree.Interface.
type Points2D []Point2D

func (p Points2D) Index(i int) kdtree.Comparable         { return p[i] }
func (p Points2D) Len() int                              { return len(p) }
func (p Points2D) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements the kdtree.Interface method.
func (p Points2D) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(pointPlane{Points2D: p, Dim: d}, kdtree.MedianOfRandoms(pointPlane{Points2D: p, Dim: d}, 100))
}

// pointPlane implements sort.Interface and kdtree.SortSlicer for Points2D.
type pointPlane struct {
	Points2D
	kdtree.Dim
}

func (p pointPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.Points2D[i].X < p.Points2D[j].X
	case 1:
		return p.Points2D[i].Y < p.Points2D[j].Y
	default:
		panic("illegal dimension")
	}
}

func (p pointPlane) Slice(start, end int) kdtree.SortSlicer {
	return pointPlane{Points2D: p.Points2D[start:end], Dim: p.Dim}
}

func (p pointPlane) Swap(i, j int) {
	p.Points2D[i], p.Points2D[j] = p.Points2D[j], p.Points2D[i]
}

// ErrEmptyAnchorSet is returned when the support test is given no anchors.
var ErrEmptyAnchorSet = errors.New("support: empty anchor set")

// Report is the outcome of one support test over a batch of predictions.
type Report struct {
	// Excluded is aligned one-to-one with the prediction coordinates:
	// true means the prediction is out of support and must be discarded.
	Excluded []bool

	// DegenerateAxes lists the axes ("x", "y") whose prediction
	// coordinates spanned zero range. Such an axis collapses: every
	// rescaled value is 0, so it contributes nothing to any distance.
	DegenerateAxes []string
}

// axisScale is the affine map of one axis onto [0, 1].
type axisScale struct {
	min, span float64
}

func newAxisScale(values []float64) axisScale {
	s := axisScale{min: math.Inf(1), span: math.Inf(-1)}
	for _, v := range values {
		s.min = math.Min(s.min, v)
		s.span = math.Max(s.span, v)
	}
	s.span -= s.min
	return s
}

func (s axisScale) apply(v float64) float64 {
	if s.span <= 0 {
		return 0
	}
	return (v - s.min) / s.span
}

// ExcludeTooFar reports, per predicted coordinate, whether it lies strictly
// farther than dist from every anchor after both point sets are rescaled by
// the per-axis range of the predicted coordinates. A prediction coincident
// with an anchor is always in support, even at dist 0.
//
// Degenerate axis ranges are not an error; they are collapsed as described
// on Report.DegenerateAxes so callers can log the condition.
func ExcludeTooFar(predX, predY, anchorX, anchorY []float64, dist float64) (*Report, error) {
	if len(anchorX) == 0 {
		return nil, ErrEmptyAnchorSet
	}
	if len(anchorX) != len(anchorY) {
		return nil, fmt.Errorf("support: anchor column lengths differ: %d vs %d", len(anchorX), len(anchorY))
	}
	if len(predX) != len(predY) {
		return nil, fmt.Errorf("support: prediction column lengths differ: %d vs %d", len(predX), len(predY))
	}

	xs := newAxisScale(predX)
	ys := newAxisScale(predY)

	report := &Report{Excluded: make([]bool, len(predX))}
	if xs.span <= 0 {
		report.DegenerateAxes = append(report.DegenerateAxes, "x")
	}
	if ys.span <= 0 {
		report.DegenerateAxes = append(report.DegenerateAxes, "y")
	}

	anchors := make(Points2D, len(anchorX))
	for i := range anchorX {
		anchors[i] = Point2D{X: xs.apply(anchorX[i]), Y: ys.apply(anchorY[i])}
	}

	var tree *kdtree.Tree
	if len(anchors) >= bruteForceLimit {
		tree = kdtree.New(anchors, true)
	}

	for i := range predX {
		q := Point2D{X: xs.apply(predX[i]), Y: ys.apply(predY[i])}
		report.Excluded[i] = nearestDistance(q, anchors, tree) > dist
	}
	return report, nil
}

// nearestDistance returns the rescaled-space Euclidean distance from q to
// its closest anchor.
func nearestDistance(q Point2D, anchors Points2D, tree *kdtree.Tree) float64 {
	if tree != nil {
		_, d2 := tree.Nearest(q)
		return math.Sqrt(d2)
	}
	best := math.Inf(1)
	for _, a := range anchors {
		if d2 := q.Distance(a); d2 < best {
			best = d2
		}
	}
	return math.Sqrt(best)
}
