// Package pipeline fits a smooth response surface to scattered bivariate
// observations and, optionally, extends it to coordinates without a
// measured response, masking extrapolated predictions that are too far
// from any real observation to be trustworthy.
//
// One call runs five sequential stages: a monotone power transform of the
// response, a penalized surface fit, surface evaluation with the inverse
// transform, an out-of-support mask, and positional reassembly onto the
// input rows.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gamsurface/internal/models"
	"gamsurface/pkg/support"
	"gamsurface/pkg/surface"
	"gamsurface/pkg/transform"
)

// Observation is a single input record: a response Z observed at the
// bivariate coordinate (X, Y). A missing response is NaN.
type Observation struct {
	// X is the first coordinate (e.g. the u wind component).
	X float64

	// Y is the second coordinate (e.g. the v wind component).
	Y float64

	// Z is the response (e.g. a pollutant concentration). NaN means the
	// response was not measured at this coordinate.
	Z float64
}

// Options configures one pipeline invocation. Start from DefaultOptions and
// override fields; a zero K is replaced by the default, all other fields
// are taken as given.
type Options struct {
	// K bounds the effective flexibility of the fitted surface: the total
	// basis dimension, including the planar term. Higher K permits more
	// local curvature at the risk of overfitting.
	K int

	// Extrapolate evaluates the fitted surface at every input coordinate,
	// including rows whose response is missing. When false only the rows
	// with a measured response are predicted, and no masking applies.
	Extrapolate bool

	// ForcePositive fits on the square root of the response so that the
	// back-transformed predictions cannot be negative.
	ForcePositive bool

	// Dist is the masking threshold: a predicted point whose nearest
	// measured coordinate, in range-normalized space, is strictly farther
	// than Dist has its prediction set missing.
	Dist float64

	// Weights holds optional per-observation fitting weights, aligned
	// one-to-one with the rows whose response is present. Nil means a
	// uniform fit.
	Weights []float64

	// Logger receives stage-level diagnostics. Nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions returns the standard configuration: k=100, no
// extrapolation, positivity enforced, masking distance 0.05.
func DefaultOptions() Options {
	return Options{
		K:             100,
		Extrapolate:   false,
		ForcePositive: true,
		Dist:          0.05,
	}
}

// ErrJoinMismatch reports that the positional prediction bookkeeping
// disagreed with the input rows. It indicates a bug in the pipeline, not a
// user error.
var ErrJoinMismatch = errors.New("pipeline: prediction rows do not match input table")

// FitGAMSurface runs the full pipeline over the input table and returns a
// new table with the same row count and order. Rows that were predicted
// carry the fitted (back-transformed) response; rows that were masked or
// never predicted carry a missing response. The input is not mutated.
//
// The call is synchronous; only the fitter's smoothing-parameter search
// runs on internal worker goroutines, torn down before the call returns.
func FitGAMSurface(obs []Observation, opts Options) ([]Observation, error) {
	if opts.K == 0 {
		opts.K = DefaultOptions().K
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	x := make([]float64, len(obs))
	y := make([]float64, len(obs))
	z := make([]float64, len(obs))
	for i, o := range obs {
		x[i], y[i], z[i] = o.X, o.Y, o.Z
	}

	// Transform the response before anything else. A sqrt transform maps
	// negative responses to NaN, so the frame is built on the transformed
	// column: such rows drop out of the training set.
	power := transform.NewPower(opts.ForcePositive)
	frame := models.NewFrame(x, y, power.ForwardAll(z))

	ax, ay, az := frame.AnchorColumns()
	surf, err := surface.Fit(ax, ay, az, opts.Weights, opts.K)
	if err != nil {
		return nil, fmt.Errorf("fit surface: %w", err)
	}
	logger.Debug("surface fitted",
		"rows", len(az),
		"k", opts.K,
		"lambda", surf.Lambda(),
		"edf", surf.EDF(),
	)

	preds := predict(surf, frame, power, opts.Extrapolate)

	if opts.Extrapolate {
		if err := applyMask(preds, frame, ax, ay, opts.Dist, logger); err != nil {
			return nil, err
		}
	}

	return assemble(obs, preds)
}

// predict evaluates the fitted surface at the requested rows and applies
// the inverse transform, recovering original units. With extrapolate set
// every input row is evaluated; otherwise only the anchor rows are.
func predict(surf *surface.Surface, frame *models.Frame, power transform.Power, extrapolate bool) []models.Prediction {
	rows := frame.Anchors
	if extrapolate {
		rows = make([]int, frame.Len())
		for i := range rows {
			rows[i] = i
		}
	}

	preds := make([]models.Prediction, len(rows))
	for i, r := range rows {
		preds[i] = models.Prediction{
			Row:   r,
			Value: power.Inverse(surf.Eval(frame.X[r], frame.Y[r])),
		}
	}
	return preds
}

// applyMask clears predictions that lie too far from every anchor. It only
// ever turns a prediction missing, never fabricates one.
func applyMask(preds []models.Prediction, frame *models.Frame, anchorX, anchorY []float64, dist float64, logger *slog.Logger) error {
	predX := make([]float64, len(preds))
	predY := make([]float64, len(preds))
	for i, p := range preds {
		predX[i] = frame.X[p.Row]
		predY[i] = frame.Y[p.Row]
	}

	report, err := support.ExcludeTooFar(predX, predY, anchorX, anchorY, dist)
	if err != nil {
		return fmt.Errorf("support test: %w", err)
	}
	if len(report.DegenerateAxes) > 0 {
		logger.Warn("predicted coordinates span zero range; axis collapsed in support test",
			"axes", report.DegenerateAxes)
	}

	masked := 0
	for i := range preds {
		if report.Excluded[i] {
			preds[i].Value = models.MissingValue()
			masked++
		}
	}
	logger.Debug("support mask applied", "dist", dist, "masked", masked, "kept", len(preds)-masked)
	return nil
}

// assemble writes the predictions back onto a copy of the input table,
// positionally. Every row not covered by a prediction comes out missing.
func assemble(obs []Observation, preds []models.Prediction) ([]Observation, error) {
	out := make([]Observation, len(obs))
	copy(out, obs)
	for i := range out {
		out[i].Z = models.MissingValue()
	}

	seen := make([]bool, len(obs))
	for _, p := range preds {
		if p.Row < 0 || p.Row >= len(obs) || seen[p.Row] {
			return nil, fmt.Errorf("%w: row %d", ErrJoinMismatch, p.Row)
		}
		seen[p.Row] = true
		out[p.Row].Z = p.Value
	}
	return out, nil
}
