package surface

import "errors"

var (
	// ErrEmptyTrainingSet is returned when no row has a present response.
	ErrEmptyTrainingSet = errors.New("surface: empty training set")

	// ErrWeightMismatch is returned when the supplied weight vector length
	// does not equal the number of training rows. It is raised before any
	// fitting computation starts.
	ErrWeightMismatch = errors.New("surface: weight count does not match training rows")

	// ErrRankDeficiency is returned when the requested basis dimension k
	// exceeds the number of independent (distinct-coordinate) training
	// observations.
	ErrRankDeficiency = errors.New("surface: k exceeds independent observations")
)
