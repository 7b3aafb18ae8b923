package surface

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
)

const (
	// nullSpaceDim is the dimension of the unpenalized planar term (1, x, y).
	nullSpaceDim = 3

	// The smoothing parameter is selected on a fixed log-spaced grid.
	lambdaGridSize = 31
	logLambdaMin   = -6
	logLambdaMax   = 6

	// diagJitter stabilizes the Cholesky factorization of near-singular
	// cross-product matrices.
	diagJitter = 1e-8
)

// Fit estimates a penalized thin-plate regression surface of z over (x, y).
// All rows must carry a present (non-NaN) response; the caller filters
// missing rows beforehand. weights may be nil for a uniform fit, otherwise
// it must align one-to-one with the rows. k bounds the basis dimension and
// therefore the effective degrees of freedom of the result.
//
// The smoothing-penalty weight is chosen by minimizing a Gaussian
// restricted-likelihood score over a fixed grid; grid candidates are
// evaluated concurrently by a pool of NumCPU-1 workers sharing the
// read-only cross-product matrices.
func Fit(x, y, z, weights []float64, k int) (*Surface, error) {
	n := len(z)
	if n == 0 {
		return nil, ErrEmptyTrainingSet
	}
	if weights != nil && len(weights) != n {
		return nil, fmt.Errorf("%w: got %d weights for %d rows", ErrWeightMismatch, len(weights), n)
	}
	if k < nullSpaceDim {
		return nil, fmt.Errorf("surface: k must be at least %d, got %d", nullSpaceDim, k)
	}

	scale := newScaler(x, y)
	u := make([]float64, n)
	v := make([]float64, n)
	for i := range x {
		u[i], v[i] = scale.apply(x[i], y[i])
	}

	points := distinctPoints(u, v)
	if k > len(points) {
		return nil, fmt.Errorf("%w: k=%d, independent observations=%d", ErrRankDeficiency, k, len(points))
	}

	m := k - nullSpaceDim
	knots := selectKnots(points, m)
	dim := nullSpaceDim + len(knots)

	w := weights
	if w == nil {
		w = make([]float64, n)
		for i := range w {
			w[i] = 1
		}
	}

	// Design matrix and weighted cross-products, built once and shared
	// read-only by the grid workers.
	design := mat.NewDense(n, dim, nil)
	row := make([]float64, dim)
	for i := 0; i < n; i++ {
		basisRow(row, u[i], v[i], knots)
		design.SetRow(i, row)
	}

	weighted := mat.NewDense(n, dim, nil)
	wz := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < dim; j++ {
			weighted.Set(i, j, w[i]*design.At(i, j))
		}
		wz.SetVec(i, w[i]*z[i])
	}

	cross := mat.NewDense(dim, dim, nil)
	cross.Mul(design.T(), weighted)
	crossSym := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			crossSym.SetSym(i, j, cross.At(i, j))
		}
	}
	rhs := mat.NewVecDense(dim, nil)
	rhs.MulVec(design.T(), wz)

	prob := fitProblem{
		design: design,
		cross:  crossSym,
		rhs:    rhs,
		z:      z,
		w:      w,
		m:      len(knots),
	}

	var best candidate
	if prob.m == 0 {
		// Pure planar fit: nothing to penalize, no grid search.
		best = prob.solve(0)
		if !best.ok {
			return nil, fmt.Errorf("%w: planar system is singular", ErrRankDeficiency)
		}
	} else {
		best = prob.selectLambda()
		if !best.ok {
			return nil, fmt.Errorf("%w: no smoothing candidate produced a stable fit", ErrRankDeficiency)
		}
	}

	return &Surface{
		scale:  scale,
		knots:  knots,
		beta:   best.beta,
		lambda: best.lambda,
		edf:    best.edf,
	}, nil
}

// fitProblem bundles the shared, read-only inputs of the smoothing grid
// search. Workers never mutate these; each candidate allocates its own
// factorization.
type fitProblem struct {
	design *mat.Dense
	cross  *mat.SymDense
	rhs    *mat.VecDense
	z      []float64
	w      []float64
	m      int
}

type candidate struct {
	lambda float64
	score  float64
	beta   []float64
	edf    float64
	ok     bool
}

// selectLambda evaluates the REML score on the lambda grid in parallel and
// returns the best candidate. Worker count follows the hardware, leaving
// one core free; results land in disjoint slots so no locking is needed.
func (p fitProblem) selectLambda() candidate {
	lambdas := make([]float64, lambdaGridSize)
	for i := range lambdas {
		step := float64(i) / float64(lambdaGridSize-1)
		lambdas[i] = math.Pow(10, logLambdaMin+(logLambdaMax-logLambdaMin)*step)
	}

	results := make([]candidate, len(lambdas))
	jobs := make(chan int)

	workers := runtime.NumCPU() - 1
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = p.solve(lambdas[idx])
			}
		}()
	}
	for i := range lambdas {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	best := candidate{score: math.Inf(1)}
	for _, c := range results {
		if c.ok && c.score < best.score {
			best = c
		}
	}
	return best
}

// solve fits the penalized system for one smoothing weight and scores it by
// the profiled Gaussian restricted likelihood.
func (p fitProblem) solve(lambda float64) candidate {
	dim := p.rhs.Len()
	n := len(p.z)

	penalized := mat.NewSymDense(dim, nil)
	penalized.CopySym(p.cross)
	for j := 0; j < dim; j++ {
		add := diagJitter
		if j >= nullSpaceDim {
			add += lambda
		}
		penalized.SetSym(j, j, penalized.At(j, j)+add)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(penalized); !ok {
		return candidate{lambda: lambda, score: math.Inf(1)}
	}

	beta := mat.NewVecDense(dim, nil)
	if err := chol.SolveVecTo(beta, p.rhs); err != nil {
		return candidate{lambda: lambda, score: math.Inf(1)}
	}

	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(p.design, beta)

	rss := 0.0
	for i := 0; i < n; i++ {
		r := p.z[i] - fitted.AtVec(i)
		rss += p.w[i] * r * r
	}
	penalty := 0.0
	for j := nullSpaceDim; j < dim; j++ {
		b := beta.AtVec(j)
		penalty += lambda * b * b
	}

	// Effective degrees of freedom: tr((X'WX + lambda*S)^-1 X'WX).
	inv := mat.NewDense(dim, dim, nil)
	if err := chol.SolveTo(inv, p.cross); err != nil {
		return candidate{lambda: lambda, score: math.Inf(1)}
	}
	edf := mat.Trace(inv)

	out := candidate{
		lambda: lambda,
		beta:   vecData(beta),
		edf:    edf,
		ok:     true,
	}

	if p.m == 0 {
		out.score = 0
		return out
	}

	// Profiled REML score, dropping lambda-independent constants. The
	// residual variance is floored so a numerically exact fit does not
	// collapse the log terms.
	free := float64(n - nullSpaceDim)
	sigma2 := (rss + penalty) / free
	if sigma2 < 1e-30 {
		sigma2 = 1e-30
	}
	out.score = free*math.Log(2*math.Pi*sigma2) + free +
		chol.LogDet() -
		float64(p.m)*math.Log(lambda) -
		float64(nullSpaceDim)*math.Log(sigma2)
	return out
}

func vecData(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
