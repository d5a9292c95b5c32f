// Package inference fits a structural model on the pre-period, forecasts the
// post-period counterfactual and derives point-wise and cumulative effects
// together with a simulation based p-value.
package inference

import (
	"context"
	stderrors "errors"
	"math"
	"sort"

	"causalimpact/domain/dataset"
	"causalimpact/domain/impact"
	"causalimpact/internal"
	"causalimpact/internal/errors"
	"causalimpact/ports"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// SimulationChunk is the number of trajectories drawn from one random stream
const SimulationChunk = 100

const streamName = "inference.simulate"

// Engine runs the fit, forecast and significance stages of an analysis
type Engine struct {
	logger  *internal.Logger
	rng     ports.RNGPort
	workers int
}

// NewEngine creates an engine that simulates on up to workers goroutines
func NewEngine(logger *internal.Logger, rng ports.RNGPort, workers int) *Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if workers < 1 {
		workers = 1
	}
	return &Engine{logger: logger, rng: rng, workers: workers}
}

// Input is one inference request. PreData and PostData are in original units;
// ModelPostData holds the post-period covariates in the units the model was
// built on. MuSig is nil when the model works on raw values.
type Input struct {
	Model         ports.StructuralModel
	PreData       *dataset.Frame
	PostData      *dataset.Frame
	ModelPostData *dataset.Frame
	MuSig         *impact.MuSig
	Alpha         float64
	NSims         int
	Seed          int64
}

// Output holds the fitted model and everything derived from it
type Output struct {
	Trained    ports.TrainedModel
	Inferences *impact.Inferences
	PValue     float64
}

// Run executes the pipeline. Inputs and the model are never modified.
func (e *Engine) Run(ctx context.Context, in Input) (*Output, error) {
	if err := in.check(); err != nil {
		return nil, err
	}

	trained, err := in.Model.Fit(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && stderrors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, errors.FittingFailure(err)
	}
	e.logger.WithFields(map[string]interface{}{
		"params":  trained.ParamNames(),
		"values":  trained.Params(),
		"loglik":  trained.LogLikelihood(),
		"n_train": trained.Nobs(),
	}).Debug("model fitted")

	nPre, nPost := in.PreData.Rows(), in.PostData.Rows()
	exog := covariates(in.ModelPostData)

	fitted, err := trained.InSample(in.Alpha)
	if err != nil {
		return nil, errors.Wrap(err, "in-sample prediction failed")
	}
	if len(fitted.Mean) != nPre {
		return nil, errors.Newf(errors.CodeInternalError,
			"model returned %d in-sample predictions for %d pre-period rows", len(fitted.Mean), nPre)
	}
	forecast, err := trained.Forecast(nPost, exog, in.Alpha)
	if err != nil {
		return nil, errors.Wrap(err, "forecast failed")
	}

	inf := impact.NewInferences(nPre + nPost)
	y := make([]float64, 0, nPre+nPost)
	y = append(y, in.PreData.Response()...)
	y = append(y, in.PostData.Response()...)
	for i := 0; i < nPre; i++ {
		inf.Index[i] = in.PreData.Label(i)
	}
	for i := 0; i < nPost; i++ {
		inf.Index[nPre+i] = in.PostData.Label(i)
	}

	fillPredictions(inf, 0, fitted, in.MuSig)
	fillPredictions(inf, nPre, forecast, in.MuSig)
	for i, v := range y {
		inf.PointEffects[i] = v - inf.Preds[i]
		inf.PointEffectsLower[i] = v - inf.PredsUpper[i]
		inf.PointEffectsUpper[i] = v - inf.PredsLower[i]
	}

	postY := y[nPre:]
	cumulativeSum(inf.PostCumY[nPre:], postY)
	cumulativeSum(inf.PostCumPreds[nPre:], inf.Preds[nPre:])

	simCum, err := e.simulate(ctx, trained, nPost, exog, in)
	if err != nil {
		return nil, err
	}

	lowerQ, upperQ := in.Alpha/2, 1-in.Alpha/2
	column := make([]float64, len(simCum))
	for h := 0; h < nPost; h++ {
		for s, path := range simCum {
			column[s] = path[h]
		}
		sort.Float64s(column)
		i := nPre + h
		inf.PostCumPredsLower[i] = stat.Quantile(lowerQ, stat.Empirical, column, nil)
		inf.PostCumPredsUpper[i] = stat.Quantile(upperQ, stat.Empirical, column, nil)

		inf.PostCumEffects[i] = inf.PostCumY[i] - inf.PostCumPreds[i]
		inf.PostCumEffectsLower[i] = inf.PostCumY[i] - inf.PostCumPredsUpper[i]
		inf.PostCumEffectsUpper[i] = inf.PostCumY[i] - inf.PostCumPredsLower[i]
	}

	pValue := TailProbability(inf.PostCumY[nPre+nPost-1], simCum)
	e.logger.WithField("p_value", pValue).Debug("inferences computed over %d rows", inf.Len())

	return &Output{Trained: trained, Inferences: inf, PValue: pValue}, nil
}

func (in Input) check() error {
	if in.Model == nil {
		return errors.InternalError("inference requires a model")
	}
	if in.PreData.Rows() == 0 {
		return errors.EmptyInput("pre_data")
	}
	if in.PostData.Rows() == 0 {
		return errors.EmptyInput("post_data")
	}
	if in.ModelPostData != nil && in.ModelPostData.Rows() != in.PostData.Rows() {
		return errors.Newf(errors.CodeInternalError,
			"model post data has %d rows, post data has %d", in.ModelPostData.Rows(), in.PostData.Rows())
	}
	if math.IsNaN(in.Alpha) || in.Alpha < 0 || in.Alpha > 1 {
		return errors.Newf(errors.CodeTypeMismatch, "alpha must lie in [0, 1], got %v", in.Alpha)
	}
	if in.NSims <= 0 {
		return errors.Newf(errors.CodeTypeMismatch, "number of simulations must be positive, got %d", in.NSims)
	}
	return nil
}

// covariates returns the covariate columns of f as a rows x k matrix, nil when there are none
func covariates(f *dataset.Frame) mat.Matrix {
	if f == nil || f.NumCovariates() == 0 {
		return nil
	}
	x := mat.NewDense(f.Rows(), f.NumCovariates(), nil)
	for c := 0; c < f.NumCovariates(); c++ {
		x.SetCol(c, f.Values[c+1])
	}
	return x
}

// fillPredictions writes p into inf starting at row offset, in original units
func fillPredictions(inf *impact.Inferences, offset int, p ports.Prediction, ms *impact.MuSig) {
	for i := range p.Mean {
		inf.Preds[offset+i] = destandardize(p.Mean[i], ms)
		inf.PredsLower[offset+i] = destandardize(p.Lower[i], ms)
		inf.PredsUpper[offset+i] = destandardize(p.Upper[i], ms)
	}
}

func destandardize(v float64, ms *impact.MuSig) float64 {
	if ms == nil {
		return v
	}
	return v*ms.Sig + ms.Mu
}

// simulate draws NSims counterfactual trajectories in fixed-size chunks, each on
// its own seeded stream, and returns their running sums in original units.
// The result only depends on the seed, not on the number of workers.
func (e *Engine) simulate(ctx context.Context, trained ports.TrainedModel, steps int, exog mat.Matrix, in Input) ([][]float64, error) {
	chunks := (in.NSims + SimulationChunk - 1) / SimulationChunk
	results := make([][][]float64, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for c := 0; c < chunks; c++ {
		c := c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			size := SimulationChunk
			if rest := in.NSims - c*SimulationChunk; rest < size {
				size = rest
			}
			rng, err := e.rng.Stream(gctx, streamName, c, in.Seed)
			if err != nil {
				return err
			}
			paths, err := trained.Simulate(steps, exog, size, rng)
			if err != nil {
				return errors.Wrapf(err, "simulation chunk %d", c)
			}
			for _, path := range paths {
				for h := range path {
					path[h] = destandardize(path[h], in.MuSig)
				}
				cumulativeSum(path, path)
			}
			results[c] = paths
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.Wrap(err, "posterior simulation failed")
	}

	all := make([][]float64, 0, in.NSims)
	for _, paths := range results {
		all = append(all, paths...)
	}
	return all, nil
}

// cumulativeSum writes the running sum of s into dst, adding strictly left to
// right so every entry equals the sequential total of the values before it.
// dst may alias s.
func cumulativeSum(dst, s []float64) {
	acc := 0.0
	for i, v := range s {
		acc += v
		dst[i] = acc
	}
}

// TailProbability is the two-sided probability of a simulated cumulative total at
// least as extreme as observed. The +1/+2 correction keeps it inside (0, 1).
func TailProbability(observed float64, simCum [][]float64) float64 {
	var above, below int
	for _, path := range simCum {
		total := path[len(path)-1]
		switch {
		case total > observed:
			above++
		case total < observed:
			below++
		}
	}
	extreme := above
	if below < extreme {
		extreme = below
	}
	return float64(2*extreme+1) / float64(len(simCum)+2)
}
