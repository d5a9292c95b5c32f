package ucm

import (
	"fmt"
	"math"
	"math/rand"

	"causalimpact/ports"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Results is a fitted model. It holds copies of everything it needs and is
// never modified after Fit returns.
type Results struct {
	endog      []float64
	regression []float64 // x[t]'beta over the fitted period
	kExog      int

	sigma2Irregular float64
	sigma2Level     float64
	beta            []float64
	paramNames      []string

	filt filterOutput
}

var _ ports.TrainedModel = (*Results)(nil)

// Nobs returns the number of fitted observations
func (r *Results) Nobs() int {
	return len(r.endog)
}

// LogLikelihood returns the maximised log-likelihood
func (r *Results) LogLikelihood() float64 {
	return r.filt.loglik
}

// ParamNames returns the parameter labels
func (r *Results) ParamNames() []string {
	return append([]string(nil), r.paramNames...)
}

// Params returns sigma2.irregular, sigma2.level and the betas
func (r *Results) Params() []float64 {
	return append([]float64{r.sigma2Irregular, r.sigma2Level}, r.beta...)
}

// InSample returns one-step-ahead predictions over the fitted period. The first
// point is not identified under the diffuse prior; it is reported as the
// observation itself with an interval of irregular variance.
func (r *Results) InSample(alpha float64) (ports.Prediction, error) {
	z, err := criticalValue(alpha)
	if err != nil {
		return ports.Prediction{}, err
	}

	n := len(r.endog)
	pred := newPrediction(n)
	for t := 0; t < n; t++ {
		var mean, variance float64
		if t == 0 {
			mean = r.endog[0]
			variance = r.sigma2Irregular
		} else {
			mean = r.filt.a[t] + r.regression[t]
			variance = r.filt.f[t]
		}
		setPoint(pred, t, mean, z*math.Sqrt(variance))
	}
	return pred, nil
}

// Forecast predicts steps periods after the fitted sample
func (r *Results) Forecast(steps int, exog mat.Matrix, alpha float64) (ports.Prediction, error) {
	z, err := criticalValue(alpha)
	if err != nil {
		return ports.Prediction{}, err
	}
	xb, err := r.forecastRegression(steps, exog)
	if err != nil {
		return ports.Prediction{}, err
	}

	n := len(r.endog)
	level, levelVar := r.filt.a[n], r.filt.p[n]
	pred := newPrediction(steps)
	for h := 0; h < steps; h++ {
		variance := levelVar + float64(h)*r.sigma2Level + r.sigma2Irregular
		setPoint(pred, h, level+xb[h], z*math.Sqrt(variance))
	}
	return pred, nil
}

// Simulate draws n trajectories of the forecast horizon from the predictive
// distribution of the level and the irregular term.
func (r *Results) Simulate(steps int, exog mat.Matrix, n int, rng *rand.Rand) ([][]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("number of simulations must be positive, got %d", n)
	}
	if rng == nil {
		return nil, fmt.Errorf("simulation requires a random source")
	}
	xb, err := r.forecastRegression(steps, exog)
	if err != nil {
		return nil, err
	}

	nobs := len(r.endog)
	levelSd := math.Sqrt(r.filt.p[nobs])
	irrSd := math.Sqrt(r.sigma2Irregular)
	stepSd := math.Sqrt(r.sigma2Level)

	paths := make([][]float64, n)
	for s := range paths {
		path := make([]float64, steps)
		mu := r.filt.a[nobs] + levelSd*rng.NormFloat64()
		for h := 0; h < steps; h++ {
			path[h] = mu + xb[h] + irrSd*rng.NormFloat64()
			mu += stepSd * rng.NormFloat64()
		}
		paths[s] = path
	}
	return paths, nil
}

func (r *Results) forecastRegression(steps int, exog mat.Matrix) ([]float64, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("forecast horizon must be positive, got %d", steps)
	}
	if r.kExog == 0 {
		return make([]float64, steps), nil
	}
	if exog == nil {
		return nil, fmt.Errorf("model has %d regressors; exog is required to forecast", r.kExog)
	}
	rows, cols := exog.Dims()
	if rows != steps || cols != r.kExog {
		return nil, fmt.Errorf("exog is %dx%d, expected %dx%d", rows, cols, steps, r.kExog)
	}
	return regression(exog, r.beta, steps), nil
}

func criticalValue(alpha float64) (float64, error) {
	if math.IsNaN(alpha) || alpha < 0 || alpha > 1 {
		return 0, fmt.Errorf("alpha must lie in [0, 1], got %v", alpha)
	}
	return distuv.UnitNormal.Quantile(1 - alpha/2), nil
}

func newPrediction(n int) ports.Prediction {
	return ports.Prediction{
		Mean:  make([]float64, n),
		Lower: make([]float64, n),
		Upper: make([]float64, n),
	}
}

func setPoint(p ports.Prediction, i int, mean, halfWidth float64) {
	p.Mean[i] = mean
	p.Lower[i] = mean - halfWidth
	p.Upper[i] = mean + halfWidth
}
