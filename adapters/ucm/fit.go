package ucm

import (
	"context"
	"fmt"
	"math"

	"causalimpact/ports"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// Bounds on the log-variances searched by the optimizer
const (
	minLogVariance = -30.0
	maxLogVariance = 30.0
	infeasible     = 1e300
)

// Fit estimates sigma2.irregular, sigma2.level and the regression coefficients by
// maximum likelihood. Optimizer failures are returned as-is, never retried.
func (m *Model) Fit(ctx context.Context) (ports.TrainedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.checkFittable(); err != nil {
		return nil, err
	}

	n := len(m.Endog)
	init := m.initialParams()

	objective := func(theta []float64) float64 {
		if theta[0] < minLogVariance || theta[0] > maxLogVariance ||
			theta[1] < minLogVariance || theta[1] > maxLogVariance {
			return infeasible
		}
		z := m.residuals(theta[2:], n)
		ll := runFilter(z, math.Exp(theta[0]), math.Exp(theta[1])).loglik
		if math.IsNaN(ll) || math.IsInf(ll, 0) {
			return infeasible
		}
		return -ll
	}

	settings := &optimize.Settings{
		MajorIterations: m.maxIterations(),
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Relative:   1e-10,
			Iterations: 200,
		},
	}

	result, err := optimize.Minimize(optimize.Problem{Func: objective}, init, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("maximum likelihood estimation failed: %w", err)
	}
	if !converged(result.Status) {
		return nil, fmt.Errorf("maximum likelihood estimation did not converge: %s after %d iterations",
			result.Status, result.Stats.MajorIterations)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	theta := result.X
	beta := append([]float64(nil), theta[2:]...)
	s2Irr, s2Lvl := math.Exp(theta[0]), math.Exp(theta[1])
	z := m.residuals(beta, n)
	filt := runFilter(z, s2Irr, s2Lvl)

	return &Results{
		endog:           append([]float64(nil), m.Endog...),
		regression:      regression(m.Exog, beta, n),
		kExog:           m.KExog,
		sigma2Irregular: s2Irr,
		sigma2Level:     s2Lvl,
		beta:            beta,
		paramNames:      m.ParamNames(),
		filt:            filt,
	}, nil
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.FunctionConvergence, optimize.MethodConverge,
		optimize.StepConvergence, optimize.FunctionThreshold, optimize.GradientThreshold:
		return true
	default:
		return false
	}
}

func (m *Model) checkFittable() error {
	if !m.Level {
		return fmt.Errorf("model has no level component")
	}
	if m.Data == nil {
		return fmt.Errorf("model has no data reference")
	}
	if m.KExog > 0 && m.Exog == nil {
		return fmt.Errorf("model declares %d regressors but exog is missing", m.KExog)
	}
	if m.Exog != nil {
		rows, cols := m.Exog.Dims()
		if rows != len(m.Endog) || cols != m.KExog {
			return fmt.Errorf("exog is %dx%d, expected %dx%d", rows, cols, len(m.Endog), m.KExog)
		}
	}
	if len(m.Endog) < 2 {
		return fmt.Errorf("at least 2 observations are required, got %d", len(m.Endog))
	}
	return nil
}

func (m *Model) residuals(beta []float64, n int) []float64 {
	z := append([]float64(nil), m.Endog...)
	if m.KExog == 0 {
		return z
	}
	floats.Sub(z, regression(m.Exog, beta, n))
	return z
}

// initialParams starts from OLS coefficients and splits the residual variance
// evenly between the irregular and level disturbances.
func (m *Model) initialParams() []float64 {
	n := len(m.Endog)
	init := make([]float64, 2+m.KExog)

	resid := m.Endog
	if m.KExog > 0 {
		if beta, ok := olsWithIntercept(m.Endog, m.Exog); ok {
			copy(init[2:], beta)
			resid = m.residuals(beta, n)
		}
	}

	variance := stat.Variance(resid, nil)
	if math.IsNaN(variance) || variance < 1e-8 {
		variance = 1e-2
	}
	init[0] = math.Log(variance / 2)
	init[1] = math.Log(variance / 2)
	return init
}

// olsWithIntercept regresses y on [1 X] and returns the X coefficients
func olsWithIntercept(y []float64, x *mat.Dense) ([]float64, bool) {
	n, k := x.Dims()
	if n <= k+1 {
		return nil, false
	}
	design := mat.NewDense(n, k+1, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		for j := 0; j < k; j++ {
			design.Set(i, j+1, x.At(i, j))
		}
	}

	var qr mat.QR
	qr.Factorize(design)
	var coef mat.Dense
	if err := qr.SolveTo(&coef, false, mat.NewDense(n, 1, append([]float64(nil), y...))); err != nil {
		return nil, false
	}

	beta := make([]float64, k)
	for j := 0; j < k; j++ {
		beta[j] = coef.At(j+1, 0)
		if math.IsNaN(beta[j]) || math.IsInf(beta[j], 0) {
			return nil, false
		}
	}
	return beta, true
}
