// Package ucm implements an Unobserved Components structural time-series model:
// a local level trend plus an optional static regression on exogenous series,
//
//	y[t]  = mu[t] + x[t]'beta + eps[t],  eps ~ N(0, sigma2.irregular)
//	mu[t+1] = mu[t] + eta[t],            eta ~ N(0, sigma2.level)
//
// fitted by maximum likelihood through a Kalman filter with exact diffuse
// initialisation of the level.
package ucm

import (
	"fmt"
	"math"
	"strings"

	"causalimpact/ports"

	"gonum.org/v1/gonum/mat"
)

// Trend specifications
const (
	LocalLevel     = "local level"
	LocalLevelCode = "llevel"
)

// DefaultMaxIterations bounds the Nelder-Mead major iterations of Fit
const DefaultMaxIterations = 10000

// Options configure a new model
type Options struct {
	// Level is the trend specification: "llevel" or "local level"
	Level     string
	EndogName string
	ExogNames []string
	// MaxIterations overrides DefaultMaxIterations when positive
	MaxIterations int
}

// Data is the labelled data reference the model was built from
type Data struct {
	EndogName string
	ExogNames []string
	Nobs      int
}

// Model is an unfitted local level model bound to its endogenous and exogenous series.
// Fields are exported so callers can inspect or supply a hand-built model.
type Model struct {
	Level              bool
	TrendSpecification string
	Endog              []float64
	Exog               *mat.Dense
	KExog              int
	Data               *Data
	MaxIterations      int
}

// New builds a model over endog with optional regressors exog (rows = observations)
func New(endog []float64, exog *mat.Dense, opts Options) (*Model, error) {
	spec, err := parseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if len(endog) == 0 {
		return nil, fmt.Errorf("endog must have at least one observation")
	}
	for i, v := range endog {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("endog has a non-finite value at position %d", i)
		}
	}

	kExog := 0
	if exog != nil {
		rows, cols := exog.Dims()
		if rows != len(endog) {
			return nil, fmt.Errorf("exog has %d rows but endog has %d observations", rows, len(endog))
		}
		kExog = cols
		exog = mat.DenseCopyOf(exog)
	}

	endogName := opts.EndogName
	if endogName == "" {
		endogName = "y"
	}
	exogNames := opts.ExogNames
	if kExog > 0 && len(exogNames) != kExog {
		exogNames = make([]string, kExog)
		for i := range exogNames {
			exogNames[i] = fmt.Sprintf("x%d", i+1)
		}
	}
	if kExog == 0 {
		exogNames = nil
	}

	return &Model{
		Level:              true,
		TrendSpecification: spec,
		Endog:              append([]float64(nil), endog...),
		Exog:               exog,
		KExog:              kExog,
		Data: &Data{
			EndogName: endogName,
			ExogNames: append([]string(nil), exogNames...),
			Nobs:      len(endog),
		},
		MaxIterations: opts.MaxIterations,
	}, nil
}

func parseLevel(level string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case LocalLevelCode, LocalLevel, "":
		return LocalLevel, nil
	default:
		return "", fmt.Errorf("unsupported trend specification %q", level)
	}
}

// Family implements ports.StructuralModel
func (m *Model) Family() string {
	return ports.ModelFamilyUnobservedComponents
}

// Components implements ports.StructuralModel
func (m *Model) Components() ports.ModelComponents {
	c := ports.ModelComponents{
		Level:              m.Level,
		TrendSpecification: m.TrendSpecification,
		KEndog:             1,
		KExog:              m.KExog,
		HasExog:            m.Exog != nil,
		HasData:            m.Data != nil,
		Nobs:               len(m.Endog),
	}
	if m.Exog != nil {
		_, c.KExog = m.Exog.Dims()
	}
	if m.Data != nil {
		c.EndogName = m.Data.EndogName
		c.ExogNames = append([]string(nil), m.Data.ExogNames...)
	}
	return c
}

// ParamNames lists the estimated parameters in the order of the parameter vector
func (m *Model) ParamNames() []string {
	names := []string{"sigma2.irregular", "sigma2.level"}
	for i := 0; i < m.KExog; i++ {
		name := fmt.Sprintf("x%d", i+1)
		if m.Data != nil && i < len(m.Data.ExogNames) {
			name = m.Data.ExogNames[i]
		}
		names = append(names, "beta."+name)
	}
	return names
}

func (m *Model) maxIterations() int {
	if m.MaxIterations > 0 {
		return m.MaxIterations
	}
	return DefaultMaxIterations
}

// regression returns x[t]'beta for every row of x, or zeros when x is nil
func regression(x mat.Matrix, beta []float64, n int) []float64 {
	out := make([]float64, n)
	if x == nil || len(beta) == 0 {
		return out
	}
	xb := mat.NewVecDense(n, out)
	xb.MulVec(x, mat.NewVecDense(len(beta), beta))
	return out
}
