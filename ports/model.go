package ports

import (
	"context"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ModelFamilyUnobservedComponents is the only model family the pipeline accepts
const ModelFamilyUnobservedComponents = "UnobservedComponents"

// ModelComponents describes the attributes a structural model exposes for validation
type ModelComponents struct {
	Level              bool
	TrendSpecification string
	KEndog             int
	KExog              int
	HasExog            bool
	HasData            bool
	Nobs               int
	EndogName          string
	ExogNames          []string
}

// StructuralModel is a state-space specification bound to pre-period data
type StructuralModel interface {
	// Family names the model family, e.g. "UnobservedComponents"
	Family() string
	// Components reports the fields checked before a caller-supplied model is used
	Components() ModelComponents
	// Fit estimates the model parameters by maximum likelihood
	Fit(ctx context.Context) (TrainedModel, error)
}

// Prediction is a mean path with a (1-alpha) interval
type Prediction struct {
	Mean  []float64
	Lower []float64
	Upper []float64
}

// TrainedModel is a fitted structural model. Implementations must be safe for
// concurrent read-only use so simulations can run in parallel.
type TrainedModel interface {
	Nobs() int
	LogLikelihood() float64
	ParamNames() []string
	Params() []float64

	// InSample returns one-step-ahead predictions over the fitted period
	InSample(alpha float64) (Prediction, error)
	// Forecast predicts len(rows of exog) steps ahead; exog may be nil when the model has no regression
	Forecast(steps int, exog mat.Matrix, alpha float64) (Prediction, error)
	// Simulate draws n counterfactual trajectories of the forecast horizon
	Simulate(steps int, exog mat.Matrix, n int, rng *rand.Rand) ([][]float64, error)
}
