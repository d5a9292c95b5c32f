// Package model builds the default structural model over pre-period data and
// checks caller-supplied models before they are fitted.
package model

import (
	"strconv"

	"causalimpact/adapters/ucm"
	"causalimpact/domain/dataset"
	"causalimpact/internal/errors"
	"causalimpact/ports"

	"gonum.org/v1/gonum/mat"
)

// Validation messages
const (
	msgFamily   = "Input model must be of type UnobservedComponents."
	msgLevel    = "Model must have level attribute set."
	msgExog     = "Model must have exog attribute set."
	msgData     = "Model must have data attribute set."
	msgExogCols = "Model exog must have %d columns to match the input covariates."
	msgNobs     = "Model endog must have %d observations to match pre_period."
)

// Build returns a local level model on the response of pre, with a regression
// component over its covariates when there are any.
func Build(pre *dataset.Frame) (*ucm.Model, error) {
	if pre.Rows() == 0 {
		return nil, errors.EmptyInput("pre_data")
	}

	var exog *mat.Dense
	if k := pre.NumCovariates(); k > 0 {
		exog = mat.NewDense(pre.Rows(), k, nil)
		for c := 0; c < k; c++ {
			exog.SetCol(c, pre.Values[c+1])
		}
	}

	m, err := ucm.New(pre.Response(), exog, ucm.Options{
		Level:     ucm.LocalLevelCode,
		EndogName: endogName(pre),
		ExogNames: pre.CovariateNames(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not build model")
	}
	return m, nil
}

// endogName labels the response; positional frames use "y"
func endogName(f *dataset.Frame) string {
	name := f.Columns[0]
	if _, err := strconv.Atoi(name); err == nil || name == "" {
		return "y"
	}
	return name
}

// Validate checks that a caller-supplied model belongs to the accepted family
// and carries the attributes the engine relies on.
func Validate(m interface{}, nCovariates, nobs int) (ports.StructuralModel, error) {
	sm, ok := m.(ports.StructuralModel)
	if !ok || isNilModel(sm) || sm.Family() != ports.ModelFamilyUnobservedComponents {
		return nil, errors.TypeMismatch(msgFamily)
	}

	c := sm.Components()
	if !c.Level {
		return nil, errors.ModelContract(msgLevel)
	}
	if (c.KExog > 0 || nCovariates > 0) && !c.HasExog {
		return nil, errors.ModelContract(msgExog)
	}
	if !c.HasData {
		return nil, errors.ModelContract(msgData)
	}
	if c.HasExog && c.KExog != nCovariates {
		return nil, errors.Newf(errors.CodeModelContractViolation, msgExogCols, nCovariates)
	}
	if c.Nobs != nobs {
		return nil, errors.Newf(errors.CodeModelContractViolation, msgNobs, nobs)
	}
	return sm, nil
}

func isNilModel(sm ports.StructuralModel) bool {
	if u, ok := sm.(*ucm.Model); ok {
		return u == nil
	}
	return false
}
