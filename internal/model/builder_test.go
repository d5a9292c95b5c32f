package model

import (
	"context"
	"math/rand"
	"testing"

	"causalimpact/adapters/ucm"
	"causalimpact/domain/core"
	"causalimpact/domain/dataset"
	"causalimpact/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preFrame(t *testing.T, columns []string, rows int) *dataset.Frame {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	values := make([][]float64, len(columns))
	for c := range values {
		values[c] = make([]float64, rows)
		for r := range values[c] {
			values[c][r] = rng.Float64()
		}
	}
	f, err := dataset.NewFrame(columns, values)
	require.NoError(t, err)
	return f
}

type foreignModel struct{}

func (foreignModel) Family() string                    { return "ARIMA" }
func (foreignModel) Components() ports.ModelComponents { return ports.ModelComponents{Level: true} }
func (foreignModel) Fit(context.Context) (ports.TrainedModel, error) {
	return nil, nil
}

func TestBuildWithCovariates(t *testing.T) {
	pre := preFrame(t, []string{"y", "x1", "x2"}, 100)
	m, err := Build(pre)
	require.NoError(t, err)

	assert.True(t, m.Level)
	assert.Equal(t, ucm.LocalLevel, m.TrendSpecification)
	assert.Equal(t, 2, m.KExog)
	assert.Equal(t, pre.Values[0], m.Endog)
	assert.Equal(t, pre.Values[2][5], m.Exog.At(5, 1))
	assert.Equal(t, "y", m.Data.EndogName)
	assert.Equal(t, []string{"x1", "x2"}, m.Data.ExogNames)

	_, err = Validate(m, 2, 100)
	assert.NoError(t, err)
}

func TestBuildWithoutCovariates(t *testing.T) {
	pre := preFrame(t, []string{"sales"}, 30)
	m, err := Build(pre)
	require.NoError(t, err)
	assert.Nil(t, m.Exog)
	assert.Equal(t, 0, m.KExog)
	assert.Equal(t, "sales", m.Data.EndogName)
}

func TestBuildNamesPositionalResponse(t *testing.T) {
	pre := preFrame(t, dataset.PositionalColumns(3), 20)
	m, err := Build(pre)
	require.NoError(t, err)
	assert.Equal(t, "y", m.Data.EndogName)
	assert.Equal(t, []string{"1", "2"}, m.Data.ExogNames)
}

func TestBuildRejectsEmptyFrame(t *testing.T) {
	_, err := Build(&dataset.Frame{})
	assert.ErrorIs(t, err, core.ErrEmptyInput)
}

func TestValidateCallerModel(t *testing.T) {
	pre := preFrame(t, []string{"y", "x1", "x2"}, 100)
	build := func() *ucm.Model {
		m, err := Build(pre)
		require.NoError(t, err)
		return m
	}

	noLevel := build()
	noLevel.Level = false
	noExog := build()
	noExog.Exog = nil
	noData := build()
	noData.Data = nil
	short := preFrame(t, []string{"y", "x1", "x2"}, 90)
	shortModel, err := Build(short)
	require.NoError(t, err)

	tests := []struct {
		name     string
		model    interface{}
		message  string
		sentinel error
	}{
		{"string", "test", "Input model must be of type UnobservedComponents.", core.ErrTypeMismatch},
		{"nil", nil, "Input model must be of type UnobservedComponents.", core.ErrTypeMismatch},
		{"typed nil", (*ucm.Model)(nil), "Input model must be of type UnobservedComponents.", core.ErrTypeMismatch},
		{"foreign", foreignModel{}, "Input model must be of type UnobservedComponents.", core.ErrTypeMismatch},
		{"no level", noLevel, "Model must have level attribute set.", core.ErrModelContract},
		{"no exog", noExog, "Model must have exog attribute set.", core.ErrModelContract},
		{"no data", noData, "Model must have data attribute set.", core.ErrModelContract},
		{"short endog", shortModel, "Model endog must have 100 observations to match pre_period.", core.ErrModelContract},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.model, 2, 100)
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestValidateExogWidth(t *testing.T) {
	m, err := Build(preFrame(t, []string{"y", "x1"}, 50))
	require.NoError(t, err)

	_, err = Validate(m, 2, 50)
	require.Error(t, err)
	assert.Equal(t, "Model exog must have 2 columns to match the input covariates.", err.Error())

	plain, err := Build(preFrame(t, []string{"y"}, 50))
	require.NoError(t, err)
	_, err = Validate(plain, 1, 50)
	assert.EqualError(t, err, "Model must have exog attribute set.")
}
