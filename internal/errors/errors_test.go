package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"causalimpact/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessageIsVerbatim(t *testing.T) {
	err := TypeMismatch("alpha must be of type float.")
	assert.Equal(t, "alpha must be of type float.", err.Error())
	assert.Equal(t, CodeTypeMismatch, GetCode(err))
}

func TestEmptyInputMessage(t *testing.T) {
	assert.Equal(t, "data input cannot be empty", EmptyInput("data").Error())
	assert.Equal(t, "pre_period input cannot be empty", EmptyInput("pre_period").Error())
}

func TestAppErrorMatchesDomainSentinel(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{EmptyInput("data"), core.ErrEmptyInput},
		{TypeMismatch("x"), core.ErrTypeMismatch},
		{ConversionFailure("x"), core.ErrConversionFailure},
		{DegenerateResponse("x"), core.ErrDegenerateResponse},
		{PeriodError("x"), core.ErrPeriodSemantic},
		{ModelContract("x"), core.ErrModelContract},
		{FittingFailure(fmt.Errorf("iteration limit")), core.ErrFitting},
	}

	for _, tc := range cases {
		assert.True(t, stderrors.Is(tc.err, tc.sentinel), "%s should match %v", GetCode(tc.err), tc.sentinel)
	}

	assert.False(t, stderrors.Is(PeriodError("x"), core.ErrFitting))
	assert.True(t, core.IsValidationError(ModelContract("x")))
	assert.True(t, core.IsFittingError(FittingFailure(nil)))
}

func TestWrapKeepsCode(t *testing.T) {
	wrapped := Wrap(PeriodError("bad range"), "failed to validate periods")
	assert.Equal(t, CodePeriodSemanticError, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, core.ErrPeriodSemantic))
	assert.Nil(t, Wrap(nil, "ignored"))

	plain := Wrapf(fmt.Errorf("boom"), "step %d", 3)
	assert.Equal(t, CodeInternalError, GetCode(plain))
	assert.Equal(t, "step 3: boom", plain.Error())
	assert.False(t, IsAppError(fmt.Errorf("plain")))
}

func TestFittingFailureExposesCause(t *testing.T) {
	cause := fmt.Errorf("optimize: iteration limit reached")
	err := FittingFailure(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "iteration limit")
}
