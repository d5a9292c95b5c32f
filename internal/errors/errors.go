package errors

import (
	stderrors "errors"
	"fmt"

	"causalimpact/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches the domain sentinel that corresponds to the error code
func (e *AppError) Is(target error) bool {
	sentinel, ok := sentinels[e.Code]
	return ok && sentinel == target
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid          = "CONFIG_INVALID"
	CodeInternalError          = "INTERNAL_ERROR"
	CodeEmptyInput             = "EMPTY_INPUT"
	CodeTypeMismatch           = "TYPE_MISMATCH"
	CodeConversionFailure      = "CONVERSION_FAILURE"
	CodeDegenerateResponse     = "DEGENERATE_RESPONSE"
	CodePeriodSemanticError    = "PERIOD_SEMANTIC_ERROR"
	CodeModelContractViolation = "MODEL_CONTRACT_VIOLATION"
	CodeFittingFailure         = "FITTING_FAILURE"
)

var sentinels = map[string]error{
	CodeEmptyInput:             core.ErrEmptyInput,
	CodeTypeMismatch:           core.ErrTypeMismatch,
	CodeConversionFailure:      core.ErrConversionFailure,
	CodeDegenerateResponse:     core.ErrDegenerateResponse,
	CodePeriodSemanticError:    core.ErrPeriodSemantic,
	CodeModelContractViolation: core.ErrModelContract,
	CodeFittingFailure:         core.ErrFitting,
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func EmptyInput(name string) *AppError {
	return Newf(CodeEmptyInput, "%s input cannot be empty", name)
}

func TypeMismatch(message string) *AppError {
	return New(CodeTypeMismatch, message)
}

func ConversionFailure(message string) *AppError {
	return New(CodeConversionFailure, message)
}

func DegenerateResponse(message string) *AppError {
	return New(CodeDegenerateResponse, message)
}

func PeriodError(message string) *AppError {
	return New(CodePeriodSemanticError, message)
}

func ModelContract(message string) *AppError {
	return New(CodeModelContractViolation, message)
}

// FittingFailure keeps the optimizer error as cause so callers see the raw status
func FittingFailure(cause error) *AppError {
	return &AppError{
		Code:    CodeFittingFailure,
		Message: "model fitting did not converge",
		Cause:   cause,
	}
}
