package schema

import "fmt"

// Error codes for structured error reporting.
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeDecode              = "DECODE_ERROR"
	ErrCodeExpression          = "EXPRESSION_ERROR"
	ErrCodeReference           = "REFERENCE_ERROR"
	ErrCodeCycleDetected       = "CYCLE_DETECTED"
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ErrCodeTrigger             = "TRIGGER_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeStore               = "STORE_ERROR"
)

// LintError is the structured error type for all flowlint operations.
type LintError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Step    string         `json:"step,omitempty"`
	Cause   error          `json:"-"`
}

func (e *LintError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("[%s] step %s: %s", e.Code, e.Step, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *LintError) Unwrap() error {
	return e.Cause
}

// NewError creates a new LintError.
func NewError(code, message string) *LintError {
	return &LintError{Code: code, Message: message}
}

// NewErrorf creates a new LintError with a formatted message.
func NewErrorf(code, format string, args ...any) *LintError {
	return &LintError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithStep attaches a step name to the error.
func (e *LintError) WithStep(step string) *LintError {
	e.Step = step
	return e
}

// WithCause attaches an underlying cause.
func (e *LintError) WithCause(err error) *LintError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *LintError) WithDetails(details map[string]any) *LintError {
	e.Details = details
	return e
}
