package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when a question is empty or a request parameter is out of range.
var ErrInvalidInput = errors.New("invalid input")

// ModelInvocationError wraps any failure returned by the model client.
type ModelInvocationError struct {
	Model string
	Cause error
}

func (e *ModelInvocationError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("model invocation failed (%s): %v", e.Model, e.Cause)
	}
	return fmt.Sprintf("model invocation failed: %v", e.Cause)
}

func (e *ModelInvocationError) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the model call was cut off by its deadline.
func (e *ModelInvocationError) Timeout() bool {
	return errors.Is(e.Cause, context.DeadlineExceeded)
}

// ConfigurationError is returned at startup when the configuration is unusable.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// IsModelInvocationError reports whether err is, or wraps, a ModelInvocationError.
func IsModelInvocationError(err error) bool {
	var mie *ModelInvocationError
	return errors.As(err, &mie)
}
