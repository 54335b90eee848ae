package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelInvocationErrorUnwrap(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := fmt.Errorf("handle question: %w", &ModelInvocationError{Model: "gemini-1.5-flash", Cause: cause})

	assert.True(t, IsModelInvocationError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Contains(t, err.Error(), "gemini-1.5-flash")
}

func TestModelInvocationErrorTimeout(t *testing.T) {
	err := &ModelInvocationError{Cause: fmt.Errorf("send: %w", context.DeadlineExceeded)}
	assert.True(t, err.Timeout())

	err = &ModelInvocationError{Cause: errors.New("401 unauthorized")}
	assert.False(t, err.Timeout())
}

func TestConfigurationErrorMessage(t *testing.T) {
	err := &ConfigurationError{Field: "LLM_TEMPERATURE", Reason: "must be between 0 and 1"}
	assert.Equal(t, "invalid configuration: LLM_TEMPERATURE: must be between 0 and 1", err.Error())
	assert.False(t, IsModelInvocationError(err))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.True(t, RoleSystem.Valid())
	assert.False(t, Role("human").Valid())
}
