package errdefs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForCode(t *testing.T) {
	tests := []struct {
		code string
		kind Kind
	}{
		{CodeEnvironmentInvalid, KindEnvironment},
		{CodeConfigurationMissing, KindConfiguration},
		{CodeConfigurationRead, KindConfiguration},
		{CodeCredentialMissing, KindCredential},
		{CodeValidationFailed, KindValidation},
		{CodeDeploymentFailed, KindDeployment},
		{CodeHealthCheckFailed, KindHealthCheck},
		{CodeNetworkUnreachable, KindNetwork},
		{CodeHistoryWriteFailed, KindHistory},
		{CodeRollbackNotFound, KindRollback},
		{"SOMETHING_ELSE", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindForCode(tt.code))
			assert.Equal(t, tt.kind, New(tt.code, "msg").Kind)
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		exit int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", New(CodeValidationFailed, "checks failed"), ExitValidation},
		{"configuration", New(CodeConfigurationMissing, "no config"), ExitConfiguration},
		{"credential", New(CodeCredentialMissing, "no key"), ExitConfiguration},
		{"environment", New(CodeEnvironmentInvalid, "bad env"), ExitConfiguration},
		{"deployment", New(CodeDeploymentFailed, "boom"), ExitDeployment},
		{"history", New(CodeHistoryWriteFailed, "disk full"), ExitDeployment},
		{"health", New(CodeHealthCheckFailed, "unhealthy"), ExitHealth},
		{"unclassified", errors.New("plain"), ExitUnknown},
		{"wrapped", fmt.Errorf("context: %w", New(CodeValidationFailed, "inner")), ExitValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exit, ExitCode(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	err := Wrap(errors.New("cause"), CodeHistoryReadFailed, "read failed")
	assert.True(t, HasCode(err, CodeHistoryReadFailed))
	assert.False(t, HasCode(err, CodeHistoryWriteFailed))
	assert.False(t, HasCode(errors.New("plain"), CodeHistoryReadFailed))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, HasCode(wrapped, CodeHistoryReadFailed))
}

func TestFormat(t *testing.T) {
	err := Wrap(errors.New("permission denied"), CodeCredentialMissing,
		"service account file not found",
		"download the key", "save it locally")

	plain := Format(err, false)
	assert.Contains(t, plain, CodeCredentialMissing)
	assert.Contains(t, plain, "service account file not found")
	assert.Contains(t, plain, "1. download the key")
	assert.Contains(t, plain, "2. save it locally")
	assert.NotContains(t, plain, "permission denied")

	verbose := Format(err, true)
	assert.Contains(t, verbose, "permission denied")
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(cause, CodeDeploymentFailed, "failed")
	assert.ErrorIs(t, err, cause)
}
