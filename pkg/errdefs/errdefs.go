package errdefs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error by functional area.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindConfiguration Kind = "configuration"
	KindCredential    Kind = "credential"
	KindDeployment    Kind = "deployment"
	KindHealthCheck   Kind = "healthcheck"
	KindNetwork       Kind = "network"
	KindHistory       Kind = "history"
	KindRollback      Kind = "rollback"
	KindEnvironment   Kind = "environment"
	KindUnknown       Kind = "unknown"
)

// Stable error codes. The prefix before the first underscore selects the
// kind (see KindForCode), so new codes must follow the same convention.
const (
	CodeEnvironmentInvalid   = "ENVIRONMENT_INVALID"
	CodeEnvironmentExists    = "ENVIRONMENT_EXISTS"
	CodeConfigurationMissing = "CONFIGURATION_MISSING"
	CodeConfigurationRead    = "CONFIGURATION_READ_FAILED"
	CodeConfigurationWrite   = "CONFIGURATION_WRITE_FAILED"
	CodeConfigurationTarget  = "CONFIGURATION_HEALTH_TARGET"
	CodeCredentialMissing    = "CREDENTIAL_MISSING"
	CodeCredentialInvalid    = "CREDENTIAL_INVALID"
	CodeCredentialIncomplete = "CREDENTIAL_INCOMPLETE"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeDeploymentFailed     = "DEPLOYMENT_FAILED"
	CodeHealthCheckFailed    = "HEALTHCHECK_FAILED"
	CodeNetworkUnreachable   = "NETWORK_UNREACHABLE"
	CodeHistoryReadFailed    = "HISTORY_READ_FAILED"
	CodeHistoryWriteFailed   = "HISTORY_WRITE_FAILED"
	CodeRollbackNotFound     = "ROLLBACK_NOT_FOUND"
)

// Process exit codes by error kind.
const (
	ExitSuccess       = 0
	ExitValidation    = 1
	ExitConfiguration = 2
	ExitDeployment    = 3
	ExitHealth        = 4
	ExitUnknown       = 99
)

// Error is a classified deployment error with a stable code, a human
// message, and remediation steps for the operator.
type Error struct {
	Kind        Kind
	Code        string
	Message     string
	Remediation []string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error. The kind is derived from the code prefix.
func New(code, message string, remediation ...string) *Error {
	return &Error{
		Kind:        KindForCode(code),
		Code:        code,
		Message:     message,
		Remediation: remediation,
	}
}

// Wrap creates a classified error carrying an underlying cause.
func Wrap(err error, code, message string, remediation ...string) *Error {
	return &Error{
		Kind:        KindForCode(code),
		Code:        code,
		Message:     message,
		Remediation: remediation,
		Err:         err,
	}
}

// KindForCode maps an error code onto its kind via the prefix convention.
func KindForCode(code string) Kind {
	prefix, _, _ := strings.Cut(code, "_")
	switch prefix {
	case "VALIDATION":
		return KindValidation
	case "CONFIGURATION":
		return KindConfiguration
	case "CREDENTIAL":
		return KindCredential
	case "DEPLOYMENT":
		return KindDeployment
	case "HEALTHCHECK":
		return KindHealthCheck
	case "NETWORK":
		return KindNetwork
	case "HISTORY":
		return KindHistory
	case "ROLLBACK":
		return KindRollback
	case "ENVIRONMENT":
		return KindEnvironment
	default:
		return KindUnknown
	}
}

// IsKind reports whether err or any error it wraps is a classified error of
// the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// HasCode reports whether err or any error it wraps carries the given
// stable code.
func HasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// ExitCode maps an error onto the process exit code taxonomy. A nil error
// maps to ExitSuccess; an unclassified error maps to ExitUnknown.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *Error
	if !errors.As(err, &e) {
		return ExitUnknown
	}
	switch e.Kind {
	case KindValidation:
		return ExitValidation
	case KindConfiguration, KindCredential, KindEnvironment:
		return ExitConfiguration
	case KindDeployment, KindHistory, KindRollback:
		return ExitDeployment
	case KindHealthCheck, KindNetwork:
		return ExitHealth
	default:
		return ExitUnknown
	}
}

// Format renders an error for operator display: code, message, and an
// enumerated remediation list. Verbose mode appends the wrapped cause chain.
func Format(err error, verbose bool) string {
	var e *Error
	if !errors.As(err, &e) {
		return fmt.Sprintf("Error: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Error [%s]: %s\n", e.Code, e.Message)
	for i, step := range e.Remediation {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
	}
	if verbose && e.Err != nil {
		fmt.Fprintf(&b, "  cause: %v\n", e.Err)
	}
	return b.String()
}
