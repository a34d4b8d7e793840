package types

import (
	"time"
)

// Environment represents a named deployment target (development, staging,
// production) with its Render service settings and variable set.
type Environment struct {
	Name                 string            `json:"name"`
	DisplayName          string            `json:"displayName,omitempty"`
	RenderServiceName    string            `json:"renderServiceName"`
	Region               string            `json:"region"`
	Plan                 string            `json:"plan"`
	Branch               string            `json:"branch,omitempty"`
	HealthCheckPath      string            `json:"healthCheckPath"`
	EnvVars              map[string]string `json:"envVars"`
	RequiresConfirmation bool              `json:"requiresConfirmation"`
}

// KnownEnvironments is the allowed set of environment names.
var KnownEnvironments = []string{"development", "staging", "production"}

// IsKnownEnvironment reports whether name is in the allowed environment set.
func IsKnownEnvironment(name string) bool {
	for _, n := range KnownEnvironments {
		if n == name {
			return true
		}
	}
	return false
}

// RequiredEnvVars are the variables every environment must define.
var RequiredEnvVars = []string{"NODE_ENV", "PORT", "ADMIN_SETUP_CODE"}

// EnvironmentSummary is the listing view of an environment.
type EnvironmentSummary struct {
	Name              string `json:"name"`
	DisplayName       string `json:"displayName,omitempty"`
	RenderServiceName string `json:"renderServiceName"`
	Region            string `json:"region"`
	Plan              string `json:"plan"`
	VarCount          int    `json:"varCount"`
}

// DeploymentStatus represents the state of a deployment attempt
type DeploymentStatus string

const (
	DeploymentPending    DeploymentStatus = "pending"
	DeploymentInProgress DeploymentStatus = "in-progress"
	DeploymentSuccess    DeploymentStatus = "success"
	DeploymentFailed     DeploymentStatus = "failed"
	DeploymentRolledBack DeploymentStatus = "rolled-back"
)

// DeploymentRecord is one entry in the deployment history ledger.
// Records are immutable once appended; only retention eviction removes them.
type DeploymentRecord struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Environment   string            `json:"environment"`
	Version       string            `json:"version"`
	GitCommit     string            `json:"gitCommit,omitempty"`
	GitBranch     string            `json:"gitBranch,omitempty"`
	DeployedBy    string            `json:"deployedBy,omitempty"`
	Configuration map[string]string `json:"configuration,omitempty"`
	Status        DeploymentStatus  `json:"status"`
	DeploymentURL string            `json:"deploymentUrl,omitempty"`
	Duration      time.Duration     `json:"duration,omitempty"`
	Notes         string            `json:"notes,omitempty"`
}

// RollbackPlan describes the manual steps to return a target environment to
// a previously recorded deployment. Plans are derived on demand and never
// persisted.
type RollbackPlan struct {
	TargetDeployment  *DeploymentRecord `json:"targetDeployment"`
	CurrentDeployment *DeploymentRecord `json:"currentDeployment,omitempty"`
	Steps             []string          `json:"steps"`
	Warnings          []string          `json:"warnings"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// CheckResult is the outcome of a single validation check.
type CheckResult struct {
	Passed      bool     `json:"passed"`
	Message     string   `json:"message"`
	Details     []string `json:"details,omitempty"`
	Remediation string   `json:"remediation,omitempty"`
	Skipped     bool     `json:"skipped,omitempty"`
}

// ValidationError is one aggregated failure entry from a validation run.
type ValidationError struct {
	Check       string `json:"check"`
	Message     string `json:"message"`
	Remediation string `json:"remediation,omitempty"`
}

// ValidationResult aggregates the outcome of all prerequisite checks.
type ValidationResult struct {
	Success  bool                   `json:"success"`
	Checks   map[string]CheckResult `json:"checks"`
	Errors   []ValidationError      `json:"errors"`
	Warnings []string               `json:"warnings"`
}

// HealthState classifies the overall outcome of a health probe.
type HealthState string

const (
	HealthHealthy     HealthState = "healthy"
	HealthUnhealthy   HealthState = "unhealthy"
	HealthUnreachable HealthState = "unreachable"
	HealthError       HealthState = "error"
)

// EndpointResult captures the outcome of probing a single endpoint.
// Probe failures are carried in Error; an EndpointResult is never an error
// value itself.
type EndpointResult struct {
	Success      bool          `json:"success"`
	StatusCode   int           `json:"statusCode"`
	ResponseTime time.Duration `json:"responseTime"`
	Data         string        `json:"data,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// HealthResult is the aggregate outcome of probing a deployed service.
type HealthResult struct {
	Status       HealthState               `json:"status"`
	URL          string                    `json:"url"`
	Endpoints    map[string]EndpointResult `json:"endpoints"`
	Errors       []string                  `json:"errors,omitempty"`
	ResponseTime time.Duration             `json:"responseTime,omitempty"`
	Version      string                    `json:"version,omitempty"`
}

// DeployResult is the terminal outcome of an orchestration run.
type DeployResult struct {
	Success       bool      `json:"success"`
	Cancelled     bool      `json:"cancelled,omitempty"`
	DeploymentID  string    `json:"deploymentId,omitempty"`
	Environment   string    `json:"environment"`
	Timestamp     time.Time `json:"timestamp"`
	DeploymentURL string    `json:"deploymentUrl,omitempty"`
	DryRun        bool      `json:"dryRun"`
	ExitCode      int       `json:"exitCode"`
}
