/*
Package types defines the core data structures used throughout deployctl.

This package contains all fundamental types that represent the deployment
domain model: environments, deployment records, rollback plans, validation
and health results. These types are used by all other packages for
persistence, orchestration logic, and CLI output.

# Core Types

Environments:
  - Environment: Named deployment target with Render service settings
  - EnvironmentSummary: Listing view returned by the registry
  - KnownEnvironments / RequiredEnvVars: Validation constants

History:
  - DeploymentRecord: One immutable ledger entry per deployment attempt
  - DeploymentStatus: pending, in-progress, success, failed, rolled-back
  - RollbackPlan: Derived step list for returning to a prior deployment

Validation & Health:
  - ValidationResult / CheckResult: Aggregated prerequisite check outcomes
  - HealthResult / EndpointResult: Probe outcomes, never raised as errors
  - HealthState: healthy, unhealthy, unreachable, error

# Design Patterns

All enums use typed string constants for safety and clarity:

	type DeploymentStatus string
	const (
	    DeploymentSuccess DeploymentStatus = "success"
	    DeploymentFailed  DeploymentStatus = "failed"
	)

All types are JSON-serializable; the environment config file and the history
ledger on disk are plain JSON documents built from these structs, so field
tags are part of the external file format and must stay stable.

# Integration Points

This package integrates with:

  - pkg/environment: Loads and validates Environment values
  - pkg/history: Persists DeploymentRecord entries
  - pkg/validator: Produces ValidationResult aggregates
  - pkg/health: Produces HealthResult aggregates
  - pkg/orchestrator: Threads all of the above through a deployment run
*/
package types
