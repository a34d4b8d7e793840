/*
Package validator runs deployment prerequisite checks.

Four checks exist: credentials (service-account file presence, JSON shape,
field rules), dependencies (manifest plus installed critical packages),
serverConfig (entrypoint and manifest are deployable), and environment
(the named target is known and structurally complete). The credential check
can be skipped; the environment check only runs when a target name is given.

# Concurrency

No check depends on another's result, so ValidateAll fans the enabled checks
out to goroutines and joins them before aggregating:

	credentials ──┐
	dependencies ─┼─→ merge by check name → ValidationResult
	serverConfig ─┤
	environment ──┘

Results merge in a fixed name order, never completion order, so a run over
the same filesystem state always produces the same aggregate.

# Policy

Overall success means every non-skipped check passed. Each failed check
contributes exactly one error entry with its remediation. A config store
that does not exist yet is a warning for the environment check, not a
failure: the store is created later in the deployment flow.
*/
package validator
