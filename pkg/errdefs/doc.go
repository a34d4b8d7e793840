/*
Package errdefs defines the deployment error taxonomy.

Every user-facing failure in deployctl is classified by functional area
(validation, configuration, credential, deployment, healthcheck, network,
history, rollback, environment) and carries a stable string code, a human
message, and remediation steps. The kind is never set directly: it is derived
from the code prefix, so a code like CREDENTIAL_MISSING always classifies as
a credential error.

# Usage

Creating and wrapping errors:

	return errdefs.New(errdefs.CodeEnvironmentInvalid,
	    fmt.Sprintf("unknown environment %q", name),
	    "use one of: development, staging, production")

	return errdefs.Wrap(err, errdefs.CodeHistoryWriteFailed,
	    "failed to persist deployment history")

At the CLI boundary:

	fmt.Fprint(os.Stderr, errdefs.Format(err, verbose))
	os.Exit(errdefs.ExitCode(err))

Exit codes follow a fixed taxonomy: success=0, validation=1,
configuration=2, deployment=3, health=4, unknown=99.

# Propagation Policy

Validation, configuration, and health-check errors are handled locally by
callers and degrade to inspectable results. Deployment-execution errors are
fatal and terminate the process after the session summary is written.
Best-effort subsystems (git metadata lookup) never produce errors at all.
*/
package errdefs
