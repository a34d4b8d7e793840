/*
Package history maintains the deployment history ledger.

The ledger is a single JSON file, {version, deployments[]}, stored most
recent first. Every orchestration attempt appends one immutable record with
a time-based id, best-effort git metadata, the outcome status, and notes.
After each append both retention limits apply: the list is trimmed to the
record count cap and records older than the retention window are dropped,
so the stored set always satisfies both.

Queries filter by environment and status before applying any limit. A
missing history file reads as an empty ledger, never an error.

PrepareRollback derives a manual step list for returning an environment to
a recorded deployment: checkout instructions for the recorded commit and
branch, dependency reinstall, redeploy, and a post-rollback health check.
Warnings are generated from the target (production approval, version
change, staleness past 7 days) and two cautions are always appended for
migrations and drifted environment variables.
*/
package history
