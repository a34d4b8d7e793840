/*
Package orchestrator sequences a deployment run end to end.

A run moves through fixed phases, each awaited before the next starts:

	LoadingEnv → [ConfirmingProd] → Validating → [SummarizingConfirm]
	    → PreparingCredentials → GeneratingConfig → Recording
	    → Done(Success | Cancelled | Failed)

Production environments require the operator to type the environment name;
every interactive run additionally confirms the printed summary. CI mode
skips both prompts with a logged notice. Dry runs print the summary, skip
every file write, and return a synthetic dry-run id without touching the
history ledger.

# Recording policy

Exactly one ledger entry is written per non-cancelled, non-dry run: status
success on completion, status failed with the error as notes for every
failure from environment loading onward. Declined confirmations record
nothing; abandoning a run before it executes is not history. A failure to
write the failure record itself is only logged, so the original error
always reaches the operator.

Cancellation is purely operator-driven at the confirmation prompts. Once
past the summary confirmation the remaining phases run to completion or
failure with no abort path.
*/
package orchestrator
