package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/stocksure/deployctl/pkg/credentials"
	"github.com/stocksure/deployctl/pkg/environment"
	"github.com/stocksure/deployctl/pkg/errdefs"
	"github.com/stocksure/deployctl/pkg/health"
	"github.com/stocksure/deployctl/pkg/history"
	"github.com/stocksure/deployctl/pkg/log"
	"github.com/stocksure/deployctl/pkg/render"
	"github.com/stocksure/deployctl/pkg/types"
	"github.com/stocksure/deployctl/pkg/validator"
)

// Config wires an Orchestrator's collaborators.
type Config struct {
	Registry  *environment.Registry
	Validator *validator.Validator
	Ledger    *history.Ledger
	Preparer  credentials.Preparer
	Confirmer Confirmer

	// BlueprintPath is where the generated service descriptor is written.
	BlueprintPath string

	// Version is the application version being deployed.
	Version string

	// Session receives audit events; nil disables session logging.
	Session *log.Session

	// Out receives summaries and operator instructions (stdout if nil).
	Out io.Writer
}

// Options control one deployment run.
type Options struct {
	Environment    string
	DryRun         bool
	CIMode         bool
	SkipValidation bool
	Verbose        bool
}

// Orchestrator sequences a deployment: load environment, confirm, validate,
// summarize, prepare credentials, generate the service descriptor, record
// the outcome, print instructions. Phases are strictly sequential; there is
// no mid-flight abort once the last confirmation point is passed.
type Orchestrator struct {
	cfg Config
}

// New creates an orchestrator. A nil Confirmer falls back to auto-approval,
// which is only appropriate for CI mode and tests.
func New(cfg Config) *Orchestrator {
	if cfg.Confirmer == nil {
		cfg.Confirmer = autoConfirmer{}
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	return &Orchestrator{cfg: cfg}
}

// Deploy runs one deployment attempt.
//
// Recording policy: every failed attempt is recorded with status failed and
// the error as notes; successes are recorded unless this is a dry run;
// declined confirmations are never recorded; dry runs never touch the
// ledger at all.
func (o *Orchestrator) Deploy(ctx context.Context, opts Options) (*types.DeployResult, error) {
	start := time.Now()
	o.event("deploy_start", fmt.Sprintf("starting deployment to %s", opts.Environment), nil)

	result := &types.DeployResult{
		Environment: opts.Environment,
		Timestamp:   start,
		DryRun:      opts.DryRun,
	}

	// LoadingEnv
	env, err := o.cfg.Registry.Load(opts.Environment)
	if err != nil {
		return o.fail(ctx, result, opts, start, err)
	}
	// Once the environment is resolved, phase logs carry it.
	envLogger := log.WithEnvironment(env.Name)
	envLogger.Debug().Str("service", env.RenderServiceName).Msg("environment loaded")

	// ConfirmingProd
	if env.RequiresConfirmation && !opts.DryRun {
		if opts.CIMode {
			envLogger.Info().Msg("CI mode: production confirmation skipped")
			o.event("confirmation_skipped", "CI mode: production confirmation skipped", nil)
		} else {
			ok, err := o.cfg.Confirmer.ConfirmToken(
				fmt.Sprintf("This deploys to %s. Type %q to continue:", env.Name, env.Name),
				env.Name)
			if err != nil {
				return o.fail(ctx, result, opts, start, errdefs.Wrap(err, errdefs.CodeDeploymentFailed,
					"confirmation prompt failed"))
			}
			if !ok {
				return o.cancel(result, "production confirmation declined")
			}
		}
	}

	// Validating
	if !opts.SkipValidation {
		vr := o.cfg.Validator.ValidateAll(ctx, validator.Options{Environment: opts.Environment})
		for _, w := range vr.Warnings {
			envLogger.Warn().Msg(w)
		}
		if !vr.Success {
			o.printValidationFailures(vr)
			err := errdefs.New(errdefs.CodeValidationFailed,
				fmt.Sprintf("%d validation check(s) failed", len(vr.Errors)),
				"fix the reported checks and retry",
				"inspect details: deployctl validate")
			return o.fail(ctx, result, opts, start, err)
		}
		envLogger.Info().Int("checks", len(vr.Checks)).Msg("validation passed")
		o.event("validation_passed", "all prerequisite checks passed", nil)
	} else {
		envLogger.Warn().Msg("validation skipped by flag")
	}

	// SummarizingConfirm
	o.printSummary(env, opts)
	if !opts.DryRun && !opts.CIMode {
		ok, err := o.cfg.Confirmer.Confirm("Proceed with deployment?")
		if err != nil {
			return o.fail(ctx, result, opts, start, errdefs.Wrap(err, errdefs.CodeDeploymentFailed,
				"confirmation prompt failed"))
		}
		if !ok {
			return o.cancel(result, "deployment declined at summary")
		}
	}

	// PreparingCredentials
	if opts.DryRun {
		envLogger.Info().Msg("dry run: skipping credential preparation")
	} else {
		prepared, err := o.cfg.Preparer.Prepare()
		if err != nil {
			return o.fail(ctx, result, opts, start, err)
		}
		envLogger.Info().Str("output", prepared.OutputPath).Msg("credentials prepared")
		o.event("credentials_prepared", "formatted credentials written", map[string]string{
			"output": prepared.OutputPath,
		})
	}

	// GeneratingConfig
	blueprint := render.NewBlueprint(env)
	if opts.DryRun {
		if opts.Verbose {
			data, _ := blueprint.Marshal()
			fmt.Fprintf(o.cfg.Out, "\n--- service descriptor (dry run, not written) ---\n%s\n", data)
		}
		envLogger.Info().Str("path", o.cfg.BlueprintPath).Msg("dry run: descriptor not written")
	} else {
		if err := blueprint.WriteFile(o.cfg.BlueprintPath); err != nil {
			return o.fail(ctx, result, opts, start, err)
		}
		envLogger.Info().Str("path", o.cfg.BlueprintPath).Msg("service descriptor written")
	}

	// Recording
	if opts.DryRun {
		result.DeploymentID = fmt.Sprintf("dry-run-%d", start.UnixMilli())
	} else {
		id, err := o.cfg.Ledger.Record(ctx, types.DeploymentRecord{
			Environment: env.Name,
			Version:     o.cfg.Version,
			Status:      types.DeploymentSuccess,
			Duration:    time.Since(start),
			Configuration: map[string]string{
				"serviceName": env.RenderServiceName,
				"region":      env.Region,
				"plan":        env.Plan,
				"branch":      env.Branch,
			},
			DeploymentURL: render.ServiceURL(env),
		})
		if err != nil {
			return o.fail(ctx, result, opts, start, err)
		}
		result.DeploymentID = id
		recordLogger := log.WithDeploymentID(id)
		recordLogger.Info().Str("environment", env.Name).Msg("deployment recorded")
	}

	result.Success = true
	result.DeploymentURL = render.ServiceURL(env)
	result.ExitCode = errdefs.ExitSuccess

	o.printInstructions(env, opts)
	o.event("deploy_complete", "deployment prepared", map[string]string{
		"deployment_id": result.DeploymentID,
		"dry_run":       fmt.Sprintf("%t", opts.DryRun),
	})
	return result, nil
}

// fail records the failed attempt (unless dry run), logs it, and returns a
// failure result alongside the cause.
func (o *Orchestrator) fail(ctx context.Context, result *types.DeployResult, opts Options, start time.Time, cause error) (*types.DeployResult, error) {
	logger := log.WithComponent("orchestrator")
	logger.Error().Err(cause).Str("environment", opts.Environment).Msg("deployment failed")
	o.eventErr("deploy_failed", "deployment failed", cause)

	if !opts.DryRun {
		_, recErr := o.cfg.Ledger.Record(ctx, types.DeploymentRecord{
			Environment: opts.Environment,
			Version:     o.cfg.Version,
			Status:      types.DeploymentFailed,
			Duration:    time.Since(start),
			Notes:       cause.Error(),
		})
		if recErr != nil {
			// The original failure must win; the bookkeeping miss is only
			// logged.
			logger.Error().Err(recErr).Msg("failed to record deployment failure")
		}
	}

	result.Success = false
	result.ExitCode = errdefs.ExitCode(cause)
	return result, cause
}

// cancel returns a cancelled result. Cancelled runs leave no ledger entry:
// only executed or failed attempts are recorded, not abandoned ones.
func (o *Orchestrator) cancel(result *types.DeployResult, reason string) (*types.DeployResult, error) {
	cancelLogger := log.WithComponent("orchestrator")
	cancelLogger.Info().Str("reason", reason).Msg("deployment cancelled")
	o.event("deploy_cancelled", reason, nil)
	result.Success = false
	result.Cancelled = true
	result.ExitCode = errdefs.ExitSuccess
	fmt.Fprintln(o.cfg.Out, "Deployment cancelled.")
	return result, nil
}

func (o *Orchestrator) printValidationFailures(vr *types.ValidationResult) {
	fmt.Fprintln(o.cfg.Out, "\nValidation failed:")
	for _, e := range vr.Errors {
		fmt.Fprintf(o.cfg.Out, "  ✗ %s: %s\n", e.Check, e.Message)
		if e.Remediation != "" {
			fmt.Fprintf(o.cfg.Out, "    → %s\n", e.Remediation)
		}
	}
}

func (o *Orchestrator) printSummary(env *types.Environment, opts Options) {
	out := o.cfg.Out
	name := env.DisplayName
	if name == "" {
		name = env.Name
	}

	fmt.Fprintf(out, "\nDeployment summary\n")
	fmt.Fprintf(out, "  Environment: %s\n", name)
	fmt.Fprintf(out, "  Service:     %s\n", env.RenderServiceName)
	fmt.Fprintf(out, "  Region:      %s\n", env.Region)
	fmt.Fprintf(out, "  Plan:        %s\n", env.Plan)
	if env.Branch != "" {
		fmt.Fprintf(out, "  Branch:      %s\n", env.Branch)
	}
	fmt.Fprintf(out, "  URL:         %s\n", render.ServiceURL(env))
	if opts.DryRun {
		fmt.Fprintf(out, "  Mode:        dry run (no files written, no history recorded)\n")
	}

	masked := environment.MaskSensitive(env.EnvVars)
	keys := make([]string, 0, len(masked))
	for k := range masked {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(out, "  Variables:\n")
	for _, k := range keys {
		fmt.Fprintf(out, "    %s=%s\n", k, masked[k])
	}

	actions := []string{
		"validate prerequisites",
		"prepare service-account credentials",
		fmt.Sprintf("write service descriptor to %s", o.cfg.BlueprintPath),
		"record deployment in history",
	}
	fmt.Fprintf(out, "  Planned actions:\n")
	for i, a := range actions {
		fmt.Fprintf(out, "    %d. %s\n", i+1, a)
	}
}

func (o *Orchestrator) printInstructions(env *types.Environment, opts Options) {
	out := o.cfg.Out
	fmt.Fprintf(out, "\nNext steps\n")
	if opts.DryRun {
		fmt.Fprintf(out, "  Dry run complete. Re-run without --dry-run to write files.\n")
		return
	}
	fmt.Fprintf(out, "  1. Commit and push %s to the deployment branch.\n", o.cfg.BlueprintPath)
	fmt.Fprintf(out, "  2. In the Render dashboard, create or sync the %q blueprint service.\n", env.RenderServiceName)
	fmt.Fprintf(out, "  3. Set %s manually in the dashboard (value in %s).\n",
		render.CredentialEnvVar, o.cfg.Preparer.OutputPath)
	fmt.Fprintf(out, "  4. Verify: deployctl health --environment %s\n", env.Name)
}

// CheckHealth probes the environment's deployed service. It lives on the
// orchestrator so the CLI has one entry point, but it is a separate
// invocation from Deploy, never an automatic post-deploy step.
func (o *Orchestrator) CheckHealth(ctx context.Context, envName, url string, timeout time.Duration) (*types.HealthResult, error) {
	var env *types.Environment
	if envName != "" {
		loaded, err := o.cfg.Registry.Load(envName)
		if err != nil {
			return nil, err
		}
		env = loaded
	}
	probe := health.NewProbe()
	return probe.Check(ctx, health.CheckOptions{
		URL:         url,
		Environment: env,
		Timeout:     timeout,
	})
}

func (o *Orchestrator) event(eventType, msg string, fields map[string]string) {
	if o.cfg.Session == nil {
		return
	}
	o.cfg.Session.Event(log.InfoLevel, eventType, msg, fields)
}

func (o *Orchestrator) eventErr(eventType, msg string, err error) {
	if o.cfg.Session == nil {
		return
	}
	o.cfg.Session.Error(eventType, msg, err)
}
